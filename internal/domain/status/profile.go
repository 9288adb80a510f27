package status

// DedupeProfiles 按名稱去重，保留首次出現的順序
// 返回保留的列表以及被丟棄的名稱
func DedupeProfiles(in []ConfigProfile) (kept []ConfigProfile, dropped []string) {
	seen := make(map[string]struct{}, len(in))
	kept = make([]ConfigProfile, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.Name]; ok {
			dropped = append(dropped, p.Name)
			continue
		}
		seen[p.Name] = struct{}{}
		kept = append(kept, p)
	}
	return kept, dropped
}

// FindProfile 在列表中按名稱查找
func FindProfile(list []ConfigProfile, name string) (ConfigProfile, bool) {
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return ConfigProfile{}, false
}
