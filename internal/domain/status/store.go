package status

import (
	"sync"
	"sync/atomic"
)

// view 某一時刻的完整狀態，發布後不可修改
type view struct {
	snapshots map[Subsystem]Value
	profiles  map[Subsystem][]ConfigProfile
	merged    map[Target]uint64
}

// Store 各子系統最新狀態的持有者
// 讀取無鎖：寫入時複製整張表再原子替換指針，讀者永遠看不到半更新的狀態
type Store struct {
	mu     sync.Mutex // 僅序列化寫操作
	cur    atomic.Pointer[view]
	issued map[Target]uint64
}

// NewStore 創建空存儲
func NewStore() *Store {
	s := &Store{issued: make(map[Target]uint64)}
	s.cur.Store(&view{
		snapshots: map[Subsystem]Value{},
		profiles:  map[Subsystem][]ConfigProfile{},
		merged:    map[Target]uint64{},
	})
	return s
}

// Issue 為即將發起的請求分配序號，序號按發起順序單調遞增
func (s *Store) Issue(t Target) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued[t]++
	return s.issued[t]
}

// Merge 整體替換子系統狀態
// 若已合併過更晚發起的請求結果則丟棄並返回 false；相同序號重複合併是冪等的
func (s *Store) Merge(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.cur.Load()
	target := SnapshotOf(snap.Subsystem)
	if snap.Seq < old.merged[target] {
		return false
	}

	next := old.copyMaps()
	v := snap.Value.clone()
	v.known = true
	next.snapshots[snap.Subsystem] = v
	next.merged[target] = snap.Seq
	s.cur.Store(next)
	return true
}

// MergeProfiles 整體替換配置列表，名稱重複時保留第一個
func (s *Store) MergeProfiles(sub Subsystem, seq uint64, profiles []ConfigProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.cur.Load()
	target := ProfilesOf(sub)
	if seq < old.merged[target] {
		return false
	}

	kept, _ := DedupeProfiles(profiles)
	next := old.copyMaps()
	next.profiles[sub] = kept
	next.merged[target] = seq
	s.cur.Store(next)
	return true
}

// Get 返回最近一次合併的值，從未填充時返回 Unknown
func (s *Store) Get(sub Subsystem) Value {
	v, ok := s.cur.Load().snapshots[sub]
	if !ok {
		return Unknown
	}
	return v.clone()
}

// Profiles 返回配置列表副本，從未拉取時為空
func (s *Store) Profiles(sub Subsystem) []ConfigProfile {
	list := s.cur.Load().profiles[sub]
	out := make([]ConfigProfile, len(list))
	copy(out, list)
	return out
}

// All 返回同一時刻的全部狀態快照
func (s *Store) All() map[Subsystem]Value {
	cur := s.cur.Load()
	out := make(map[Subsystem]Value, len(cur.snapshots))
	for k, v := range cur.snapshots {
		out[k] = v.clone()
	}
	return out
}

// LastMerged 目標槽最後一次合併的序號
func (s *Store) LastMerged(t Target) uint64 {
	return s.cur.Load().merged[t]
}

func (v *view) copyMaps() *view {
	next := &view{
		snapshots: make(map[Subsystem]Value, len(v.snapshots)+1),
		profiles:  make(map[Subsystem][]ConfigProfile, len(v.profiles)+1),
		merged:    make(map[Target]uint64, len(v.merged)+1),
	}
	for k, val := range v.snapshots {
		next.snapshots[k] = val
	}
	for k, val := range v.profiles {
		next.profiles[k] = val
	}
	for k, val := range v.merged {
		next.merged[k] = val
	}
	return next
}
