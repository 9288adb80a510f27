package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// 由 -ldflags "-X" 注入；未注入時從構建信息中的 vcs 字段補齊
var (
	Version   = "dev"
	BuildTime = ""
	GoVersion = runtime.Version()
	GitCommit = ""
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(bi)
	}
}

func fillFromBuildInfo(bi *debug.BuildInfo) {
	var revision, modified, stamp string
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			stamp = s.Value
		}
	}
	if GitCommit == "" && revision != "" {
		if len(revision) > 8 {
			revision = revision[:8]
		}
		if modified == "true" {
			revision += "-dirty"
		}
		GitCommit = revision
	}
	if BuildTime == "" {
		BuildTime = stamp
	}
	if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = trimV(bi.Main.Version)
	}
}

func trimV(v string) string {
	if len(v) > 1 && v[0] == 'v' {
		return v[1:]
	}
	return v
}

// Short v1.0.0 (abcdef01)
func Short() string {
	if GitCommit != "" {
		return fmt.Sprintf("v%s (%s)", Version, GitCommit)
	}
	return "v" + Version
}

func Info() string {
	orUnknown := func(s string) string {
		if s == "" {
			return "unknown"
		}
		return s
	}
	return fmt.Sprintf(
		"opsdeck v%s\nBuild Time: %s\nGo Version: %s\nGit Commit: %s",
		Version, orUnknown(BuildTime), GoVersion, orUnknown(GitCommit),
	)
}

// UserAgent 請求後端時使用
func UserAgent() string {
	return "opsdeck/" + Version
}
