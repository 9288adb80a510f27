package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func saveVars(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestShort(t *testing.T) {
	saveVars(t)

	Version, GitCommit = "1.2.0", ""
	assert.Equal(t, "v1.2.0", Short())

	GitCommit = "abcdef01"
	assert.Equal(t, "v1.2.0 (abcdef01)", Short())
}

func TestInfo(t *testing.T) {
	saveVars(t)
	BuildTime, GitCommit = "", ""

	info := Info()
	assert.Contains(t, info, "opsdeck v"+Version)
	assert.Contains(t, info, GoVersion)
	assert.Contains(t, info, "Git Commit: unknown")
}

func TestFillFromBuildInfo(t *testing.T) {
	saveVars(t)
	Version, GitCommit, BuildTime = "dev", "", ""

	fillFromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.9.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
		},
	})

	assert.Equal(t, "0.9.1", Version)
	assert.Equal(t, "01234567-dirty", GitCommit)
	assert.Equal(t, "2026-03-01T12:00:00Z", BuildTime)
}

func TestFillFromBuildInfo_KeepsLdflags(t *testing.T) {
	saveVars(t)
	Version, GitCommit, BuildTime = "1.4.0", "abc1234", "today"

	fillFromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffffff"}},
	})

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "abc1234", GitCommit)
	assert.Equal(t, "today", BuildTime)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "opsdeck/"+Version, UserAgent())
}
