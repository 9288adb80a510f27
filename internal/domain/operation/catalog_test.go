package operation

import (
	"testing"

	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Valid(t *testing.T) {
	c, err := NewCatalog(DefaultCatalog()...)
	require.NoError(t, err)

	full, ok := c.Get("windsurf-full")
	require.True(t, ok)
	assert.Equal(t, "windsurf full cleanup", full.DisplayTitle())
	assert.Equal(t, "/api/cleanup/windsurf/full", full.Path)
	assert.Contains(t, full.Refresh, status.Windsurf)
}

func TestCatalog_OverrideKeepsPosition(t *testing.T) {
	c, err := NewCatalog(
		Definition{Name: "a", Path: "/a"},
		Definition{Name: "b", Path: "/b"},
		Definition{Name: "a", Path: "/a2", Title: "A2"},
	)
	require.NoError(t, err)

	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "/a2", list[0].Path)
	assert.Equal(t, "b", list[1].Name)
	assert.Equal(t, []string{"a", "b"}, c.Names())
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		ok   bool
	}{
		{"合法", Definition{Name: "x", Path: "/x", Subsystem: status.VSCode}, true},
		{"缺少名稱", Definition{Path: "/x"}, false},
		{"相對路徑", Definition{Name: "x", Path: "api/x"}, false},
		{"未知子系統", Definition{Name: "x", Path: "/x", Subsystem: "emacs"}, false},
		{"未知刷新目標", Definition{Name: "x", Path: "/x", Refresh: []status.Subsystem{"nope"}}, false},
		{"未知標記", Definition{Name: "x", Path: "/x", Marks: []Mark{{Subsystem: "nope"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStepStatus_Rendering(t *testing.T) {
	tests := []struct {
		status StepStatus
		icon   string
		class  string
	}{
		{StepSuccess, "✅", "success"},
		{StepFailed, "❌", "failed"},
		{StepRunning, "⏳", "running"},
		{StepSkipped, "⏭️", ""},
		{StepPending, "⏭️", ""},
		{StepStatus("warning"), "⏭️", ""},
	}
	for _, tt := range tests {
		p := NewProgress(Step{Name: "s", Status: tt.status})
		assert.Equal(t, tt.icon, p.Icon, tt.status)
		assert.Equal(t, tt.class, p.Class, tt.status)
	}
}

func TestResult_FailureReason(t *testing.T) {
	assert.Equal(t, "boom", Result{Error: "boom", Message: "msg"}.FailureReason())
	assert.Equal(t, "Deep cleanup failed", Result{Message: "Deep cleanup failed"}.FailureReason())
	assert.Equal(t, "process failed", Result{}.FailureReason())
}
