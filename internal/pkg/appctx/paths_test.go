package appctx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths_Layout(t *testing.T) {
	t.Setenv("OPSDECK_ENV", "development")
	if isProduction() {
		t.Skip("以 root 運行時日誌固定在 /var/log")
	}
	base := t.TempDir()

	p, err := NewPaths(base)
	require.NoError(t, err)

	assert.Equal(t, base, p.BaseDir)
	assert.Equal(t, filepath.Join(base, "config.yaml"), p.ConfigFile)
	assert.Equal(t, filepath.Join(base, "logs", "opsdeck.log"), p.LogFile)
	assert.Equal(t, filepath.Join(base, "backups"), p.BackupDir)

	assert.DirExists(t, p.ConfigDir)
	assert.DirExists(t, p.LogDir)
	// 快照目錄由備份管理器按需創建
	assert.NoDirExists(t, p.BackupDir)
}

func TestNewPaths_RelativeBase(t *testing.T) {
	t.Setenv("OPSDECK_ENV", "development")
	t.Chdir(t.TempDir())

	p, err := NewPaths("state")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p.BaseDir))
	assert.Equal(t, "state", filepath.Base(p.BaseDir))
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunID(ctx))
	assert.Equal(t, "op-42", RunID(WithRunID(ctx, "op-42")))

	// 派生上下文保留
	child, cancel := context.WithTimeout(WithRunID(ctx, "op-43"), time.Minute)
	defer cancel()
	assert.Equal(t, "op-43", RunID(child))
}
