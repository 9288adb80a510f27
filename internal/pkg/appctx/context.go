package appctx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Paths 定義應用程序所有的關鍵路徑
type Paths struct {
	BaseDir   string
	ConfigDir string
	LogDir    string
	BackupDir string

	ConfigFile string
	LogFile    string
}

func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		if isProduction() {
			baseDir = "/etc/opsdeck"
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("無法獲取用戶主目錄: %w", err)
			}
			baseDir = filepath.Join(home, ".opsdeck")
		}
	}

	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("無法解析絕對路徑: %w", err)
	}

	// 日誌目錄邏輯
	logDir := filepath.Join(absPath, "logs")
	if isProduction() {
		logDir = "/var/log/opsdeck"
	}

	paths := &Paths{
		BaseDir:    absPath,
		ConfigDir:  absPath,
		LogDir:     logDir,
		BackupDir:  filepath.Join(absPath, "backups"),
		ConfigFile: filepath.Join(absPath, "config.yaml"),
		LogFile:    filepath.Join(logDir, "opsdeck.log"),
	}

	// 確保目錄存在
	for _, dir := range []string{paths.ConfigDir, paths.LogDir} {
		perm := os.FileMode(0700)
		if dir == paths.LogDir {
			perm = 0755
		}
		if err := os.MkdirAll(dir, perm); err != nil {
			return nil, fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}

	return paths, nil
}

func isProduction() bool {
	return os.Geteuid() == 0 || os.Getenv("OPSDECK_ENV") == "production"
}

type contextKey string

const runIDKey contextKey = "runID"

// WithRunID 在請求上下文中附帶操作運行 ID
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunID 取出運行 ID，未設置時為空
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}
