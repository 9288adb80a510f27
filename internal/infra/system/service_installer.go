package system

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

// ServiceName watch 模式的 systemd 單元名
const ServiceName = "opsdeck"

// DefaultUnitPath 單元文件的默認位置
const DefaultUnitPath = "/etc/systemd/system/" + ServiceName + ".service"

const serviceTemplate = `[Unit]
Description=opsdeck console watcher
After=network-online.target
Wants=network-online.target

[Service]
Type=notify
User={{.User}}
ExecStart={{.BinPath}} watch --dir {{.WorkDir}}{{if .BaseURL}} --api {{.BaseURL}}{{end}}
WatchdogSec={{.WatchdogSec}}
Restart=on-failure
RestartSec=3s
NoNewPrivileges=true

[Install]
WantedBy=multi-user.target
`

var unitTmpl = template.Must(template.New("service").Parse(serviceTemplate))

type ServiceInstaller struct {
	BinPath  string
	WorkDir  string
	BaseURL  string
	User     string
	Watchdog time.Duration
	StartNow bool // 啟用後立即啟動
}

func NewServiceInstaller(binPath, workDir string) *ServiceInstaller {
	return &ServiceInstaller{
		BinPath:  binPath,
		WorkDir:  workDir,
		User:     "root",
		Watchdog: 30 * time.Second,
	}
}

// WatchdogSec 單元文件中的看門狗秒數
func (s *ServiceInstaller) WatchdogSec() int {
	sec := int(s.Watchdog / time.Second)
	if sec < 1 {
		sec = 1
	}
	return sec
}

// Render 生成單元文件內容
func (s *ServiceInstaller) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := unitTmpl.Execute(&buf, s); err != nil {
		return nil, fmt.Errorf("渲染服務文件失敗: %w", err)
	}
	return buf.Bytes(), nil
}

// Install 寫入服務文件；mgr 非空時重載並啟用，StartNow 時再啟動
func (s *ServiceInstaller) Install(ctx context.Context, servicePath string, mgr SystemdManager) error {
	data, err := s.Render()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(servicePath), 0755); err != nil {
		return fmt.Errorf("無法創建服務目錄: %w", err)
	}
	if err := os.WriteFile(servicePath, data, 0644); err != nil {
		return fmt.Errorf("無法創建服務文件: %w", err)
	}

	if mgr == nil {
		return nil
	}
	if err := mgr.DaemonReload(ctx); err != nil {
		return fmt.Errorf("daemon-reload 失敗: %w", err)
	}
	if err := mgr.Enable(ctx, ServiceName); err != nil {
		return fmt.Errorf("啟用服務失敗: %w", err)
	}
	if s.StartNow {
		if err := mgr.Start(ctx, ServiceName); err != nil {
			return fmt.Errorf("啟動服務失敗: %w", err)
		}
	}
	return nil
}

// Uninstall 停止、禁用並刪除服務文件
func (s *ServiceInstaller) Uninstall(ctx context.Context, servicePath string, mgr SystemdManager) error {
	if mgr != nil {
		if active, err := mgr.IsActive(ctx, ServiceName); err == nil && active {
			if err := mgr.Stop(ctx, ServiceName); err != nil {
				return err
			}
		}
		if err := mgr.Disable(ctx, ServiceName); err != nil {
			return fmt.Errorf("禁用服務失敗: %w", err)
		}
	}

	if err := os.Remove(servicePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("刪除服務文件失敗: %w", err)
	}

	if mgr != nil {
		return mgr.DaemonReload(ctx)
	}
	return nil
}
