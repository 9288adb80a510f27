package system

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeManager 記錄調用順序
type fakeManager struct {
	calls     []string
	active    bool
	enableErr error
}

func (f *fakeManager) Start(_ context.Context, s string) error {
	f.calls = append(f.calls, "start "+s)
	return nil
}
func (f *fakeManager) Stop(_ context.Context, s string) error {
	f.calls = append(f.calls, "stop "+s)
	return nil
}
func (f *fakeManager) Enable(_ context.Context, s string) error {
	f.calls = append(f.calls, "enable "+s)
	return f.enableErr
}
func (f *fakeManager) Disable(_ context.Context, s string) error {
	f.calls = append(f.calls, "disable "+s)
	return nil
}
func (f *fakeManager) DaemonReload(context.Context) error {
	f.calls = append(f.calls, "daemon-reload")
	return nil
}
func (f *fakeManager) Status(_ context.Context, s string) (*ServiceStatus, error) {
	return &ServiceStatus{Name: ensureSuffix(s), Active: f.active}, nil
}
func (f *fakeManager) IsActive(context.Context, string) (bool, error) { return f.active, nil }
func (f *fakeManager) Close()                                         {}

func TestServiceInstaller_Render(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	installer.BaseURL = "http://10.0.0.2:5000"
	installer.Watchdog = 20 * time.Second

	data, err := installer.Render()
	require.NoError(t, err)
	content := string(data)

	for _, want := range []string{
		"Type=notify",
		"ExecStart=/usr/local/bin/opsdeck watch --dir /var/lib/opsdeck --api http://10.0.0.2:5000",
		"WatchdogSec=20",
		"Restart=on-failure",
		"User=root",
	} {
		assert.Contains(t, content, want)
	}

	installer.BaseURL = ""
	installer.Watchdog = 0
	data, err = installer.Render()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "--api")
	assert.Contains(t, string(data), "WatchdogSec=1")
}

func TestServiceInstaller_Install(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	servicePath := filepath.Join(t.TempDir(), "units", "opsdeck.service")
	mgr := &fakeManager{}

	require.NoError(t, installer.Install(context.Background(), servicePath, mgr))

	content, err := os.ReadFile(servicePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "[Unit]"))
	assert.Equal(t, []string{"daemon-reload", "enable opsdeck"}, mgr.calls)
}

func TestServiceInstaller_InstallStartNow(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	installer.StartNow = true
	mgr := &fakeManager{}

	require.NoError(t, installer.Install(context.Background(), filepath.Join(t.TempDir(), "opsdeck.service"), mgr))
	assert.Equal(t, []string{"daemon-reload", "enable opsdeck", "start opsdeck"}, mgr.calls)
}

func TestServiceInstaller_InstallEnableError(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	servicePath := filepath.Join(t.TempDir(), "opsdeck.service")
	mgr := &fakeManager{enableErr: errors.New("access denied")}

	err := installer.Install(context.Background(), servicePath, mgr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "啟用服務失敗")

	// 文件已寫入
	_, statErr := os.Stat(servicePath)
	assert.NoError(t, statErr)
}

func TestServiceInstaller_FileOnly(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	servicePath := filepath.Join(t.TempDir(), "opsdeck.service")

	require.NoError(t, installer.Install(context.Background(), servicePath, nil))
	_, err := os.Stat(servicePath)
	assert.NoError(t, err)
}

func TestServiceInstaller_Uninstall(t *testing.T) {
	installer := NewServiceInstaller("/usr/local/bin/opsdeck", "/var/lib/opsdeck")
	servicePath := filepath.Join(t.TempDir(), "opsdeck.service")
	require.NoError(t, installer.Install(context.Background(), servicePath, nil))

	mgr := &fakeManager{active: true}
	require.NoError(t, installer.Uninstall(context.Background(), servicePath, mgr))

	assert.Equal(t, []string{"stop opsdeck", "disable opsdeck", "daemon-reload"}, mgr.calls)
	_, err := os.Stat(servicePath)
	assert.True(t, os.IsNotExist(err))

	// 重複卸載不報錯
	assert.NoError(t, installer.Uninstall(context.Background(), servicePath, &fakeManager{}))
}
