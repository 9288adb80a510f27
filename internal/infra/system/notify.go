package system

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
)

// Notifier 向 systemd 報告服務狀態，不在 systemd 下運行時全部為空操作
type Notifier struct {
	log      *zap.Logger
	notify   func(unsetEnv bool, state string) (bool, error)
	watchdog func(unsetEnv bool) (time.Duration, error)
}

func NewNotifier(log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		log:      log.Named("notify"),
		notify:   daemon.SdNotify,
		watchdog: daemon.SdWatchdogEnabled,
	}
}

func (n *Notifier) send(state string) {
	sent, err := n.notify(false, state)
	if err != nil {
		n.log.Warn("sd_notify 失敗", zap.String("state", state), zap.Error(err))
		return
	}
	if sent {
		n.log.Debug("sd_notify", zap.String("state", state))
	}
}

// Ready 啟動完成
func (n *Notifier) Ready() { n.send(daemon.SdNotifyReady) }

// Stopping 開始退出
func (n *Notifier) Stopping() { n.send(daemon.SdNotifyStopping) }

// Status 狀態文本，顯示在 systemctl status 中
func (n *Notifier) Status(text string) { n.send("STATUS=" + text) }

// WatchdogInterval 喂狗週期，取 WatchdogSec 的一半；未啟用看門狗時為 0
func (n *Notifier) WatchdogInterval() time.Duration {
	interval, err := n.watchdog(false)
	if err != nil {
		n.log.Warn("讀取看門狗配置失敗", zap.Error(err))
		return 0
	}
	return interval / 2
}

// Ping 喂狗，由事件循環按週期調用
func (n *Notifier) Ping() { n.send(daemon.SdNotifyWatchdog) }
