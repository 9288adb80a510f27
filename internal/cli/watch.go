package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/infra/system"
	"github.com/Yat-Muk/opsdeck/internal/tui/model"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "無界面輪詢，日誌逐行輸出 (適合 systemd)",
	Long: `持續輪詢後端狀態，把控制台日誌逐行寫到標準輸出。

在 systemd 下運行時會發送 READY/STOPPING 通知並按 WatchdogSec 喂狗。

Examples:
  opsdeck watch
  opsdeck watch --api http://10.0.0.2:5000 >> /var/log/opsdeck/console.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return a.runWatch(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func (a *app) runWatch(ctx context.Context) error {
	engine, err := a.newEngine(ctx)
	if err != nil {
		return err
	}

	notifier := system.NewNotifier(a.log)
	ready := func() {
		notifier.Ready()
		notifier.Status(fmt.Sprintf("watching %s", a.client.BaseURL()))
	}

	headless := model.NewHeadless(engine, os.Stdout, ready).
		WithWatchdog(notifier.WatchdogInterval(), notifier.Ping)
	p := tea.NewProgram(headless,
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)

	a.log.Info("進入 watch 模式", zap.String("api", a.client.BaseURL()))
	_, err = p.Run()
	notifier.Stopping()

	if err != nil && !isCancelled(ctx, err) {
		return fmt.Errorf("watch 異常退出: %w", err)
	}
	a.log.Info("watch 模式已退出")
	return nil
}

// isCancelled 信號或上下文取消導致的退出不算錯誤
func isCancelled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) ||
		errors.Is(err, context.Canceled)
}
