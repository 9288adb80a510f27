package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/opsdeck/internal/infra/system"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

var (
	serviceUnitPath string
	serviceUser     string
	serviceWatchdog time.Duration
	serviceNoReload bool
	serviceStartNow bool
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "管理 watch 模式的 systemd 服務",
}

var serviceInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "安裝並啟用 systemd 服務",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		bin, err := os.Executable()
		if err != nil {
			return fmt.Errorf("無法定位可執行文件: %w", err)
		}
		bin, _ = filepath.EvalSymlinks(bin)

		inst := system.NewServiceInstaller(bin, a.paths.BaseDir)
		inst.BaseURL = apiFlag
		if serviceUser != "" {
			inst.User = serviceUser
		}
		if serviceWatchdog > 0 {
			inst.Watchdog = serviceWatchdog
		}
		inst.StartNow = serviceStartNow
		if serviceStartNow && serviceNoReload {
			return errors.Validation(nil, "--now 需要連接 systemd，不能與 --no-reload 同時使用")
		}

		ctx := cmd.Context()
		var mgr system.SystemdManager
		if !serviceNoReload {
			mgr, err = system.NewSystemdManager(ctx, a.log)
			if err != nil {
				return err
			}
			defer mgr.Close()
		}
		if err := inst.Install(ctx, serviceUnitPath, mgr); err != nil {
			return err
		}
		fmt.Println(style.SuccessText("已安裝 " + serviceUnitPath))
		switch {
		case serviceStartNow:
			fmt.Println(style.SuccessText("服務已啟動"))
		case mgr != nil:
			fmt.Printf("使用 systemctl start %s 啟動，或重新執行並加上 --now\n", system.ServiceName)
		}
		return nil
	},
}

var serviceUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "停止並移除 systemd 服務",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mgr, err := system.NewSystemdManager(ctx, zap.NewNop())
		if err != nil {
			return err
		}
		defer mgr.Close()

		inst := system.NewServiceInstaller("", "")
		if err := inst.Uninstall(ctx, serviceUnitPath, mgr); err != nil {
			return err
		}
		fmt.Println(style.SuccessText("已移除 " + serviceUnitPath))
		return nil
	},
}

var serviceStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "查看 systemd 服務狀態",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		mgr, err := system.NewSystemdManager(ctx, zap.NewNop())
		if err != nil {
			return err
		}
		defer mgr.Close()

		st, err := mgr.Status(ctx, system.ServiceName)
		if err != nil {
			return err
		}
		printServiceStatus(st)
		return nil
	},
}

func init() {
	serviceCmd.PersistentFlags().StringVar(&serviceUnitPath, "unit", system.DefaultUnitPath, "單元文件路徑")
	serviceInstallCmd.Flags().StringVar(&serviceUser, "user", "", "運行服務的用戶 (默認 root)")
	serviceInstallCmd.Flags().DurationVar(&serviceWatchdog, "watchdog", 0, "看門狗間隔 (默認 30s)")
	serviceInstallCmd.Flags().BoolVar(&serviceStartNow, "now", false, "啟用後立即啟動")
	serviceInstallCmd.Flags().BoolVar(&serviceNoReload, "no-reload", false, "只寫入單元文件，不連接 systemd")

	serviceCmd.AddCommand(serviceInstallCmd, serviceUninstallCmd, serviceStatusCmd)
	rootCmd.AddCommand(serviceCmd)
}

func printServiceStatus(st *system.ServiceStatus) {
	state := style.ErrorText("inactive")
	switch {
	case st.Running:
		state = style.SuccessText("running")
	case st.Failed:
		state = style.ErrorText("failed")
	case st.Active:
		state = style.WarningText(st.SubState)
	}
	enabled := style.MutedText("disabled")
	if st.Enabled {
		enabled = style.InfoText("enabled")
	}

	fmt.Printf("  %s %s (%s)\n", style.PadRight("服務", 8), st.Name, enabled)
	fmt.Printf("  %s %s\n", style.PadRight("狀態", 8), state)
	if st.PID != "" {
		fmt.Printf("  %s %s\n", style.PadRight("PID", 8), st.PID)
	}
	if st.Memory != "" {
		fmt.Printf("  %s %s\n", style.PadRight("內存", 8), st.Memory)
	}
	if st.Uptime != "" {
		fmt.Printf("  %s %s\n", style.PadRight("運行", 8), st.Uptime)
	}
}
