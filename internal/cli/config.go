package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Yat-Muk/opsdeck/internal/application"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "查看或修改配置",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "打印生效的配置",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		cfg, err := a.cfgSvc.GetConfig(cmd.Context())
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "寫入默認配置文件",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		if _, err := a.enableSnapshots(cmd.Context()); err != nil {
			return err
		}
		path := a.repo.Path()
		if _, err := a.cfgSvc.Init(cmd.Context(), path, configInitForce); err != nil {
			return err
		}
		fmt.Printf("已寫入 %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "修改單個配置項",
	Long: "修改單個配置項並保存，修改後的配置必須通過校驗。\n\n可用的鍵:\n  " +
		strings.Join(application.SettableKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return application.SettableKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		if _, err := a.enableSnapshots(cmd.Context()); err != nil {
			return err
		}
		if err := a.cfgSvc.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "列出配置快照",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		mgr, err := a.enableSnapshots(cmd.Context())
		if err != nil {
			return err
		}
		if mgr == nil {
			fmt.Println(style.MutedText("配置快照未啟用 (backup.enabled: false)"))
			return nil
		}

		list, err := mgr.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println(style.MutedText("暫無快照"))
			return nil
		}
		now := time.Now()
		for _, b := range list {
			fmt.Printf("  %s %s %s %s\n", style.Mark(b.Verified),
				style.PadRight(b.Name, 46),
				style.PadRight(humanize.IBytes(uint64(b.Size)), 9),
				style.MutedText(humanize.RelTime(b.Created, now, "ago", "from now")))
		}
		return nil
	},
}

var configRollbackCmd = &cobra.Command{
	Use:   "rollback <snapshot>",
	Short: "用快照覆蓋當前配置",
	Long: `用 config backups 列出的快照覆蓋當前配置文件。
覆蓋前會再保存一份快照；快照內容無效時自動回退。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		if _, err := a.enableSnapshots(cmd.Context()); err != nil {
			return err
		}
		cfg, err := a.cfgSvc.Rollback(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("已恢復 %s (api.base_url = %s)\n", args[0], cfg.API.BaseURL)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "打印配置文件路徑",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newBareApp()
		if err != nil {
			return err
		}
		fmt.Println(a.repo.Path())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "覆蓋已存在的配置文件")

	configCmd.AddCommand(configShowCmd, configInitCmd, configSetCmd, configBackupsCmd, configRollbackCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
