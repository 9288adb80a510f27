package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Yat-Muk/opsdeck/internal/application"
	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
	"github.com/Yat-Muk/opsdeck/internal/pkg/inputvalidator"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

var (
	opsJSON    bool
	runYes     bool
	restoreYes bool
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "列出可執行的操作",
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
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}
		defs := catalog.List()

		if opsJSON {
			return writeJSON(os.Stdout, defs)
		}
		for _, d := range defs {
			fmt.Printf("  %s %s %s\n",
				style.PadRight(d.Name, 26),
				style.PadRight(d.DisplayTitle(), 30),
				style.MutedText(d.Path))
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <operation>",
	Short: "執行一個操作並等待結果",
	Long: `確認後執行一個遠程操作，逐行打印進度。
操作失敗時以非零狀態退出。

Examples:
  opsdeck run windsurf-full
  opsdeck run ssh-rotation --yes`,
	Args: cobra.ExactArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, d := range operation.DefaultCatalog() {
			names = append(names, d.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		e, err := a.newOneShotEngine(ctx)
		if err != nil {
			return err
		}

		name := args[0]
		var def operation.Definition
		for _, d := range e.Operations() {
			if d.Name == name {
				def = d
				break
			}
		}
		if def.Name == "" {
			return errors.Validation(errors.ErrOperationNotFound, "未知操作 %q (使用 opsdeck ops 查看列表)", name)
		}

		ok, err := a.confirm(def.DisplayTitle(), def.Description, runYes)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		return a.follow(ctx, e, name, func() (func() error, error) {
			cmd, err := e.RequestOperation(name, true)
			if err != nil {
				return nil, err
			}
			return func() error { return e.Drain(ctx, cmd) }, nil
		})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <windsurf|vscode> <profile>",
	Short: "恢復一個已保存的配置",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sub, err := status.ParseSubsystem(args[0])
		if err != nil || !sub.CanRestore() {
			return errors.Validation(errors.ErrUnknownSubsystem, "子系統 %q 不支持恢復", args[0])
		}
		profile := args[1]
		if err := inputvalidator.ValidateProfileName(profile); err != nil {
			return errors.Validation(err, "配置名稱無效: %v", err)
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		e, err := a.newOneShotEngine(ctx)
		if err != nil {
			return err
		}
		// 先拉取配置列表，用於校驗名稱
		if err := e.Drain(ctx, e.RequestProfiles()); err != nil {
			return err
		}
		if _, found := status.FindProfile(e.Profiles(sub), profile); !found {
			var names []string
			for _, p := range e.Profiles(sub) {
				names = append(names, p.Name)
			}
			return errors.Validation(errors.ErrProfileNotFound, "未找到 %s 配置 %q (可用: %s)",
				sub, profile, strings.Join(names, ", "))
		}

		ok, err := a.confirm(fmt.Sprintf("恢復 %s 配置: %s", sub, profile), "當前配置將被覆蓋", restoreYes)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		return a.follow(ctx, e, orchestrator.RestoreName(sub), func() (func() error, error) {
			cmd, err := e.RequestRestore(sub, profile, true)
			if err != nil {
				return nil, err
			}
			return func() error { return e.Drain(ctx, cmd) }, nil
		})
	},
}

func init() {
	opsCmd.Flags().BoolVar(&opsJSON, "json", false, "以 JSON 輸出")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "跳過確認")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "跳過確認")

	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(restoreCmd)
}

// follow 打印引擎日誌直到操作結束，按最終階段返回錯誤
func (a *app) follow(ctx context.Context, e *application.Engine, name string, start func() (func() error, error)) error {
	e.OnLine(func(l domainConsole.LogLine) {
		fmt.Println(a.formatLine(l))
	})

	wait, err := start()
	if err != nil {
		return err
	}
	if err := wait(); err != nil {
		return err
	}

	run := e.Operation(name)
	switch run.Phase {
	case operation.PhaseCompleted:
		return nil
	case operation.PhaseFailed:
		return fmt.Errorf("操作失敗: %s", run.Error)
	default:
		return fmt.Errorf("操作未完成 (%s): %s", run.Phase, run.Error)
	}
}
