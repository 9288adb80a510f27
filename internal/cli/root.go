package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// 全局參數
var (
	workDirFlag string
	apiFlag     string
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "opsdeck",
	Short: "遠程清理與隱身控制台",
	Long: `opsdeck 連接清理/隱身後端，輪詢各子系統狀態並執行清理、恢復等操作。

在終端中運行時打開交互界面；輸出被重定向時 (如 systemd) 進入 watch 模式，
只輪詢並逐行打印日誌。

Examples:
  opsdeck
  opsdeck --api http://10.0.0.2:5000
  opsdeck status --json
  opsdeck run windsurf-full --yes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.stdoutTTY {
			return a.runTUI(cmd.Context())
		}
		return a.runWatch(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&workDirFlag, "dir", "", "指定工作目錄 (默認: /etc/opsdeck 或 ~/.opsdeck)")
	pf.StringVar(&apiFlag, "api", "", "後端地址，覆蓋配置文件中的 api.base_url")
	pf.BoolVar(&debugFlag, "debug", false, "開啟調試日誌")
}

// Execute 運行命令行，SIGINT/SIGTERM 取消上下文
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
