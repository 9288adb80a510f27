package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
	"github.com/Yat-Muk/opsdeck/internal/tui/view"
)

var statusJSON bool

// subsystemReport status --json 的單項輸出
type subsystemReport struct {
	Subsystem status.Subsystem       `json:"subsystem"`
	Known     bool                   `json:"known"`
	Value     status.Value           `json:"value"`
	Profiles  []status.ConfigProfile `json:"profiles,omitempty"`
}

type statusReport struct {
	API        string            `json:"api"`
	CheckedAt  time.Time         `json:"checked_at"`
	Subsystems []subsystemReport `json:"subsystems"`
	Errors     []string          `json:"errors,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "拉取一次全部子系統狀態",
	Long: `向後端拉取一次全部子系統狀態與已保存的配置列表後退出。

Examples:
  opsdeck status
  opsdeck status --json | jq '.subsystems[] | select(.known)'`,
	Args: cobra.NoArgs,
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
		if err := e.Drain(ctx, tea.Batch(e.RequestPoll(status.All()...), e.RequestProfiles())); err != nil {
			return err
		}

		report := statusReport{API: a.client.BaseURL(), CheckedAt: time.Now()}
		for _, l := range e.Lines() {
			if l.Level == domainConsole.LevelError {
				report.Errors = append(report.Errors, l.Text)
			}
		}
		for _, sub := range status.All() {
			v := e.Snapshot(sub)
			r := subsystemReport{Subsystem: sub, Known: v.Known(), Value: v}
			if sub.CanRestore() {
				r.Profiles = e.Profiles(sub)
			}
			report.Subsystems = append(report.Subsystems, r)
		}

		if statusJSON {
			return writeJSON(os.Stdout, report)
		}
		printStatus(report)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "以 JSON 輸出")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(r statusReport) {
	fmt.Println(style.TitleStyle.Render("opsdeck status") + style.MutedText("  "+r.API))
	for _, s := range r.Subsystems {
		label := style.PadRight(view.SubsystemLabel(s.Subsystem), 14)
		fmt.Printf("  %s %s\n", label, view.DescribeValue(s.Subsystem, s.Value, r.CheckedAt))
		for _, p := range s.Profiles {
			fmt.Printf("  %s   %s\n", style.PadRight("", 14), style.MutedText("· "+p.Name))
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintln(os.Stderr, style.ErrorText(e))
	}
}
