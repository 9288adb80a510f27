package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
)

var (
	historyJSON  bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "查看後端記錄的操作歷史",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		entries, err := a.client.History(cmd.Context())
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[:historyLimit]
		}

		if historyJSON {
			return writeJSON(os.Stdout, entries)
		}
		if len(entries) == 0 {
			fmt.Println("System initialized. No changes yet.")
			return nil
		}
		now := time.Now()
		for _, e := range entries {
			fmt.Println(a.formatLine(domainConsole.LogLine{
				Timestamp: e.Timestamp,
				Level:     e.Level,
				Text:      fmt.Sprintf("%s (%s)", e.Message, humanize.RelTime(e.Timestamp, now, "ago", "from now")),
			}))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "以 JSON 輸出")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "最多顯示的條數 (0 為不限)")
	rootCmd.AddCommand(historyCmd)
}
