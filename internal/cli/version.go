package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/Yat-Muk/opsdeck/internal/pkg/version"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本信息",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, version.Short())
			return
		}
		fmt.Fprintln(out, version.Info())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "只打印版本號")
	rootCmd.AddCommand(versionCmd)
}
