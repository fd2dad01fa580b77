package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/pour/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run tasks and their prerequisites (default: the default task)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noCache, _ := cmd.Flags().GetBool("no-cache")
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				NoCache: noCache,
				Jobs:    jobs,
			})
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass the build cache and force execution")
	cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Maximum number of tasks running at once")
	return cmd
}
