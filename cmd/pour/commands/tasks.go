package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/pour/internal/ui/style"
)

func (c *CLI) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks declared in pour.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := c.app.Tasks(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, task := range tasks {
				line := style.Title(task.Name)
				if task.Description != "" {
					line += "  " + task.Description
				}
				if len(task.Dependencies) > 0 {
					line += "  " + style.Faint("(after "+strings.Join(task.Dependencies, ", ")+")")
				}
				_, _ = fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
