package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/pour/internal/app"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter pour.yaml into the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return c.app.Init(cmd.Context(), app.InitOptions{Force: force})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing pour.yaml")
	return cmd
}
