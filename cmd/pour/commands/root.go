// Package commands implements the CLI commands for the pour task runner.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/pour/internal/app"
	"go.trai.ch/pour/internal/build"
	"go.trai.ch/zerr"
)

// Application is what the commands drive.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Tasks(ctx context.Context) ([]app.TaskSummary, error)
	Init(ctx context.Context, opts app.InitOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// CLI is the pour command tree bound to an Application.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	cwd     string
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}
	c.rootCmd = &cobra.Command{
		Use:   "pour",
		Short: "A task runner for front-end assets",
		Long: "pour runs the tasks declared in pour.yaml: commands, file pipelines,\n" +
			"watchers and a live-reload proxy, in dependency order.",
		Version:           build.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.enterProject,
	}

	c.rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n", build.Commit, build.Date))
	c.rootCmd.InitDefaultVersionFlag()
	c.rootCmd.Flags().Lookup("version").Usage = "Print the application version"
	c.rootCmd.InitDefaultHelpFlag()
	c.rootCmd.Flags().Lookup("help").Usage = "Show help for command"
	c.rootCmd.PersistentFlags().StringVarP(&c.cwd, "cwd", "C", "",
		"Run as if pour was started in this directory")

	for _, sub := range []*cobra.Command{
		c.newRunCmd(),
		c.newTasksCmd(),
		c.newInitCmd(),
		c.newCleanCmd(),
		c.newVersionCmd(),
	} {
		c.rootCmd.AddCommand(sub)
	}
	return c
}

// enterProject switches to --cwd before any command looks for pour.yaml.
func (c *CLI) enterProject(*cobra.Command, []string) error {
	if c.cwd == "" {
		return nil
	}
	if err := os.Chdir(c.cwd); err != nil {
		return zerr.With(zerr.Wrap(err, "cannot enter directory"), "cwd", c.cwd)
	}
	return nil
}

// Execute runs the command named by the arguments.
func (c *CLI) Execute(ctx context.Context) error {
	return c.rootCmd.ExecuteContext(ctx)
}

// SetArgs replaces os.Args[1:].
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and cobra's own messages.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
