// Package shell runs the external programs tasks and pipeline steps delegate to.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner on a pseudo terminal, so tools keep their
// colored output.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	return err
}

func start(ctx context.Context, task *domain.Task, stdout io.Writer) (*ptyProcess, error) {
	name := task.Command[0]
	args := task.Command[1:]
	dir := task.WorkingDir.String()

	env := newToolEnv(os.Environ(), dir, task.Environment)

	executable, err := env.LookPath(name)
	if err != nil {
		// Let exec report the missing program.
		executable = name
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = dir
	cmd.Env = env.List()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to start pty"), "command", name)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// The pty merges stdout and stderr.
		_, _ = io.Copy(stdout, ptmx)
	}()

	return &ptyProcess{cmd: cmd, ioDone: ioDone}, nil
}

// RunCommand runs the task's command and waits for it to complete.
// A task without a command is a no-op.
func (r *Runner) RunCommand(ctx context.Context, task *domain.Task, stdout, _ io.Writer) error {
	if len(task.Command) == 0 {
		return nil
	}

	proc, err := start(ctx, task, stdout)
	if err != nil {
		return err
	}

	if err := proc.Wait(); err != nil {
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode(err))
	}

	return nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
