package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Filter = (*Filter)(nil)

// maxStderrReport bounds the tool output attached to an error.
const maxStderrReport = 4 << 10

// Filter implements ports.Filter with plain pipes, since the captured stdout is file
// content and must not go through a terminal.
type Filter struct{}

// NewFilter creates a new Filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Filter runs argv in dir, feeding stdin and returning what the program wrote to stdout.
// A non-zero exit is an error carrying the exit code and the program's stderr.
func (f *Filter) Filter(ctx context.Context, argv []string, dir string, stdin []byte) ([]byte, error) {
	if len(argv) == 0 {
		return nil, zerr.New("empty filter command")
	}

	name := argv[0]
	env := newToolEnv(os.Environ(), dir, nil)

	executable, err := env.LookPath(name)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "tool not found"), "command", name)
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = env.List()
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		wrapped := zerr.With(zerr.Wrap(err, "command failed"), "command", name)
		wrapped = zerr.With(wrapped, "exit_code", exitCode(err))
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			if len(msg) > maxStderrReport {
				msg = msg[:maxStderrReport]
			}
			wrapped = zerr.With(wrapped, "stderr", msg)
		}
		return stdout.Bytes(), wrapped
	}

	return stdout.Bytes(), nil
}
