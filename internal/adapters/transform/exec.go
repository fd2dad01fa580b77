package transform

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"text/template"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// ExecStep runs an arbitrary command for every file.
const ExecStep = "exec"

const (
	execModeFilter = "filter"
	execModeCheck  = "check"
)

type execOptions struct {
	Args []string `yaml:"args"`
	Mode string   `yaml:"mode"`
	Dir  string   `yaml:"dir"`
}

// fileData is exposed to argument and message templates.
type fileData struct {
	Path     string
	Relative string
	Base     string
	Name     string
}

func newFileData(f *domain.File) fileData {
	return fileData{
		Path:     f.Path,
		Relative: filepath.ToSlash(f.Relative()),
		Base:     f.Base,
		Name:     filepath.Base(f.Path),
	}
}

// Exec runs a command per file. In filter mode the file contents are piped through
// the command; in check mode the command only inspects the file and failures are reported.
type Exec struct {
	args        []*template.Template
	mode        string
	dir         string
	failOnError bool
	filter      ports.Filter
	logger      ports.Logger
}

func newExec(c *Catalog, spec domain.StepSpec, root string) (ports.Transform, error) {
	var opts execOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if len(opts.Args) == 0 {
		return nil, invalidOptions(spec, "args is required")
	}
	switch opts.Mode {
	case "":
		opts.Mode = execModeFilter
	case execModeFilter, execModeCheck:
	default:
		return nil, invalidOptions(spec, "mode must be filter or check")
	}

	e := &Exec{
		mode:        opts.Mode,
		dir:         root,
		failOnError: spec.FailOnError(),
		filter:      c.filter,
		logger:      c.logger,
	}
	if opts.Dir != "" {
		e.dir = resolvePath(root, opts.Dir)
	}
	for i, arg := range opts.Args {
		tmpl, err := template.New(arg).Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, zerr.With(invalidOptions(spec, err.Error()), "arg", i)
		}
		e.args = append(e.args, tmpl)
	}
	return e, nil
}

// Name returns the step name.
func (e *Exec) Name() string { return ExecStep }

// TransformFile runs the command for f.
func (e *Exec) TransformFile(ctx context.Context, f *domain.File) (*domain.File, error) {
	argv, err := e.argv(f)
	if err != nil {
		return nil, err
	}

	if e.mode == execModeCheck {
		out, err := e.filter.Filter(ctx, argv, e.dir, nil)
		if err == nil {
			return f, nil
		}
		if report := strings.TrimSpace(string(out)); report != "" {
			err = zerr.With(err, "report", report)
		}
		if e.failOnError {
			return nil, err
		}
		e.logger.Error(zerr.With(zerr.Wrap(err, "check failed"), "file", filepath.ToSlash(f.Relative())))
		return f, nil
	}

	out, err := e.filter.Filter(ctx, argv, e.dir, f.Contents)
	if err != nil {
		return nil, err
	}
	res := f.Clone()
	res.Contents = out
	return res, nil
}

func (e *Exec) argv(f *domain.File) ([]string, error) {
	data := newFileData(f)
	argv := make([]string, len(e.args))
	for i, tmpl := range e.args {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, zerr.Wrap(err, "failed to render argument")
		}
		argv[i] = buf.String()
	}
	return argv, nil
}
