package transform

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// SassStep compiles Sass sources with the dart-sass command line.
const SassStep = "sass"

type sassOptions struct {
	LoadPaths []string `yaml:"loadPaths"`
	Style     string   `yaml:"style"`
	SourceMap bool     `yaml:"sourceMap"`
	Command   string   `yaml:"command"`
}

// Sass pipes each file through "sass --stdin". Partials (names starting with "_")
// are dropped from the stream.
type Sass struct {
	opts   sassOptions
	root   string
	filter ports.Filter
}

func newSass(c *Catalog, spec domain.StepSpec, root string) (ports.Transform, error) {
	var opts sassOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	switch opts.Style {
	case "":
		opts.Style = "expanded"
	case "expanded", "compressed":
	default:
		return nil, invalidOptions(spec, "style must be expanded or compressed")
	}
	if opts.Command == "" {
		opts.Command = "sass"
	}
	return &Sass{opts: opts, root: root, filter: c.filter}, nil
}

// Name returns the step name.
func (s *Sass) Name() string { return SassStep }

// TransformFile compiles f into a .css file.
func (s *Sass) TransformFile(ctx context.Context, f *domain.File) (*domain.File, error) {
	if strings.HasPrefix(filepath.Base(f.Path), "_") {
		return nil, nil
	}

	out, err := s.filter.Filter(ctx, s.argv(f), s.root, f.Contents)
	if err != nil {
		return nil, err
	}

	res := f.Clone()
	res.Contents = out
	res.Path = replaceExt(f.Path, ".css")
	return res, nil
}

func (s *Sass) argv(f *domain.File) []string {
	argv := []string{s.opts.Command, "--stdin", "--style=" + s.opts.Style}
	if s.opts.SourceMap {
		argv = append(argv, "--embed-source-map", "--embed-sources")
	} else {
		argv = append(argv, "--no-source-map")
	}
	argv = append(argv, "--load-path="+filepath.Dir(f.Path))
	for _, lp := range s.opts.LoadPaths {
		argv = append(argv, "--load-path="+resolvePath(s.root, lp))
	}
	return argv
}
