package transform

import (
	"context"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// PostCSSStep runs the postcss command line with a list of plugins.
const PostCSSStep = "postcss"

type postcssOptions struct {
	Plugins []string `yaml:"plugins"`
	Config  string   `yaml:"config"`
	Command string   `yaml:"command"`
}

// PostCSS pipes each file through postcss-cli.
type PostCSS struct {
	argv   []string
	root   string
	filter ports.Filter
}

func newPostCSS(c *Catalog, spec domain.StepSpec, root string) (ports.Transform, error) {
	var opts postcssOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if len(opts.Plugins) == 0 && opts.Config == "" {
		return nil, invalidOptions(spec, "plugins or config is required")
	}
	if opts.Command == "" {
		opts.Command = "postcss"
	}

	argv := []string{opts.Command}
	for _, p := range opts.Plugins {
		argv = append(argv, "--use", p)
	}
	if opts.Config != "" {
		argv = append(argv, "--config", resolvePath(root, opts.Config))
	}
	argv = append(argv, "--no-map")

	return &PostCSS{argv: argv, root: root, filter: c.filter}, nil
}

// Name returns the step name.
func (p *PostCSS) Name() string { return PostCSSStep }

// TransformFile replaces the file contents with the processed stylesheet.
func (p *PostCSS) TransformFile(ctx context.Context, f *domain.File) (*domain.File, error) {
	out, err := p.filter.Filter(ctx, p.argv, p.root, f.Contents)
	if err != nil {
		return nil, err
	}
	res := f.Clone()
	res.Contents = out
	return res, nil
}
