package transform

import (
	"bytes"
	"context"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// ConcatStep joins the stream into a single file.
const ConcatStep = "concat"

type concatOptions struct {
	Name      string  `yaml:"name"`
	Separator *string `yaml:"separator"`
}

// Concat joins every file of the stream, in order, into one file named Name
// under the base of the first file.
type Concat struct {
	name string
	sep  []byte
}

func newConcat(_ *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts concatOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		return nil, invalidOptions(spec, "name is required")
	}
	sep := "\n"
	if opts.Separator != nil {
		sep = *opts.Separator
	}
	return &Concat{name: opts.Name, sep: []byte(sep)}, nil
}

// Name returns the step name.
func (c *Concat) Name() string { return ConcatStep }

// TransformStream returns the single joined file, or nothing for an empty stream.
func (c *Concat) TransformStream(_ context.Context, files []*domain.File) ([]*domain.File, error) {
	if len(files) == 0 {
		return nil, nil
	}

	parts := make([][]byte, len(files))
	for i, f := range files {
		parts[i] = f.Contents
	}

	first := files[0]
	return []*domain.File{{
		Path:     filepath.Join(first.Base, c.name),
		Base:     first.Base,
		Contents: bytes.Join(parts, c.sep),
		Mode:     first.Mode,
	}}, nil
}
