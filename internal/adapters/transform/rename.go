package transform

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// RenameStep changes the relative path of each file.
const RenameStep = "rename"

type renameOptions struct {
	To       string  `yaml:"to"`
	Dirname  *string `yaml:"dirname"`
	Basename *string `yaml:"basename"`
	Prefix   string  `yaml:"prefix"`
	Suffix   string  `yaml:"suffix"`
	Extname  *string `yaml:"extname"`
}

// Rename rewrites the path of a file relative to its base, either wholesale (To)
// or part by part.
type Rename struct {
	opts renameOptions
}

func newRename(_ *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts renameOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	parts := opts.Dirname != nil || opts.Basename != nil || opts.Extname != nil ||
		opts.Prefix != "" || opts.Suffix != ""
	if (opts.To != "") == parts {
		return nil, invalidOptions(spec, "either to or path parts must be set")
	}
	if opts.Extname != nil && *opts.Extname != "" && !strings.HasPrefix(*opts.Extname, ".") {
		return nil, invalidOptions(spec, "extname must start with a dot")
	}
	return &Rename{opts: opts}, nil
}

// Name returns the step name.
func (r *Rename) Name() string { return RenameStep }

// TransformFile returns f under its new name.
func (r *Rename) TransformFile(_ context.Context, f *domain.File) (*domain.File, error) {
	res := f.Clone()
	res.Path = filepath.Join(f.Base, r.rename(f.Relative()))
	return res, nil
}

func (r *Rename) rename(rel string) string {
	if r.opts.To != "" {
		return filepath.FromSlash(r.opts.To)
	}

	dir := filepath.Dir(rel)
	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(filepath.Base(rel), ext)

	if r.opts.Dirname != nil {
		dir = filepath.FromSlash(*r.opts.Dirname)
	}
	if r.opts.Basename != nil {
		base = *r.opts.Basename
	}
	if r.opts.Extname != nil {
		ext = *r.opts.Extname
	}
	return filepath.Join(dir, r.opts.Prefix+base+r.opts.Suffix+ext)
}
