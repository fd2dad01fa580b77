// Package pipeline runs file streams through their ordered step lists.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// maxParallelReads bounds the number of source files read at once.
const maxParallelReads = 16

// Runner applies stream step lists to the files matched by their sources.
type Runner struct {
	catalog  ports.TransformCatalog
	resolver ports.InputResolver
	logger   ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(catalog ports.TransformCatalog, resolver ports.InputResolver, logger ports.Logger) *Runner {
	return &Runner{
		catalog:  catalog,
		resolver: resolver,
		logger:   logger,
	}
}

// Check reports the first step of streams that names no registered transform.
func (r *Runner) Check(streams []domain.Stream) error {
	for _, s := range streams {
		for _, step := range s.Steps {
			if !r.catalog.Has(step.Use) {
				return zerr.With(domain.ErrUnknownStep, "step", step.Use)
			}
		}
	}
	return nil
}

// Run reads the files matched by stream.Src under root and applies the steps in order.
// It returns the files that survive the last step.
//
// A source glob that matches nothing yields an empty stream. A per-file step error drops
// that file and is logged, unless the step sets failOnError. Stream step errors fail
// the run.
func (r *Runner) Run(ctx context.Context, stream domain.Stream, root string) ([]*domain.File, error) {
	steps := make([]ports.Transform, len(stream.Steps))
	for i, spec := range stream.Steps {
		t, err := r.catalog.Build(spec, root)
		if err != nil {
			return nil, err
		}
		steps[i] = t
	}

	paths, err := r.resolver.ResolveInputs(stream.Src, root)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInputResolutionFailed.Error())
	}

	files, err := readFiles(ctx, paths, resolveBase(root, stream.ResolveBase()))
	if err != nil {
		return nil, err
	}

	for i, t := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err = r.apply(ctx, t, stream.Steps[i], files)
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (r *Runner) apply(
	ctx context.Context,
	t ports.Transform,
	spec domain.StepSpec,
	files []*domain.File,
) ([]*domain.File, error) {
	switch step := t.(type) {
	case ports.StreamTransform:
		out, err := step.TransformStream(ctx, files)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStepFailed.Error()), "step", spec.Use)
		}
		return out, nil

	case ports.FileTransform:
		out := make([]*domain.File, 0, len(files))
		for _, f := range files {
			next, err := step.TransformFile(ctx, f)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				wrapped := zerr.With(zerr.Wrap(err, domain.ErrStepFailed.Error()), "step", spec.Use)
				wrapped = zerr.With(wrapped, "file", f.Relative())
				if spec.FailOnError() {
					return nil, wrapped
				}
				r.logger.Error(wrapped)
				continue
			}
			if next != nil {
				out = append(out, next)
			}
		}
		return out, nil

	default:
		return nil, zerr.With(domain.ErrUnknownStep, "step", spec.Use)
	}
}

func resolveBase(root, base string) string {
	if filepath.IsAbs(base) {
		return filepath.Clean(base)
	}
	return filepath.Join(root, filepath.FromSlash(base))
}

// readFiles loads paths concurrently, keeping their order.
func readFiles(ctx context.Context, paths []string, base string) ([]*domain.File, error) {
	files := make([]*domain.File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
			}
			files[i] = &domain.File{
				Path:     path,
				Base:     base,
				Contents: data,
				Mode:     info.Mode().Perm(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
