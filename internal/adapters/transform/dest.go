package transform

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

// DestStep writes the stream to disk.
const DestStep = "dest"

type destOptions struct {
	Dir     string `yaml:"dir"`
	InPlace bool   `yaml:"inPlace"`
}

// Dest writes each file under Dir, keeping its path relative to the stream base.
// With InPlace each file is written back to its own path. Files flow on with their
// new location, so later steps see the written paths.
type Dest struct {
	dir     string
	inPlace bool
	locks   *PathLocks
}

func newDest(c *Catalog, spec domain.StepSpec, root string) (ports.Transform, error) {
	var opts destOptions
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	if opts.Dir == "" && !opts.InPlace {
		return nil, invalidOptions(spec, "dir is required")
	}
	return &Dest{dir: resolvePath(root, opts.Dir), inPlace: opts.InPlace, locks: c.locks}, nil
}

// Name returns the step name.
func (d *Dest) Name() string { return DestStep }

// TransformStream writes every file and returns them at their written location.
func (d *Dest) TransformStream(_ context.Context, files []*domain.File) ([]*domain.File, error) {
	out := make([]*domain.File, 0, len(files))
	for _, f := range files {
		res := f.Clone()
		if !d.inPlace {
			res.Path = filepath.Join(d.dir, f.Relative())
			res.Base = d.dir
		}
		if err := d.write(res.Path, res.Contents); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// write replaces path atomically. Unchanged files are left alone so watchers
// do not see spurious writes.
func (d *Dest) write(path string, contents []byte) error {
	unlock := d.locks.Lock(path)
	defer unlock()

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, contents) { //nolint:gosec // output path
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.OutputDirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileWriteFailed.Error()), "path", path)
	}
	return nil
}
