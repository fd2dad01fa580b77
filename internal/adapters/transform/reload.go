package transform

import (
	"context"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

// ReloadStep pushes the stream to connected browsers.
const ReloadStep = "reload"

// Reload injects stylesheets of the stream into connected browsers, or reloads
// the page for any other file.
type Reload struct {
	reloader ports.Reloader
}

func newReload(c *Catalog, spec domain.StepSpec, _ string) (ports.Transform, error) {
	var opts struct{}
	if err := decodeOptions(spec, &opts); err != nil {
		return nil, err
	}
	return &Reload{reloader: c.reloader}, nil
}

// Name returns the step name.
func (r *Reload) Name() string { return ReloadStep }

// TransformStream notifies the reloader and passes the stream on unchanged.
func (r *Reload) TransformStream(_ context.Context, files []*domain.File) ([]*domain.File, error) {
	if len(files) == 0 {
		return files, nil
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	r.reloader.Inject(paths)
	return files, nil
}
