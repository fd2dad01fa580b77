package ports

import (
	"context"

	"go.trai.ch/pour/internal/core/domain"
)

// Transform is a configured pipeline step.
type Transform interface {
	// Name returns the step name as written in the task file.
	Name() string
}

// FileTransform processes files one at a time.
// Returning a nil file drops it from the stream.
type FileTransform interface {
	Transform
	TransformFile(ctx context.Context, file *domain.File) (*domain.File, error)
}

// StreamTransform sees the whole stream at once.
type StreamTransform interface {
	Transform
	TransformStream(ctx context.Context, files []*domain.File) ([]*domain.File, error)
}

// TransformCatalog builds transforms from step specs.
type TransformCatalog interface {
	// Has reports whether a step with the given name is registered.
	Has(name string) bool
	// Build returns the transform configured by spec. root is the project root.
	Build(spec domain.StepSpec, root string) (Transform, error)
}
