package ports

import "go.trai.ch/pour/internal/core/domain"

// Hasher computes cache keys for tasks.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeInputHash hashes the task definition, the environment and the content of
	// the already resolved input files.
	ComputeInputHash(task *domain.Task, env map[string]string, inputs []string) (string, error)

	// ComputeOutputHash hashes the files found under the given output paths.
	ComputeOutputHash(outputs []string, root string) (string, error)
}
