package ports

import "go.trai.ch/pour/internal/core/domain"

// BuildInfoStore keeps the hashes of each cacheable task's last fresh build,
// one record per task below the project root.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get returns nil without error when the task was never recorded.
	Get(root, taskName string) (*domain.BuildInfo, error)
	Put(root string, info domain.BuildInfo) error
}
