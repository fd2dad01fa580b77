package ports

import "go.trai.ch/pour/internal/core/domain"

// ConfigLoader defines the interface for loading the task file.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds pour.yaml from the given working directory upwards and returns the task graph.
	Load(cwd string) (*domain.Graph, error)

	// DiscoverRoot walks up from cwd to find the directory containing pour.yaml.
	DiscoverRoot(cwd string) (string, error)
}
