package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the command runner Graft node.
	NodeID graft.ID = "adapter.command_runner"
	// FilterNodeID is the unique identifier for the filter Graft node.
	FilterNodeID graft.ID = "adapter.filter"
)

func init() {
	graft.Register(graft.Node[ports.CommandRunner]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.CommandRunner, error) {
			return NewRunner(), nil
		},
	})

	graft.Register(graft.Node[ports.Filter]{
		ID:        FilterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Filter, error) {
			return NewFilter(), nil
		},
	})
}
