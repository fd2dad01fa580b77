package notify

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/adapters/logger" //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/core/ports"
)

// NodeID is the unique identifier for the notifier Graft node.
const NodeID graft.ID = "adapter.notifier"

func init() {
	graft.Register(graft.Node[ports.Notifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Notifier, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewNotifier(log), nil
		},
	})
}
