package livereload

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/adapters/logger" //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/core/ports"
)

// NodeID is the unique identifier for the live-reload server Graft node.
const NodeID graft.ID = "adapter.livereload"

func init() {
	graft.Register(graft.Node[ports.ProxyServer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ProxyServer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(log), nil
		},
	})
}
