package transform

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/adapters/livereload" //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/logger"     //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/notify"     //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/shell"      //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/core/ports"
)

// NodeID is the unique identifier for the step catalog Graft node.
const NodeID graft.ID = "adapter.transform_catalog"

func init() {
	graft.Register(graft.Node[ports.TransformCatalog]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.FilterNodeID, logger.NodeID, notify.NodeID, livereload.NodeID},
		Run: func(ctx context.Context) (ports.TransformCatalog, error) {
			filter, err := graft.Dep[ports.Filter](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			notifier, err := graft.Dep[ports.Notifier](ctx)
			if err != nil {
				return nil, err
			}
			server, err := graft.Dep[ports.ProxyServer](ctx)
			if err != nil {
				return nil, err
			}
			return NewCatalog(filter, log, notifier, server), nil
		},
	})
}
