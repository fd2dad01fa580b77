package action

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/adapters/fs"         //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/livereload" //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/logger"     //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/shell"      //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/transform"  //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/watcher"    //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/engine/pipeline"
)

// NodeID is the unique identifier for the task action executor Graft node.
const NodeID graft.ID = "engine.action_executor"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			transform.NodeID,
			fs.ResolverNodeID,
			logger.NodeID,
			livereload.NodeID,
			watcher.ServiceNodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			commands, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			catalog, err := graft.Dep[ports.TransformCatalog](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			server, err := graft.Dep[ports.ProxyServer](ctx)
			if err != nil {
				return nil, err
			}
			watch, err := graft.Dep[ports.WatchService](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(commands, pipeline.NewRunner(catalog, resolver, log), server, watch), nil
		},
	})
}
