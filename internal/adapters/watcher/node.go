package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pour/internal/adapters/livereload" //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/adapters/logger"     //nolint:depguard // Wired in node
	"go.trai.ch/pour/internal/core/ports"
)

const (
	// FactoryNodeID is the unique identifier for the watcher factory Graft node.
	FactoryNodeID graft.ID = "adapter.watcher_factory"
	// ServiceNodeID is the unique identifier for the watch service Graft node.
	ServiceNodeID graft.ID = "adapter.watch_service"
)

func init() {
	graft.Register(graft.Node[ports.WatcherFactory]{
		ID:        FactoryNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WatcherFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})

	graft.Register(graft.Node[ports.WatchService]{
		ID:        ServiceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FactoryNodeID, livereload.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.WatchService, error) {
			factory, err := graft.Dep[ports.WatcherFactory](ctx)
			if err != nil {
				return nil, err
			}
			server, err := graft.Dep[ports.ProxyServer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewService(factory, server, log), nil
		},
	})
}
