package ports

import (
	"context"

	"go.trai.ch/pour/internal/core/domain"
)

// Reloader pushes refresh instructions to connected browsers.
// Calls made while no server is running are ignored.
//
//go:generate mockgen -source=reload.go -destination=mocks/mock_reload.go -package=mocks
type Reloader interface {
	// Reload asks every client to reload the page.
	Reload()
	// Inject asks clients to swap the given stylesheets in place.
	// Paths that are not stylesheets cause a full reload.
	Inject(paths []string)
}

// ProxyServer runs the live-reload proxy in front of an upstream origin.
type ProxyServer interface {
	Reloader
	// Serve blocks until ctx is cancelled. root is the project root that relative
	// serve paths resolve against.
	Serve(ctx context.Context, cfg *domain.ServeConfig, root string) error
}

// Notifier emits human readable completion messages.
type Notifier interface {
	Notify(title, message string)
}
