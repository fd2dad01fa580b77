// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/pour/internal/adapters/cas"
	_ "go.trai.ch/pour/internal/adapters/config"
	_ "go.trai.ch/pour/internal/adapters/fs"
	_ "go.trai.ch/pour/internal/adapters/livereload"
	_ "go.trai.ch/pour/internal/adapters/logger"
	_ "go.trai.ch/pour/internal/adapters/notify"
	_ "go.trai.ch/pour/internal/adapters/shell"
	_ "go.trai.ch/pour/internal/adapters/transform"
	_ "go.trai.ch/pour/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/pour/internal/app"
	_ "go.trai.ch/pour/internal/engine/action"
)
