package domain

// WatchBinding pairs glob patterns with the action dispatched when a matching path changes.
type WatchBinding struct {
	// Paths holds glob patterns relative to the project root.
	Paths []string
	// Run lists the tasks executed, with their prerequisites, on change.
	Run []InternedString
	// Reload pushes a full page reload to connected browsers instead of running tasks.
	Reload bool
}

// ServeConfig configures the live-reload proxy.
type ServeConfig struct {
	// Proxy is the upstream origin, e.g. http://theme.test.
	Proxy string
	// Listen is the local address the proxy binds to.
	Listen string
	// WS enables proxying of websocket upgrades to the upstream.
	WS bool
	// DocRoot is the directory whose layout mirrors the served URL space.
	// It is used to turn written CSS files into injectable URLs.
	DocRoot string
	// Watch bindings that are active while serving.
	Watch []WatchBinding
}

// DefaultListenAddr is the address the proxy binds to when none is configured.
const DefaultListenAddr = ":3000"
