// Package livereload serves a reverse proxy in front of the development origin and
// pushes reload and stylesheet injection instructions to the browsers using it.
package livereload

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// ClientPath serves the browser script.
	ClientPath = "/__pour/client.js"
	// SocketPath is the websocket side channel.
	SocketPath = "/__pour/ws"

	shutdownTimeout   = 2 * time.Second
	readHeaderTimeout = 10 * time.Second
)

//go:embed client.js
var clientScript []byte

var _ ports.ProxyServer = (*Server)(nil)

// Server implements ports.ProxyServer. Reload and Inject are no-ops unless Serve is
// running.
type Server struct {
	logger ports.Logger

	mu      sync.RWMutex
	hub     *Hub
	docRoot string
	addr    string
}

// NewServer creates a Server that is not yet serving.
func NewServer(logger ports.Logger) *Server {
	return &Server{logger: logger}
}

// Addr returns the bound address while serving, or an empty string.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Serve proxies cfg.Proxy on cfg.Listen until ctx is cancelled.
// Only one Serve may run at a time.
func (s *Server) Serve(ctx context.Context, cfg *domain.ServeConfig, root string) error {
	target, err := url.Parse(cfg.Proxy)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidProxyTarget.Error()), "proxy", cfg.Proxy)
	}

	listen := cfg.Listen
	if listen == "" {
		listen = domain.DefaultListenAddr
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerStartFailed.Error()), "listen", listen)
	}

	hub := NewHub(s.logger)
	mux := http.NewServeMux()
	mux.Handle(SocketPath, hub)
	mux.HandleFunc(ClientPath, serveClient)
	mux.Handle("/", newProxy(target, cfg.WS, s.logger))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	if !s.attach(hub, resolveDocRoot(root, cfg.DocRoot), ln.Addr().String()) {
		_ = ln.Close()
		return zerr.With(zerr.New("live-reload server already running"), "listen", listen)
	}
	defer s.detach()

	s.logger.Info("Proxying " + target.String() + " at http://" + displayAddr(ln.Addr()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrServerStartFailed.Error())
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	return nil
}

func (s *Server) attach(hub *Hub, docRoot, addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hub != nil {
		return false
	}
	s.hub = hub
	s.docRoot = docRoot
	s.addr = addr
	return true
}

func (s *Server) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub = nil
	s.docRoot = ""
	s.addr = ""
}

// Reload asks every connected browser to reload the page.
func (s *Server) Reload() {
	s.mu.RLock()
	hub := s.hub
	s.mu.RUnlock()
	if hub == nil {
		return
	}
	hub.Broadcast(Message{Type: TypeReload})
}

// Inject swaps the given stylesheets in connected browsers. Any path that is not a
// stylesheet under the document root turns the whole batch into a single reload.
func (s *Server) Inject(paths []string) {
	s.mu.RLock()
	hub, docRoot := s.hub, s.docRoot
	s.mu.RUnlock()
	if hub == nil || len(paths) == 0 {
		return
	}

	msgs := make([]Message, 0, len(paths))
	for _, p := range paths {
		u, ok := stylesheetURL(docRoot, p)
		if !ok {
			hub.Broadcast(Message{Type: TypeReload})
			return
		}
		msgs = append(msgs, Message{Type: TypeInject, Path: u})
	}
	for _, m := range msgs {
		hub.Broadcast(m)
	}
}

// stylesheetURL maps a CSS file below docRoot to its URL path.
func stylesheetURL(docRoot, path string) (string, bool) {
	if !strings.EqualFold(filepath.Ext(path), ".css") {
		return "", false
	}
	rel, err := filepath.Rel(docRoot, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + filepath.ToSlash(rel), true
}

func resolveDocRoot(root, docRoot string) string {
	if docRoot == "" {
		return root
	}
	if filepath.IsAbs(docRoot) {
		return filepath.Clean(docRoot)
	}
	return filepath.Join(root, docRoot)
}

func displayAddr(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		return net.JoinHostPort("localhost", strconv.Itoa(tcp.Port))
	}
	return addr.String()
}

func serveClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(clientScript)
}
