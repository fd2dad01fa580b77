package watcher

import (
	"context"
	"strings"
	"time"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
)

var _ ports.WatchService = (*Service)(nil)

// Service runs one watcher per call to Watch and feeds its debounced batches to a
// Dispatcher from a single loop.
type Service struct {
	factory  ports.WatcherFactory
	reloader ports.Reloader
	logger   ports.Logger
	window   time.Duration
}

// NewService creates a Service using DefaultDebounceWindow.
func NewService(factory ports.WatcherFactory, reloader ports.Reloader, logger ports.Logger) *Service {
	return &Service{
		factory:  factory,
		reloader: reloader,
		logger:   logger,
		window:   DefaultDebounceWindow,
	}
}

// Watch observes root and dispatches bindings until ctx is cancelled.
// Bindings that run tasks use the ports.TaskRunner carried by ctx.
func (s *Service) Watch(ctx context.Context, root string, bindings []domain.WatchBinding) error {
	runner, _ := ports.TaskRunnerFromContext(ctx)
	dispatcher, err := NewDispatcher(root, bindings, runner, s.reloader, s.logger)
	if err != nil {
		return err
	}

	w, err := s.factory.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, root); err != nil {
		return err
	}

	batches := make(chan []string)
	debouncer := NewDebouncer(s.window, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
	}()

	s.logger.Info("Watching " + strings.Join(dispatcher.Patterns(), ", "))

	for {
		select {
		case <-ctx.Done():
			dispatcher.Wait()
			return nil
		case paths := <-batches:
			dispatcher.Dispatch(ctx, paths)
		}
	}
}
