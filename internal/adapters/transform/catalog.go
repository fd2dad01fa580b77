// Package transform provides the built-in pipeline steps.
package transform

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TransformCatalog = (*Catalog)(nil)

// Builder configures a step from its spec. root is the project root.
type Builder func(c *Catalog, spec domain.StepSpec, root string) (ports.Transform, error)

// Catalog maps step names to builders and carries the collaborators steps need.
type Catalog struct {
	filter   ports.Filter
	logger   ports.Logger
	notifier ports.Notifier
	reloader ports.Reloader
	locks    *PathLocks
	builders map[string]Builder
}

// NewCatalog returns a catalog holding every built-in step.
func NewCatalog(filter ports.Filter, logger ports.Logger, notifier ports.Notifier, reloader ports.Reloader) *Catalog {
	return &Catalog{
		filter:   filter,
		logger:   logger,
		notifier: notifier,
		reloader: reloader,
		locks:    NewPathLocks(),
		builders: map[string]Builder{
			SassStep:       newSass,
			PostCSSStep:    newPostCSS,
			ExecStep:       newExec,
			MinifyStep:     newMinify,
			ConcatStep:     newConcat,
			RenameStep:     newRename,
			DestStep:       newDest,
			ImageminStep:   newImagemin,
			StyleguideStep: newStyleguide,
			NotifyStep:     newNotify,
			ReloadStep:     newReload,
		},
	}
}

// Names returns the registered step names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.builders))
}

// Has reports whether a step with the given name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.builders[name]
	return ok
}

// Build returns the transform configured by spec.
func (c *Catalog) Build(spec domain.StepSpec, root string) (ports.Transform, error) {
	b, ok := c.builders[spec.Use]
	if !ok {
		err := zerr.With(domain.ErrUnknownStep, "step", spec.Use)
		return nil, zerr.With(err, "available", strings.Join(c.Names(), ", "))
	}
	return b(c, spec, root)
}
