// Package notify implements the notification sink pipeline steps report to.
package notify

import (
	"strings"

	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/pour/internal/ui/style"
)

var _ ports.Notifier = (*Notifier)(nil)

// Notifier writes notifications through the logger, so they interleave with the
// rest of the run output instead of popping up on a desktop.
type Notifier struct {
	logger ports.Logger
}

// NewNotifier creates a Notifier logging to logger.
func NewNotifier(logger ports.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Notify logs message under title. Blank messages are ignored.
func (n *Notifier) Notify(title, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}

	if title == "" {
		n.logger.Info(style.Bell + " " + message)
		return
	}
	n.logger.Info(style.Bell + " " + title + ": " + message)
}
