package scheduler

import (
	"maps"

	"go.trai.ch/pour/internal/core/domain"
)

// TaskStatusMap returns a snapshot of every recorded task status.
func (s *Scheduler) TaskStatusMap() map[domain.InternedString]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.statuses)
}

// Status returns the last known status of a task.
func (s *Scheduler) Status(name string) TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statuses[domain.NewInternedString(name)]
}
