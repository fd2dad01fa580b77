package scheduler

import (
	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/zerr"
)

// lookup hashes the task sources and reports whether the stored build info
// still describes them and the outputs on disk. With noCache only the hash is
// computed, so the refreshed build info can still be recorded.
func (s *Scheduler) lookup(task *domain.Task, root string, noCache bool) (fresh bool, inputHash string, err error) {
	files, err := s.resolver.ResolveInputs(task.SourcePatterns(), root)
	if err != nil {
		return false, "", zerr.Wrap(err, domain.ErrInputResolutionFailed.Error())
	}
	inputHash, err = s.hasher.ComputeInputHash(task, task.Environment, files)
	if err != nil {
		return false, "", zerr.Wrap(err, domain.ErrInputHashComputationFailed.Error())
	}
	if noCache {
		return false, inputHash, nil
	}

	info, err := s.store.Get(root, task.Name.String())
	if err != nil {
		return false, inputHash, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if info == nil || info.InputHash != inputHash {
		return false, inputHash, nil
	}

	outputHash, err := s.hasher.ComputeOutputHash(domain.Strings(task.Outputs), root)
	if err != nil {
		// Missing outputs are a cache miss.
		return false, inputHash, nil //nolint:nilerr // cache miss, not a failure
	}
	return info.OutputHash == outputHash, inputHash, nil
}
