// Package fs provides file system adapters for globbing, walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
)

// skippedDirs are never descended into, whatever the patterns say.
var skippedDirs = map[string]bool{
	".git":             true,
	".jj":              true,
	domain.PourDirName: true,
	"node_modules":     true,
}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the paths of all regular files below root, skipping VCS, state and
// dependency directories as well as entries whose name matches one of ignores.
// Paths are yielded joined to root. A root that does not exist yields nothing.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root {
				if skip, action := w.shouldSkip(d, ignores); skip {
					return action
				}
			}

			if !d.Type().IsRegular() {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkip reports whether the entry is filtered out. For directories the returned
// action is filepath.SkipDir.
func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) (bool, error) {
	name := d.Name()

	if d.IsDir() && skippedDirs[name] {
		return true, filepath.SkipDir
	}

	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			if d.IsDir() {
				return true, filepath.SkipDir
			}
			return true, nil
		}
	}

	return false, nil
}
