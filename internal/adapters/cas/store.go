// Package cas implements the build info storage used by the task cache.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/pour/internal/core/domain"
	"go.trai.ch/pour/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BuildInfoStore = (*Store)(nil)

// Store implements ports.BuildInfoStore with one JSON file per task below
// <root>/.pour/store.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the build info for a given task name.
// It returns nil, nil when the task has never been recorded.
func (s *Store) Get(root, taskName string) (*domain.BuildInfo, error) {
	filename := s.filename(root, taskName)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "task", taskName)
	}

	var info domain.BuildInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "task", taskName)
	}

	return &info, nil
}

// Put stores the build info. The record is written to a temporary file first and
// renamed into place, so a concurrent Get never observes a partial record.
func (s *Store) Put(root string, info domain.BuildInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.filename(root, info.TaskName)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	return nil
}

// Dir returns the directory holding the records of the project at root.
func (s *Store) Dir(root string) string {
	return filepath.Join(root, domain.DefaultStorePath())
}

func (s *Store) filename(root, taskName string) string {
	hash := sha256.Sum256([]byte(taskName))
	return filepath.Join(s.Dir(root), hex.EncodeToString(hash[:])+".json")
}
