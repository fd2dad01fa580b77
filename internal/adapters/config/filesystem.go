package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the part of the disk the loader reads: the task file and
// the directories searched for it.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFS is the FileSystem of the running process.
type OSFS struct{}

// NewOSFS returns the FileSystem of the running process.
func NewOSFS() OSFS { return OSFS{} }

// Stat implements FileSystem.
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 -- the task file is found by walking up from cwd
}

// MountedFS exposes an fs.FS, usually an fstest.MapFS, under the absolute path Root.
// Absolute paths outside Root do not exist.
type MountedFS struct {
	Root string
	FS   fs.FS
}

// Mount places fsys at root.
func Mount(root string, fsys fs.FS) *MountedFS {
	return &MountedFS{Root: filepath.Clean(root), FS: fsys}
}

// Stat implements FileSystem.
func (m *MountedFS) Stat(path string) (fs.FileInfo, error) {
	name, err := m.name(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(m.FS, name)
}

// ReadFile implements FileSystem.
func (m *MountedFS) ReadFile(path string) ([]byte, error) {
	name, err := m.name(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(m.FS, name)
}

func (m *MountedFS) name(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(m.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return filepath.ToSlash(rel), nil
}
