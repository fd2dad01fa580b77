package domain

import (
	"io/fs"
	"path/filepath"
)

// File is a source file travelling through a stream.
type File struct {
	// Path is the absolute location of the file.
	Path string
	// Base is the absolute directory Relative is computed from.
	Base     string
	Contents []byte
	Mode     fs.FileMode
}

// Relative returns the path of the file relative to its base.
func (f *File) Relative() string {
	rel, err := filepath.Rel(f.Base, f.Path)
	if err != nil {
		return filepath.Base(f.Path)
	}
	return rel
}

// Clone returns a copy of the file that shares no mutable state with f.
func (f *File) Clone() *File {
	c := *f
	c.Contents = append([]byte(nil), f.Contents...)
	return &c
}
