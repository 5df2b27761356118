package models

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// FileHandle is an opaque reference to a file chosen for bulk analysis.
type FileHandle interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// LocalFile is a file on disk.
type LocalFile struct {
	Path string
}

func (f LocalFile) Name() string { return filepath.Base(f.Path) }

func (f LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// MemoryFile is a file held in memory.
type MemoryFile struct {
	Filename string
	Data     []byte
}

func (f MemoryFile) Name() string { return f.Filename }

func (f MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// SelectedFiles is an ordered selection. A new selection replaces the old
// one, it is never merged.
type SelectedFiles []FileHandle

// Names returns the file names in selection order.
func (s SelectedFiles) Names() []string {
	names := make([]string, 0, len(s))
	for _, f := range s {
		names = append(names, f.Name())
	}
	return names
}

// Clone returns a copy that does not share the backing array.
func (s SelectedFiles) Clone() SelectedFiles {
	if s == nil {
		return nil
	}
	out := make(SelectedFiles, len(s))
	copy(out, s)
	return out
}
