package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxCopies bounds the "name (n).ext" search.
const maxCopies = 1000

// FileSaver writes downloads into Dir without overwriting existing files.
// A clash gets a numbered name the way browsers do it: "report (1).pdf".
type FileSaver struct {
	Dir string
}

func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{Dir: dir}
}

// Save streams r into Dir under name and returns the final path. The data
// lands in a temp file first, so a failed copy never leaves a partial file
// under the final name.
func (s *FileSaver) Save(name string, r io.Reader) (path string, err error) {
	if err := EnsureDirectory(s.Dir); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.Dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp file in %s: %w", s.Dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("cannot write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("cannot sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("cannot close %s: %w", name, err)
	}

	path, err = s.reserve(SanitizeFilename(name))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("cannot move download to %s: %w", path, err)
	}

	return path, nil
}

// reserve claims the first free name of "name", "name (1)", ... by
// creating it exclusively. The empty placeholder is then replaced by the
// download, so a file created by anyone else is never overwritten.
func (s *FileSaver) reserve(name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(s.Dir, name)
	for n := 1; n <= maxCopies; n++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			if err := f.Close(); err != nil {
				os.Remove(candidate)
				return "", fmt.Errorf("cannot reserve %s: %w", candidate, err)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("cannot reserve %s: %w", candidate, err)
		}
		candidate = filepath.Join(s.Dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}

	return "", fmt.Errorf("too many copies of %s in %s", name, s.Dir)
}
