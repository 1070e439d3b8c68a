package build

import (
	"os"
	"path/filepath"
	"time"
)

// FileSystem is the file access the scheduler needs to decide what to
// rebuild and to clean up. Names are slash-separated and relative to the
// build directory unless absolute.
type FileSystem interface {
	// ModTime returns the modification time of a file.
	ModTime(name string) (time.Time, error)
	// Remove removes a file.
	Remove(name string) error
	// RemoveDir removes a directory if it is empty.
	RemoveDir(name string) error
	// MkdirAll creates a directory and its parents.
	MkdirAll(name string) error
}

// OSFileSystem is a [FileSystem] rooted at Dir.
type OSFileSystem struct {
	Dir string
}

func (f OSFileSystem) path(name string) string {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) || f.Dir == "" {
		return name
	}

	return filepath.Join(f.Dir, name)
}

func (f OSFileSystem) ModTime(name string) (time.Time, error) {
	info, err := os.Stat(f.path(name))
	if err != nil {
		return time.Time{}, err
	}

	return info.ModTime(), nil
}

func (f OSFileSystem) Remove(name string) error {
	return os.Remove(f.path(name))
}

func (f OSFileSystem) RemoveDir(name string) error {
	// os.Remove refuses to remove a directory that is not empty.
	return os.Remove(f.path(name))
}

func (f OSFileSystem) MkdirAll(name string) error {
	return os.MkdirAll(f.path(name), 0o755)
}
