// Package filesystem routes every disk access of the application through a swappable afero backend.
//
// Production code uses the OS filesystem; tests switch to an in-memory one with SetMemMapFs.
package filesystem

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory backend.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// Publish moves a fully written temporary file or directory to its final path,
// replacing whatever was there before.
func Publish(tmp, final string) error {
	if err := backend.RemoveAll(final); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return backend.Rename(tmp, final)
}

// Exists reports whether path exists; permission errors are returned.
func Exists(path string) (bool, error) {
	_, err := backend.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
