package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFilesystem creates picture directories on the local disk
type OSFilesystem struct {
	perm os.FileMode
}

// NewOSFilesystem returns a filesystem creating directories with mode 0755
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{perm: 0755}
}

// EnsureDir creates path and any missing parents. Existing directories are left alone.
func (f *OSFilesystem) EnsureDir(path string) error {
	if err := os.MkdirAll(path, f.perm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

func (f *OSFilesystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}
