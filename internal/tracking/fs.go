package tracking

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// FileSystem is the disk access the reconciler needs. Every call stands
// alone; a failure affects only the path it names.
type FileSystem interface {
	// MoveFile renames a regular file. It fails with ErrSourceMissing or
	// ErrDestinationExists instead of overwriting.
	MoveFile(src, dst string) error
	// MoveDir renames a directory with the same checks as MoveFile.
	MoveDir(src, dst string) error
	// ListFiles returns the names of regular files directly inside dir.
	ListFiles(dir string) ([]string, error)
	FileExists(path string) bool
	DirExists(path string) bool
}

// OSFileSystem is the FileSystem backed by the host.
type OSFileSystem struct{}

var _ FileSystem = OSFileSystem{}

// MoveFile renames src to dst. Across devices the file is copied and
// the source removed once the copy is synced.
func (OSFileSystem) MoveFile(src, dst string) error {
	if err := checkMove(src, dst, false); err != nil {
		return err
	}
	err := os.Rename(src, dst)
	if errors.Is(err, syscall.EXDEV) {
		if err := copyFile(src, dst); err != nil {
			return err
		}
		err = os.Remove(src)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	return nil
}

// MoveDir renames src to dst. Directories are never copied.
func (OSFileSystem) MoveDir(src, dst string) error {
	if err := checkMove(src, dst, true); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMoveFailed, err)
	}
	return nil
}

func (OSFileSystem) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (OSFileSystem) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (OSFileSystem) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func checkMove(src, dst string, dir bool) error {
	info, err := os.Stat(src)
	if err != nil || info.IsDir() != dir {
		return ErrSourceMissing
	}
	if _, err := os.Lstat(dst); err == nil {
		return ErrDestinationExists
	}
	return nil
}

// copyFile copies src to a new file at dst, removing the partial file on failure.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrMoveFailed, err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open source: %v", ErrMoveFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create destination: %v", ErrMoveFailed, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: copy content: %v", ErrMoveFailed, err)
	}
	if err := dstFile.Sync(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("%w: sync: %v", ErrMoveFailed, err)
	}
	return nil
}
