package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TempMarker is embedded in every temporary file name created by WriteAtomic
// so leftovers from interrupted writes can be recognised and swept.
const TempMarker = ".tmp-"

// WriteAtomic streams content produced by write into a temporary file next to
// path, syncs it, and renames it over path. Readers observe either the previous
// file or the complete new one. The temporary file is removed on any failure.
func WriteAtomic(path string, mode os.FileMode, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+TempMarker+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err = write(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if mode != 0 {
		if err = os.Chmod(tmpName, mode); err != nil {
			return fmt.Errorf("chmod %s: %w", tmpName, err)
		}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// IsTempFile reports whether name looks like a WriteAtomic leftover.
func IsTempFile(name string) bool {
	return strings.Contains(filepath.Base(name), TempMarker)
}

// SweepTempFiles removes WriteAtomic leftovers below root and returns how many
// were deleted.
func SweepTempFiles(root string) (int, error) {
	removed := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !IsTempFile(d.Name()) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}
