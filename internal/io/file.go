// Package ioutils provides file system utilities for the smugmug-downloader.
//
// This package contains functions for:
//   - Directory creation
//   - Existence checks used to skip already-downloaded media
//   - Atomic, streamed file writes
//   - Image verification
package ioutils

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// maxTempBase bounds how much of the final name goes into a temporary
// file name, so a legal final name never yields an overlong temp name.
const maxTempBase = 64

// renameFunc is replaced in tests to simulate rename failures.
var renameFunc = os.Rename

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists reports whether path exists and is a regular file.
//
// Directories and other non-regular entries report false, so a media item
// whose path is taken by a directory is not mistaken for a finished download.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteStreamAtomic creates path by calling fill with a temporary file in the
// same directory and renaming it into place once fill succeeds.
//
// If fill returns an error, or ctx is cancelled before the rename, the
// temporary file is removed and path is left untouched. The final file is
// created with mode 0644.
//
// Example:
//
//	err := WriteStreamAtomic(ctx, "/out/album/IMG_1.jpg", func(w io.Writer) error {
//	    _, err := client.DownloadFile(ctx, url, w, nil)
//	    return err
//	})
func WriteStreamAtomic(ctx context.Context, path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPattern(filepath.Base(path)))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return renameFunc(tmpName, path)
}

// tempPattern returns the os.CreateTemp pattern for a partial download of
// base. The leading dot keeps partial files out of photo library views.
func tempPattern(base string) string {
	if len(base) > maxTempBase {
		cut := maxTempBase
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	return "." + base + ".part-*"
}

// RemoveIfExists deletes path, ignoring "does not exist" errors.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
