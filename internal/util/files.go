package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReplaceExt returns the base name of path with its extension replaced by
// ext, placed in dir, or beside path if dir is empty.
func ReplaceExt(path, dir, ext string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ext
	if dir == "" {
		dir = filepath.Dir(path)
	}
	return filepath.Join(dir, base)
}
