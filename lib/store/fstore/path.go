package fstore

import (
	"path/filepath"

	"github.com/ValentinKolb/keep/lib/record"
)

// resolveDir converts the configured storage directory into an absolute path.
// Absolute paths are used verbatim, relative paths are joined to cwd.
func resolveDir(dir, cwd string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(cwd, dir)
}

// entryPath returns the path of the entry file of key.
func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, record.HashKey(key))
}
