package fstore

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/afero"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultRoot     = ".keep"
	defaultSubdir   = "storage"
	defaultFileMode = os.FileMode(0o644)
	defaultDirMode  = os.FileMode(0o755)
	tmpPrefix       = ".tmp-"
	tmpPattern      = tmpPrefix + "*" // temp files are dotfiles and never listed
	staleTmpAge     = time.Hour       // temp files older than this are left over from a crash
)

// Logger is the default diagnostic sink of file stores.
var Logger = logger.GetLogger("keep")

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config configures a file store. Use DefaultConfig to obtain a config with
// all defaults filled in.
type Config struct {
	// Dir is the storage directory. Relative paths are resolved against the
	// working directory at construction time.
	Dir string
	// Logger receives diagnostic messages (nil = the package level Logger).
	Logger logger.ILogger
	// NoLog disables logging, Logger is ignored.
	NoLog bool
	// Fs is the filesystem the store operates on (nil = the OS filesystem).
	Fs afero.Fs
	// Concurrency bounds the number of files processed in parallel by
	// aggregate operations (0 = number of CPUs, 1 = sequential).
	Concurrency int
	// FileMode is the permission of entry files (0 = 0644).
	FileMode os.FileMode
	// DirMode is the permission of the storage directory (0 = 0755).
	DirMode os.FileMode
	// SyncWrites flushes every entry file to stable storage before it becomes visible.
	SyncWrites bool
}

// DefaultConfig returns a new default configuration. The storage directory is
// ".keep/<subdir>" with subdir defaulting to "storage".
// Every call returns a fresh value, configs are never shared between stores.
func DefaultConfig(subdir ...string) Config {
	sub := defaultSubdir
	if len(subdir) > 0 && subdir[0] != "" {
		sub = subdir[0]
	}
	return Config{
		Dir:         filepath.Join(defaultRoot, sub),
		Logger:      Logger,
		Fs:          afero.NewOsFs(),
		Concurrency: runtime.NumCPU(),
		FileMode:    defaultFileMode,
		DirMode:     defaultDirMode,
	}
}

// withDefaults fills zero valued fields (except SyncWrites) from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Dir == "" {
		c.Dir = def.Dir
	}
	switch {
	case c.NoLog:
		c.Logger = nil
	case c.Logger == nil:
		c.Logger = def.Logger
	}
	if c.Fs == nil {
		c.Fs = def.Fs
	}
	if c.Concurrency < 1 {
		c.Concurrency = def.Concurrency
	}
	if c.FileMode == 0 {
		c.FileMode = def.FileMode
	}
	if c.DirMode == 0 {
		c.DirMode = def.DirMode
	}
	return c
}
