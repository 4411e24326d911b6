// Package fstore implements a persistent key-value store based on the
// store.IStore interface. Every entry is stored as an individual JSON file
// inside a single storage directory, no database is involved.
//
// Storage Layout:
//
//	Each entry lives in a file named by the lowercase hex SHA-256 of its key,
//	containing {"key": <key>, "value": <value>}. Writes go to a temp file
//	(".tmp-*") that is renamed over the entry, so readers see either the old
//	or the new record, never a partial one. Temp files older than an hour are
//	left over from a crash and removed by Init.
//
//	Aggregate operations (Data, Keys, Values, Length, Clear) list the
//	directory and read the entries in parallel, bounded by Config.Concurrency.
//	Directories, dotfiles, files not named like an identifier, undecodable
//	records and records stored under another key's identifier are skipped.
//
// Error Policy:
//
//   - Absent: a missing entry or storage directory is not an error
//     (GetItem reports loaded=false, listings are empty)
//   - Corrupt: an entry that is not a valid record of its key is treated like
//     an absent one and logged as a warning
//   - Everything else is logged as an error and returned as *store.Error with
//     RetCIOError (RetCInitError for Init)
//
// Configuration:
//
//	DefaultConfig returns a fresh Config per call, storing into
//	".keep/<subdir>" on the OS filesystem with the package level Logger.
//	NewFileStore fills zero valued fields from it, NoLog disables logging.
//	Relative directories are resolved against the working directory once,
//	at construction time. The filesystem is an afero.Fs, so stores can run on
//	memory or read-only filesystems.
//
// Usage Example:
//
//	s, err := fstore.Open(fstore.DefaultConfig("cache"))
//
//	err = s.SetItem("user:1", map[string]any{"name": "alice"})
//
//	value, exists, err := s.GetItem("user:1")
//
// Concurrency:
//
//	Operations on distinct keys are independent. Concurrent writes of the
//	same key are last-rename-wins, callers needing read-modify-write
//	atomicity must synchronize externally.
package fstore
