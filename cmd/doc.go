// Package cmd implements the command-line interface of keep. It provides a
// hierarchical command structure with operations for running the server and
// working with a store, either through a server or directly on a directory.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (set, get, del, data, etc.)
//   - serve: Commands for starting and configuring the keep server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See keep -help for a list of all commands.
package cmd
