package common

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type NamespaceType string

const (
	NamespaceTypeFileStore  NamespaceType = "fstore"
	NamespaceTypeLocalStore NamespaceType = "lstore"
)

// namespaceNamePattern restricts namespace names to safe directory and url path segments
var namespaceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type ServerNamespace struct {
	// Name of the namespace, used as url path and directory name
	Name string
	// Type of the store backing the namespace
	Type NamespaceType
}

// ParseNamespace parses a namespace definition of the form "<name>=<type>".
func ParseNamespace(def string) (ServerNamespace, error) {
	name, typ, found := strings.Cut(strings.TrimSpace(def), "=")
	if !found {
		return ServerNamespace{}, fmt.Errorf("invalid namespace definition %q (expected <name>=<type>)", def)
	}
	if !namespaceNamePattern.MatchString(name) {
		return ServerNamespace{}, fmt.Errorf("invalid namespace name %q (allowed are letters, digits, '-' and '_')", name)
	}

	ns := ServerNamespace{Name: name, Type: NamespaceType(typ)}
	switch ns.Type {
	case NamespaceTypeFileStore, NamespaceTypeLocalStore:
		return ns, nil
	default:
		return ServerNamespace{}, fmt.Errorf("invalid namespace type %q for namespace %s (expected %s or %s)",
			typ, name, NamespaceTypeFileStore, NamespaceTypeLocalStore)
	}
}

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// Namespaces served by the server
	Namespaces []ServerNamespace

	// File store parameters
	Root        string // directory containing one storage directory per fstore namespace
	Concurrency int    // 0 = number of CPUs
	SyncWrites  bool

	// HTTP api settings
	Endpoint string

	// Logging configuration
	LogLevel string
}

// NamespaceDir returns the storage directory of a file store namespace.
func (c *ServerConfig) NamespaceDir(name string) string {
	return filepath.Join(c.Root, name)
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Storage
	addSection("Storage")
	addField("Root Directory", c.Root)
	if c.Concurrency > 0 {
		addField("Concurrency", strconv.Itoa(c.Concurrency))
	} else {
		addField("Concurrency", "number of CPUs")
	}
	addField("Sync Writes", strconv.FormatBool(c.SyncWrites))

	// Namespaces
	addSection("Namespaces")
	for _, ns := range c.Namespaces {
		if ns.Type == NamespaceTypeFileStore {
			addField(ns.Name, fmt.Sprintf("%s (%s)", ns.Type, c.NamespaceDir(ns.Name)))
		} else {
			addField(ns.Name, string(ns.Type))
		}
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
