// Package server implements the RPC server of keep ("keep serve").
// A server exposes any number of namespaces, each backed by its own store.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface of the request handler of one namespace.
//
//   - NewIStoreServerAdapter: Factory function creating the adapter of a
//     namespace, translating RPC requests to calls on its store.IStore.
//     Store errors are put into the response as return code and message.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Namespaces: []common.ServerNamespace{
//	    {Name: "storage", Type: common.NamespaceTypeFileStore},
//	    {Name: "cache", Type: common.NamespaceTypeLocalStore},
//	  },
//	  Root:     ".keep",
//	  Endpoint: "0.0.0.0:8080",
//	  LogLevel: "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  http.NewHttpServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Namespace types:
//
//   - NamespaceTypeFileStore: a file store in the directory <Root>/<Name>.
//     Data survives restarts of the server.
//
//   - NamespaceTypeLocalStore: an in-memory store, lost when the server stops.
//
// Thread Safety:
//
//	The server can handle concurrent requests. Each request is processed
//	independently. Serve is not thread-safe and should be called only once.
package server
