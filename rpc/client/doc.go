// Package client implements the RPC client of keep. NewRPCStore returns a
// store.IStore that forwards all operations to a namespace of a remote
// "keep serve" via the configured transport and serializer.
//
// Errors of the remote store are rebuilt as *store.Error with their original
// return code. Transport failures are reported with code RetCIOError.
// Invalid keys and values are rejected locally, before anything is sent.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"http://localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	s, err := client.NewRPCStore("storage", config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  log.Fatal(err)
//	}
//
//	_ = s.SetItem("mykey", map[string]any{"answer": 42})
//	value, exists, _ := s.GetItem("mykey")
//
// Thread Safety:
//
//	The client is thread-safe if the transport is. The HTTP transport is.
package client
