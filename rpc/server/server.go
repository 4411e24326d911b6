package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/lib/store/fstore"
	"github.com/ValentinKolb/keep/lib/store/lstore"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/serializer"
	"github.com/ValentinKolb/keep/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create the RPC server
	return &rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		namespaces: xsync.NewMapOf[string, IRPCServerAdapter](),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	namespaces *xsync.MapOf[string, IRPCServerAdapter] // namespace -> adapter of its store
}

// handle processes a single serialized request for a namespace
func (s *rpcServer) handle(namespace string, req []byte) []byte {
	var msg common.Message
	var respMsg *common.Message

	// Get appropriate namespace
	adapter, ok := s.namespaces.Load(namespace)

	// Case namespace does not exist -> error
	if !ok {
		respMsg = common.NewErrorResponse(fmt.Sprintf("namespace not found: %s", namespace))
	} else if err := s.serializer.Deserialize(req, &msg); err != nil {
		respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else {
		// Let the adapter handle the request
		respMsg = adapter.Handle(&msg)
	}

	// Return result
	val, err := s.serializer.Serialize(*respMsg)
	if err != nil {
		Logger.Errorf("failed to serialize response: %v", err)
		val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
	}
	return val
}

// newStore creates the store backing a namespace
func (s *rpcServer) newStore(ns common.ServerNamespace) (store.IStore, error) {
	switch ns.Type {
	case common.NamespaceTypeFileStore:
		cfg := fstore.DefaultConfig()
		cfg.Dir = s.config.NamespaceDir(ns.Name)
		cfg.SyncWrites = s.config.SyncWrites
		if s.config.Concurrency > 0 {
			cfg.Concurrency = s.config.Concurrency
		}
		return fstore.Open(cfg)
	case common.NamespaceTypeLocalStore:
		st := lstore.NewLocalStore()
		return st, st.Init()
	default:
		return nil, fmt.Errorf("invalid namespace type: %s", ns.Type)
	}
}

func (s *rpcServer) init() error {
	// Init logger
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	Logger.Infof("Created RPC Server (%s serializer)", s.serializer.Name())
	Logger.Infof("%s", s.config.String())

	if len(s.config.Namespaces) == 0 {
		return fmt.Errorf("no namespaces configured")
	}

	for _, nsConfig := range s.config.Namespaces {
		if _, exists := s.namespaces.Load(nsConfig.Name); exists {
			return fmt.Errorf("duplicate namespace: %s", nsConfig.Name)
		}

		st, err := s.newStore(nsConfig)
		if err != nil {
			return fmt.Errorf("failed to create namespace %s: %w", nsConfig.Name, err)
		}

		s.namespaces.Store(nsConfig.Name, NewIStoreServerAdapter(st))
		Logger.Infof("created %s store for namespace %s", nsConfig.Type, nsConfig.Name)
	}

	Logger.Infof("keep setup completed successfully")

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the namespaces and start the transport layer
// It blocks until the transport is closed
func (s *rpcServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport layer
func (s *rpcServer) Close() error {
	return s.transport.Close()
}
