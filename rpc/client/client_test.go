package client

import (
	"errors"
	"testing"

	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/lib/store/fstore"
	"github.com/ValentinKolb/keep/lib/store/lstore"
	storetesting "github.com/ValentinKolb/keep/lib/store/testing"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/serializer"
	"github.com/ValentinKolb/keep/rpc/server"
	"github.com/spf13/afero"
)

// loopbackTransport hands every request directly to a server adapter
type loopbackTransport struct {
	serializer serializer.IRPCSerializer
	adapter    server.IRPCServerAdapter
	err        error // returned by Send if set
}

func (t *loopbackTransport) Connect(common.ClientConfig) error { return nil }
func (t *loopbackTransport) Close() error                      { return nil }

func (t *loopbackTransport) Send(_ string, req []byte) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	var msg common.Message
	if err := t.serializer.Deserialize(req, &msg); err != nil {
		return nil, err
	}
	return t.serializer.Serialize(*t.adapter.Handle(&msg))
}

func newLoopbackStore(t testing.TB, backend store.IStore, ser serializer.IRPCSerializer) store.IStore {
	t.Helper()
	tr := &loopbackTransport{serializer: ser, adapter: server.NewIStoreServerAdapter(backend)}
	s, err := NewRPCStore("test", common.ClientConfig{Endpoints: []string{"loopback"}}, tr, ser)
	if err != nil {
		t.Fatalf("NewRPCStore failed: %v", err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return s
}

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "RPCStore(fstore,binary)", func(t testing.TB) store.IStore {
		backend, err := fstore.Open(fstore.Config{Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return newLoopbackStore(t, backend, serializer.NewBinarySerializer())
	})

	storetesting.RunStoreTests(t, "RPCStore(lstore,json)", func(t testing.TB) store.IStore {
		return newLoopbackStore(t, lstore.NewLocalStore(), serializer.NewJSONSerializer())
	})

	storetesting.RunStoreTests(t, "RPCStore(lstore,gob)", func(t testing.TB) store.IStore {
		return newLoopbackStore(t, lstore.NewLocalStore(), serializer.NewGOBSerializer())
	})
}

func TestTransportFailure(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	tr := &loopbackTransport{serializer: ser, adapter: server.NewIStoreServerAdapter(lstore.NewLocalStore())}
	s, err := NewRPCStore("test", common.ClientConfig{}, tr, ser)
	if err != nil {
		t.Fatalf("NewRPCStore failed: %v", err)
	}

	tr.err = errors.New("connection refused")

	if err := s.SetItem("key", "value"); !store.IsCode(err, store.RetCIOError) {
		t.Errorf("Expected IOError, got %v", err)
	}
	if _, err := s.Keys(); !store.IsCode(err, store.RetCIOError) {
		t.Errorf("Expected IOError, got %v", err)
	}
}

func TestRemoteErrorKeepsCode(t *testing.T) {
	// a file where the storage directory should be
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/occupied", []byte("file"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	backend := fstore.NewFileStore(fstore.Config{Dir: "/occupied", Fs: fs, NoLog: true})

	ser := serializer.NewJSONSerializer()
	tr := &loopbackTransport{serializer: ser, adapter: server.NewIStoreServerAdapter(backend)}
	s, err := NewRPCStore("test", common.ClientConfig{}, tr, ser)
	if err != nil {
		t.Fatalf("NewRPCStore failed: %v", err)
	}

	if err := s.Init(); !store.IsCode(err, store.RetCInitError) {
		t.Errorf("Expected InitError, got %v", err)
	}
}
