package unix

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/transport"
)

// echo answers with namespace and request
func echo(namespace string, req []byte) []byte {
	return []byte(namespace + ":" + string(req))
}

// startServer starts a server transport on socketPath and waits until the socket exists
func startServer(t *testing.T, socketPath string, handler transport.ServerHandleFunc) transport.IRPCServerTransport {
	t.Helper()

	srv := NewUnixDefaultServerTransport()
	srv.RegisterHandler(handler)

	done := make(chan error, 1)
	go func() {
		done <- srv.Listen(common.ServerConfig{Endpoint: socketPath})
	}()

	t.Cleanup(func() {
		_ = srv.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Listen failed: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Listen did not return after Close")
		}
	})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			return srv
		}
		select {
		case err := <-done:
			t.Fatalf("Listen failed: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatalf("socket %s was not created", socketPath)
	return nil
}

func connect(t *testing.T, socketPath string) transport.IRPCClientTransport {
	t.Helper()
	ct := NewUnixClientTransport()
	if err := ct.Connect(common.ClientConfig{Endpoints: []string{socketPath}, TimeoutSecond: 5, RetryCount: 3}); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { _ = ct.Close() })
	return ct
}

func TestSendAndReceive(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "keep.sock")
	startServer(t, socketPath, echo)
	ct := connect(t, socketPath)

	resp, err := ct.Send("storage", []byte("hello"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if string(resp) != "storage:hello" {
		t.Errorf("Expected echo, got %q", resp)
	}
}

func TestEndpointWithScheme(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "keep.sock")
	startServer(t, socketPath, echo)
	ct := connect(t, "unix://"+socketPath)

	resp, err := ct.Send("storage", []byte("hello"))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if string(resp) != "storage:hello" {
		t.Errorf("Expected echo, got %q", resp)
	}
}

func TestConcurrentRequests(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "keep.sock")
	startServer(t, socketPath, func(namespace string, req []byte) []byte {
		// answer out of order
		if len(req)%2 == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		return echo(namespace, req)
	})
	ct := connect(t, socketPath)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ns := fmt.Sprintf("ns%d", i%3)
			req := fmt.Sprintf("request-%d", i)
			resp, err := ct.Send(ns, []byte(req))
			if err != nil {
				errs <- err
				return
			}
			if string(resp) != ns+":"+req {
				errs <- fmt.Errorf("request %d: got response %q", i, resp)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestReconnectAfterServerRestart(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "keep.sock")
	srv := startServer(t, socketPath, echo)
	ct := connect(t, socketPath)

	if _, err := ct.Send("storage", []byte("before")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if err := srv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	startServer(t, socketPath, echo)

	resp, err := ct.Send("storage", []byte("after"))
	if err != nil {
		t.Fatalf("Send after restart failed: %v", err)
	}
	if string(resp) != "storage:after" {
		t.Errorf("Expected echo, got %q", resp)
	}
}

func TestConnectWithoutServer(t *testing.T) {
	ct := NewUnixClientTransport()
	err := ct.Connect(common.ClientConfig{Endpoints: []string{filepath.Join(t.TempDir(), "missing.sock")}})
	if err == nil {
		t.Error("Expected error connecting to a missing socket")
	}
}

func TestNotConnected(t *testing.T) {
	ct := NewUnixClientTransport()
	if _, err := ct.Send("storage", []byte("hello")); err == nil {
		t.Error("Expected error sending without Connect")
	}

	socketPath := filepath.Join(t.TempDir(), "keep.sock")
	startServer(t, socketPath, echo)
	ct = connect(t, socketPath)
	if err := ct.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := ct.Send("storage", []byte("hello")); err == nil {
		t.Error("Expected error sending after Close")
	}
}

func TestListenRefusesRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("important"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	srv := NewUnixDefaultServerTransport()
	srv.RegisterHandler(echo)
	if err := srv.Listen(common.ServerConfig{Endpoint: path}); err == nil {
		t.Fatal("Expected Listen to fail on a regular file")
	}

	content, err := os.ReadFile(path)
	if err != nil || string(content) != "important" {
		t.Errorf("Expected file to be untouched, got %q (%v)", content, err)
	}
}
