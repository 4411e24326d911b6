package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	// Parse each server URL, the scheme is optional
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(strings.TrimSuffix(server, "/"))
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second

	// Set the client and server URLs
	t.client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     timeout,
		},
	}
	t.serverURLs = parsedURLs
	t.counter = 0
	t.retryCount = max(1, config.RetryCount)

	return nil
}

func (t *httpClientTransport) Send(namespace string, req []byte) ([]byte, error) {
	// Check if the transport is initialized
	if t.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	var err error
	for i := 0; i < t.retryCount; i++ {
		var resp []byte
		if resp, err = t.send(t.nextURL(), namespace, req); err == nil {
			return resp, nil
		}
		Logger.Debugf("request to namespace %s failed (attempt %d/%d): %v", namespace, i+1, t.retryCount, err)
	}
	return nil, err
}

func (t *httpClientTransport) Close() error {
	// Close the client
	if t.client != nil {
		t.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	t.client = nil
	t.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// nextURL selects the next server via round-robin
func (t *httpClientTransport) nextURL() *url.URL {
	idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.serverURLs))
	return t.serverURLs[idx]
}

// send performs a single request
func (t *httpClientTransport) send(serverURL *url.URL, namespace string, req []byte) ([]byte, error) {
	requestURL := serverURL.JoinPath(namespace).String()

	httpResponse, err := t.client.Post(requestURL, "application/octet-stream", bytes.NewReader(req))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	// Check if the response status code is OK
	if httpResponse.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 512))
		return nil, fmt.Errorf("http error: %s: %s", httpResponse.Status, strings.TrimSpace(string(body)))
	}

	// Read the response body
	return io.ReadAll(httpResponse.Body)
}
