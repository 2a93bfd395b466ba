package mcp

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RequiresRetriever(t *testing.T) {
	server, err := NewServer(&Ports{Index: &mockIndexService{}})

	require.ErrorIs(t, err, ErrMissingRetriever)
	assert.Nil(t, server)
}

func TestNewServer_OptionalPorts(t *testing.T) {
	for name, ports := range map[string]*Ports{
		"retriever only": {Retriever: &mockRetriever{}},
		"all ports": {
			Retriever: &mockRetriever{},
			Index:     &mockIndexService{},
			Settings:  &mockSettingsService{},
		},
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, ports.Validate())
			server, err := NewServer(ports)
			require.NoError(t, err)
			assert.NotNil(t, server.Handler())
		})
	}
}

func TestServer_HandlerRejectsMalformedRequest(t *testing.T) {
	server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL, "application/json", strings.NewReader("not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.GreaterOrEqual(t, resp.StatusCode, 400)
}

func TestServer_RunHTTP_BadAddress(t *testing.T) {
	server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), "256.0.0.1:bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp: listen")
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.serve(ctx, ln) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
