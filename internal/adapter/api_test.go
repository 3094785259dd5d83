package adapter

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// serverAddr splits a test server URL into host and port
func serverAddr(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

// capturedRequest records what a fake device API received
type capturedRequest struct {
	method      string
	path        string
	contentType string
	username    string
	password    string
	body        []any
	object      map[string]any
}

func capture(t *testing.T, r *http.Request) capturedRequest {
	t.Helper()
	c := capturedRequest{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
	c.username, c.password, _ = r.BasicAuth()

	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var doc any
	require.NoError(t, json.Unmarshal(data, &doc))
	switch v := doc.(type) {
	case []any:
		c.body = v
	case map[string]any:
		c.object = v
	}
	return c
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "extract", "testdata", name))
	require.NoError(t, err)
	return data
}
