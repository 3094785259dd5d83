package adapter

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nbrsnap/internal/domain"
)

// maxBodySize caps how much of an API answer is read
const maxBodySize = 16 << 20

// httpDoer is the part of *http.Client the API clients use
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newHTTPClient builds a client for device management APIs. Devices ship
// self-signed certificates, so verification is off unless asked for.
func newHTTPClient(timeout time.Duration, verifyTLS bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !verifyTLS}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// apiRequest describes one JSON POST to a device API
type apiRequest struct {
	url         string
	contentType string
	username    string
	password    string
	payload     any
}

// post sends the request and returns the answer verbatim. Transport failures
// are connectivity errors; any HTTP answer, including error statuses, is
// returned with OK set from the status code.
func post(ctx context.Context, client httpDoer, r apiRequest) (*domain.RawResponse, error) {
	body, err := json.Marshal(r.payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewConnectivityError("build request", err)
	}
	req.Header.Set("Content-Type", r.contentType)
	req.SetBasicAuth(r.username, r.password)

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.NewConnectivityError("POST "+r.url, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, domain.NewConnectivityError("read response", err)
	}

	return &domain.RawResponse{
		OK:         resp.StatusCode < http.StatusBadRequest,
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Content:    content,
	}, nil
}

// reasonPhrase returns the status text the server sent
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
