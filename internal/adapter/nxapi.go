package adapter

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
)

const (
	nxapiPath        = "/ins"
	nxapiContentType = "application/json-rpc"
	nxapiShowCDP     = "show cdp neighbor"
)

// NXAPIConfig configures the NX-API client
type NXAPIConfig struct {
	Port      int
	Scheme    string
	Timeout   time.Duration
	VerifyTLS bool
}

// nxapiCall is one JSON-RPC call in an NX-API batch
type nxapiCall struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  nxapiParams `json:"params"`
	ID      int         `json:"id"`
}

type nxapiParams struct {
	Cmd     string `json:"cmd"`
	Version int    `json:"version"`
}

// NXAPIClient collects CDP neighbors through the NX-API JSON-RPC endpoint
type NXAPIClient struct {
	username string
	secrets  credential.Provider
	port     int
	scheme   string
	http     httpDoer
}

// NewNXAPIClient creates an NX-API client
func NewNXAPIClient(username string, secrets credential.Provider, cfg NXAPIConfig) *NXAPIClient {
	if cfg.Port == 0 {
		cfg.Port = 8443
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &NXAPIClient{
		username: username,
		secrets:  secrets,
		port:     cfg.Port,
		scheme:   cfg.Scheme,
		http:     newHTTPClient(cfg.Timeout, cfg.VerifyTLS),
	}
}

// Vendor implements DeviceClient
func (c *NXAPIClient) Vendor() domain.Vendor {
	return domain.VendorNXOS
}

// FetchNeighbors implements DeviceClient
func (c *NXAPIClient) FetchNeighbors(ctx context.Context, dev domain.Device) (*domain.RawResponse, error) {
	password, err := c.secrets.Resolve(ctx, c.username)
	if err != nil {
		return nil, domain.NewConnectivityError("no password for "+c.username, err)
	}

	url := fmt.Sprintf("%s://%s%s", c.scheme, net.JoinHostPort(dev.Address(), strconv.Itoa(c.port)), nxapiPath)
	return post(ctx, c.http, apiRequest{
		url:         url,
		contentType: nxapiContentType,
		username:    c.username,
		password:    password,
		payload: []nxapiCall{{
			JSONRPC: "2.0",
			Method:  "cli",
			Params:  nxapiParams{Cmd: nxapiShowCDP, Version: 1},
			ID:      1,
		}},
	})
}
