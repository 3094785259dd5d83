package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/profile"
)

const (
	eapiPath        = "/command-api"
	eapiContentType = "application/json"
	eapiEnable      = "enable"
	eapiShowLLDP    = "show lldp neighbors"
)

// ProfileSource resolves eAPI connection profiles by name
type ProfileSource interface {
	Lookup(name string) (profile.Profile, error)
}

// EAPIConfig configures the eAPI client
type EAPIConfig struct {
	Timeout   time.Duration
	VerifyTLS bool
}

type eapiRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  eapiParams `json:"params"`
	ID      string     `json:"id"`
}

type eapiParams struct {
	Version int      `json:"version"`
	Cmds    []string `json:"cmds"`
	Format  string   `json:"format"`
}

type eapiResponse struct {
	Result []json.RawMessage `json:"result"`
	Error  *eapiError        `json:"error"`
}

type eapiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eapiCommandResult is one entry of the result list handed to the extractor
type eapiCommandResult struct {
	Command  string          `json:"command"`
	Result   json.RawMessage `json:"result"`
	Encoding string          `json:"encoding"`
}

// EAPIClient collects LLDP neighbors through Arista eAPI
type EAPIClient struct {
	profiles ProfileSource
	username string
	secrets  credential.Provider
	http     httpDoer
}

// NewEAPIClient creates an eAPI client. The username and secrets are used
// when a profile carries no credentials of its own.
func NewEAPIClient(profiles ProfileSource, username string, secrets credential.Provider, cfg EAPIConfig) *EAPIClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EAPIClient{
		profiles: profiles,
		username: username,
		secrets:  secrets,
		http:     newHTTPClient(cfg.Timeout, cfg.VerifyTLS),
	}
}

// Vendor implements DeviceClient
func (c *EAPIClient) Vendor() domain.Vendor {
	return domain.VendorEOS
}

// FetchNeighbors implements DeviceClient
func (c *EAPIClient) FetchNeighbors(ctx context.Context, dev domain.Device) (*domain.RawResponse, error) {
	if c.profiles == nil {
		return nil, domain.NewConnectivityError("no eapi profiles configured", nil)
	}
	p, err := c.profiles.Lookup(dev.Hostname)
	if err != nil {
		return nil, domain.NewConnectivityError("eapi profile "+dev.Hostname, err)
	}

	username := p.Username
	if username == "" {
		username = c.username
	}
	password := p.Password
	if password == "" {
		if password, err = c.secrets.Resolve(ctx, username); err != nil {
			return nil, domain.NewConnectivityError("no password for "+username, err)
		}
	}

	cmds := []string{eapiEnable, eapiShowLLDP}
	url := fmt.Sprintf("%s://%s%s", p.Transport, net.JoinHostPort(p.Host, strconv.Itoa(p.Port)), eapiPath)
	raw, err := post(ctx, c.http, apiRequest{
		url:         url,
		contentType: eapiContentType,
		username:    username,
		password:    password,
		payload: eapiRequest{
			JSONRPC: "2.0",
			Method:  "runCmds",
			Params:  eapiParams{Version: 1, Cmds: cmds, Format: "json"},
			ID:      "nbrsnap-" + dev.Hostname,
		},
	})
	if err != nil || !raw.OK {
		return raw, err
	}
	return stripEnable(raw, cmds)
}

// stripEnable drops the "enable" result and pairs each remaining result
// with the command that produced it
func stripEnable(raw *domain.RawResponse, cmds []string) (*domain.RawResponse, error) {
	var resp eapiResponse
	if err := json.Unmarshal(raw.Content, &resp); err != nil {
		pe := domain.NewParseError("eapi answer is not a JSON-RPC document")
		pe.Err = err
		return nil, pe
	}
	if resp.Error != nil {
		de := domain.NewProtocolError(raw.StatusCode,
			fmt.Sprintf("eapi error %d: %s", resp.Error.Code, resp.Error.Message), string(raw.Content))
		de.Detail = "the device rejected the command"
		return nil, de
	}

	results := make([]eapiCommandResult, 0, len(cmds))
	for i := 1; i < len(resp.Result) && i < len(cmds); i++ {
		results = append(results, eapiCommandResult{
			Command:  cmds[i],
			Result:   resp.Result[i],
			Encoding: "json",
		})
	}

	content, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	out := *raw
	out.Content = content
	return &out, nil
}
