package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbrsnap/internal/credential"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
	"nbrsnap/internal/profile"
)

const eapiAnswer = `{
  "jsonrpc": "2.0",
  "id": "nbrsnap-leaf1",
  "result": [
    {},
    {
      "lldpNeighbors": [
        {"port": "Ethernet1", "neighborDevice": "spine1", "neighborPort": "Ethernet3", "ttl": 120},
        {"port": "Ethernet2", "neighborDevice": "spine2", "neighborPort": "Ethernet3", "ttl": 120}
      ]
    }
  ]
}`

func eapiProfiles(t *testing.T, srv *httptest.Server, withPassword bool) *profile.Store {
	t.Helper()
	host, port := serverAddr(t, srv)
	p := profile.Profile{Host: host, Port: port, Transport: "http", Username: "arista"}
	if withPassword {
		p.Password = "from-profile"
	}
	return &profile.Store{Connections: map[string]profile.Profile{"leaf1": p}}
}

func TestEAPIClientFetch(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = capture(t, r)
		w.Write([]byte(eapiAnswer))
	}))
	defer srv.Close()

	client := NewEAPIClient(eapiProfiles(t, srv, true), "netops", credential.Static("unused"), EAPIConfig{})
	raw, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf1", Vendor: domain.VendorEOS})
	require.NoError(t, err)
	assert.True(t, raw.OK)

	assert.Equal(t, "/command-api", got.path)
	assert.Equal(t, "arista", got.username)
	assert.Equal(t, "from-profile", got.password)
	require.NotNil(t, got.object)
	assert.Equal(t, "runCmds", got.object["method"])
	params := got.object["params"].(map[string]any)
	assert.Equal(t, []any{"enable", "show lldp neighbors"}, params["cmds"])
	assert.Equal(t, "json", params["format"])

	assert.JSONEq(t, `[{"command":"show lldp neighbors","encoding":"json","result":{
		"lldpNeighbors":[
			{"port":"Ethernet1","neighborDevice":"spine1","neighborPort":"Ethernet3","ttl":120},
			{"port":"Ethernet2","neighborDevice":"spine2","neighborPort":"Ethernet3","ttl":120}]}}]`, string(raw.Content))

	records, err := extract.EOS(raw)
	require.NoError(t, err)
	assert.Equal(t, []domain.NeighborRecord{
		{NeighborInterface: "Ethernet3", LocalInterface: "Ethernet1", Neighbor: "spine1"},
		{NeighborInterface: "Ethernet3", LocalInterface: "Ethernet2", Neighbor: "spine2"},
	}, records)
}

func TestEAPIClientPasswordFallback(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = capture(t, r)
		w.Write([]byte(eapiAnswer))
	}))
	defer srv.Close()

	client := NewEAPIClient(eapiProfiles(t, srv, false), "netops", credential.Static("prompted"), EAPIConfig{})
	_, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf1"})
	require.NoError(t, err)
	assert.Equal(t, "arista", got.username)
	assert.Equal(t, "prompted", got.password)
}

func TestEAPIClientCommandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":"x","error":{"code":1002,"message":"CLI command 2 of 2 'show lldp neighbors' failed: invalid command"}}`))
	}))
	defer srv.Close()

	client := NewEAPIClient(eapiProfiles(t, srv, true), "", nil, EAPIConfig{})
	_, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf1"})

	var de *domain.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorKindProtocol, de.Kind)
	assert.True(t, strings.HasPrefix(de.Reason, "eapi error 1002"))
}

func TestEAPIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unable to authenticate", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewEAPIClient(eapiProfiles(t, srv, true), "", nil, EAPIConfig{})
	raw, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf1"})
	require.NoError(t, err)
	assert.False(t, raw.OK)

	_, err = extract.EOS(raw)
	assert.Equal(t, domain.ErrorKindProtocol, domain.KindOf(err))
}

func TestEAPIClientUnknownProfile(t *testing.T) {
	client := NewEAPIClient(&profile.Store{}, "netops", credential.Static("pw"), EAPIConfig{})
	_, err := client.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf9"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorKindConnectivity, domain.KindOf(err))
	assert.ErrorIs(t, err, profile.ErrProfileNotFound)

	noProfiles := NewEAPIClient(nil, "netops", credential.Static("pw"), EAPIConfig{})
	_, err = noProfiles.FetchNeighbors(context.Background(), domain.Device{Hostname: "leaf9"})
	assert.Equal(t, domain.ErrorKindConnectivity, domain.KindOf(err))
}

func TestStripEnableShortResult(t *testing.T) {
	raw := &domain.RawResponse{OK: true, Content: []byte(`{"jsonrpc":"2.0","result":[{}]}`)}
	out, err := stripEnable(raw, []string{"enable", "show lldp neighbors"})
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out.Content))

	_, err = extract.EOS(out)
	assert.Equal(t, domain.ErrorKindParse, domain.KindOf(err))
}
