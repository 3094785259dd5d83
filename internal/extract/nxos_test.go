package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbrsnap/internal/domain"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func okDocument(content string) *domain.RawResponse {
	return &domain.RawResponse{OK: true, StatusCode: 200, Reason: "OK", Content: []byte(content)}
}

func TestNXOSFixture(t *testing.T) {
	raw := &domain.RawResponse{OK: true, StatusCode: 200, Reason: "OK", Content: readFixture(t, "nxos_cdp.json")}

	records, err := NXOS(raw)
	require.NoError(t, err)
	assert.Equal(t, []domain.NeighborRecord{
		{NeighborInterface: "Ethernet1/1", LocalInterface: "Ethernet1/49", Neighbor: "n9k-spine1(FDO2143)"},
		{NeighborInterface: "GigabitEthernet1/0/14", LocalInterface: "mgmt0", Neighbor: "oob-sw1.lab.example.net"},
	}, records)
}

func TestNXOS(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     []domain.NeighborRecord
		wantKind domain.ErrorKind
	}{
		{
			name:    "empty table",
			content: `{"result":{"body":{"TABLE_cdp_neighbor_brief_info":{"ROW_cdp_neighbor_brief_info":[]}}}}`,
			want:    []domain.NeighborRecord{},
		},
		{
			name:    "null result",
			content: `{"jsonrpc":"2.0","result":null,"id":1}`,
			want:    []domain.NeighborRecord{},
		},
		{
			name:    "single row object",
			content: `{"result":{"body":{"TABLE_cdp_neighbor_brief_info":{"ROW_cdp_neighbor_brief_info":{"port_id":"Eth1/2","intf_id":"Eth1/1","device_id":"leaf1"}}}}}`,
			want:    []domain.NeighborRecord{{NeighborInterface: "Eth1/2", LocalInterface: "Eth1/1", Neighbor: "leaf1"}},
		},
		{
			name:    "batch answer",
			content: `[{"result":{"body":{"TABLE_cdp_neighbor_brief_info":{"ROW_cdp_neighbor_brief_info":[{"port_id":"p","intf_id":"l","device_id":"n"}]}}}}]`,
			want:    []domain.NeighborRecord{{NeighborInterface: "p", LocalInterface: "l", Neighbor: "n"}},
		},
		{
			name:    "empty value omits record",
			content: `{"result":{"body":{"TABLE_cdp_neighbor_brief_info":{"ROW_cdp_neighbor_brief_info":[{"port_id":"","intf_id":"l","device_id":"n"},{"port_id":"p2","intf_id":"l2","device_id":"n2"}]}}}}`,
			want:    []domain.NeighborRecord{{NeighborInterface: "p2", LocalInterface: "l2", Neighbor: "n2"}},
		},
		{
			name:     "missing table path",
			content:  `{"result":{"body":{}}}`,
			wantKind: domain.ErrorKindParse,
		},
		{
			name:     "missing key in row",
			content:  `{"result":{"body":{"TABLE_cdp_neighbor_brief_info":{"ROW_cdp_neighbor_brief_info":[{"intf_id":"l","device_id":"n"}]}}}}`,
			wantKind: domain.ErrorKindParse,
		},
		{
			name:     "missing result",
			content:  `{"jsonrpc":"2.0","id":1}`,
			wantKind: domain.ErrorKindParse,
		},
		{
			name:     "json-rpc error",
			content:  `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params"},"id":1}`,
			wantKind: domain.ErrorKindProtocol,
		},
		{
			name:     "not json",
			content:  `<html>login</html>`,
			wantKind: domain.ErrorKindParse,
		},
		{
			name:     "empty body",
			content:  "",
			wantKind: domain.ErrorKindParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := NXOS(okDocument(tt.content))
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				assert.Nil(t, records)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestNXOSRequestFailed(t *testing.T) {
	raw := &domain.RawResponse{
		OK:         false,
		StatusCode: 401,
		Reason:     "Unauthorized",
		Content:    []byte("<html><body>401 Authorization Required</body></html>"),
	}

	records, err := NXOS(raw)
	require.Error(t, err)
	assert.Nil(t, records)

	var de *domain.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorKindProtocol, de.Kind)
	assert.Equal(t, 401, de.StatusCode)
	assert.Equal(t, "Unauthorized", de.Reason)
	assert.Equal(t, "<html><body>401 Authorization Required</body></html>", de.Content)
	assert.Contains(t, de.Error(), "status_code: 401")
}

func TestNXOSRPCErrorReason(t *testing.T) {
	_, err := NXOS(okDocument(`{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params"},"id":1}`))

	var de *domain.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "json-rpc error -32602: Invalid params", de.Reason)
	assert.Equal(t, "the device rejected the command", de.Detail)
}

func TestNXOSNilResponse(t *testing.T) {
	_, err := NXOS(nil)
	assert.Equal(t, domain.ErrorKindParse, domain.KindOf(err))
}
