package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbrsnap/internal/domain"
)

func TestEOSFixture(t *testing.T) {
	raw := &domain.RawResponse{OK: true, StatusCode: 200, Content: readFixture(t, "eos_lldp.json")}

	records, err := EOS(raw)
	require.NoError(t, err)
	assert.Equal(t, []domain.NeighborRecord{
		{NeighborInterface: "Ethernet49/1", LocalInterface: "Ethernet1", Neighbor: "leaf2.lab.example.net"},
		{NeighborInterface: "Gi1/0/7", LocalInterface: "Management1", Neighbor: "oob-sw1"},
	}, records)
}

func TestEOS(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []domain.NeighborRecord
		wantErr bool
	}{
		{
			name:    "no neighbors",
			content: `[{"command":"show lldp neighbors","result":{"lldpNeighbors":[]},"encoding":"json"}]`,
			want:    []domain.NeighborRecord{},
		},
		{
			name:    "empty result list",
			content: `[]`,
			wantErr: true,
		},
		{
			name:    "not a list",
			content: `{"result":{"lldpNeighbors":[]}}`,
			wantErr: true,
		},
		{
			name:    "missing lldpNeighbors",
			content: `[{"result":{}}]`,
			wantErr: true,
		},
		{
			name:    "missing neighborPort",
			content: `[{"result":{"lldpNeighbors":[{"port":"Ethernet1","neighborDevice":"leaf2"}]}}]`,
			wantErr: true,
		},
		{
			name:    "neighbor list not a sequence",
			content: `[{"result":{"lldpNeighbors":"none"}}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := EOS(okDocument(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrorKindParse, domain.KindOf(err))
				assert.Nil(t, records)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestEOSRequestFailed(t *testing.T) {
	raw := &domain.RawResponse{OK: false, StatusCode: 403, Reason: "Forbidden", Content: []byte("denied")}

	_, err := EOS(raw)

	var de *domain.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorKindProtocol, de.Kind)
	assert.Equal(t, 403, de.StatusCode)
	assert.Equal(t, "denied", de.Content)
}
