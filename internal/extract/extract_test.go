package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbrsnap/internal/domain"
)

func TestExtractorsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
		raw  *domain.RawResponse
	}{
		{"nxos", NXOS, &domain.RawResponse{OK: true, Content: readFixture(t, "nxos_cdp.json")}},
		{"ios", IOS, &domain.RawResponse{OK: true, Text: string(readFixture(t, "ios_cdp.txt"))}},
		{"eos", EOS, &domain.RawResponse{OK: true, Content: readFixture(t, "eos_lldp.json")}},
		{"lldp-mib", LLDPMIB, &domain.RawResponse{OK: true, Walk: []domain.Varbind{
			{OID: "1.0.8802.1.1.2.1.4.1.1.7.0.1.1", Value: "eth1"},
			{OID: "1.0.8802.1.1.2.1.4.1.1.9.0.1.1", Value: "peer"},
			{OID: "1.0.8802.1.1.2.1.3.7.1.3.1", Value: "eth0"},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.fn(tt.raw)
			require.NoError(t, err)
			second, err := tt.fn(tt.raw)
			require.NoError(t, err)
			assert.NotEmpty(t, first)
			assert.Equal(t, first, second)
		})
	}
}
