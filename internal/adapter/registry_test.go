package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
)

type stubClient struct {
	vendor domain.Vendor
	raw    *domain.RawResponse
	err    error
}

func (s stubClient) Vendor() domain.Vendor { return s.vendor }

func (s stubClient) FetchNeighbors(context.Context, domain.Device) (*domain.RawResponse, error) {
	return s.raw, s.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubClient{vendor: domain.VendorIOS}, extract.IOS))
	require.NoError(t, r.Register(stubClient{vendor: domain.VendorEOS}, extract.EOS))
	require.NoError(t, r.Register(stubClient{vendor: domain.VendorNXOS}, extract.NXOS))

	err := r.Register(stubClient{vendor: domain.VendorIOS}, extract.IOS)
	assert.Error(t, err)
	assert.Error(t, r.Register(nil, extract.IOS))
	assert.Error(t, r.Register(stubClient{vendor: domain.VendorLLDPSNMP}, nil))

	d, ok := r.Lookup(domain.VendorIOS)
	require.True(t, ok)
	assert.Equal(t, domain.VendorIOS, d.Client.Vendor())

	_, ok = r.Lookup(domain.Vendor("junos"))
	assert.False(t, ok)

	assert.Equal(t, []domain.Vendor{domain.VendorEOS, domain.VendorIOS, domain.VendorNXOS}, r.Vendors())
}

func TestDriverNeighbors(t *testing.T) {
	ctx := context.Background()
	dev := domain.Device{Hostname: "leaf1", Vendor: domain.VendorEOS}

	ok := Driver{
		Client: stubClient{vendor: domain.VendorEOS, raw: &domain.RawResponse{
			OK:      true,
			Content: []byte(`[{"command":"show lldp neighbors","result":{"lldpNeighbors":[{"port":"Et1","neighborDevice":"spine1","neighborPort":"Et3"}]},"encoding":"json"}]`),
		}},
		Extract: extract.EOS,
	}
	records, err := ok.Neighbors(ctx, dev)
	require.NoError(t, err)
	assert.Equal(t, []domain.NeighborRecord{{NeighborInterface: "Et3", LocalInterface: "Et1", Neighbor: "spine1"}}, records)

	failing := Driver{
		Client:  stubClient{vendor: domain.VendorEOS, err: domain.NewConnectivityError("dial", errors.New("refused"))},
		Extract: extract.EOS,
	}
	_, err = failing.Neighbors(ctx, dev)
	assert.Equal(t, domain.ErrorKindConnectivity, domain.KindOf(err))
}
