package adapter

import (
	"context"

	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
)

// DeviceClient fetches the raw neighbor table of one device
type DeviceClient interface {
	// Vendor returns the inventory tag this client serves
	Vendor() domain.Vendor

	// FetchNeighbors runs the neighbor command and returns the raw answer.
	// Transport failures are returned as connectivity DeviceErrors.
	FetchNeighbors(ctx context.Context, dev domain.Device) (*domain.RawResponse, error)
}

// Driver pairs a client with the extractor for its answers
type Driver struct {
	Client  DeviceClient
	Extract extract.Func
}

// Neighbors fetches and extracts the neighbor records of one device
func (d Driver) Neighbors(ctx context.Context, dev domain.Device) ([]domain.NeighborRecord, error) {
	raw, err := d.Client.FetchNeighbors(ctx, dev)
	if err != nil {
		return nil, err
	}
	return d.Extract(raw)
}
