// Package codec renders snapshots to files and the console, and reads
// snapshot files back.
package codec

import (
	"fmt"
	"io"

	"nbrsnap/internal/domain"
)

// Output formats
const (
	FormatStatus = "status"
	FormatPlain  = "plain"
	FormatYAML   = "yaml"
)

// Exporter writes a snapshot in one format
type Exporter interface {
	Export(s *domain.Snapshot, w io.Writer) error
	Format() string
	Extension() string
}

// Importer reads a snapshot back
type Importer interface {
	Parse(r io.Reader) (*domain.Snapshot, error)
	Format() string
}

// ForFormat returns the exporter for a format name. An empty name selects
// the status format.
func ForFormat(name string) (Exporter, error) {
	switch name {
	case "", FormatStatus:
		return NewStatusCodec(), nil
	case FormatPlain:
		return NewPlainCodec(), nil
	case FormatYAML:
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

// statusEntry is the per-device value of the status format
type statusEntry struct {
	IP        string                   `json:"ip,omitempty" yaml:"ip,omitempty"`
	Vendor    domain.Vendor            `json:"vendor" yaml:"vendor"`
	Status    domain.ResultStatus      `json:"status" yaml:"status"`
	Neighbors *[]domain.NeighborRecord `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
	Error     *domain.ErrorInfo        `json:"error,omitempty" yaml:"error,omitempty"`
}

func newStatusEntry(d domain.DeviceResult) statusEntry {
	e := statusEntry{IP: d.IP, Vendor: d.Vendor, Status: d.Status, Error: d.Error}
	if d.Succeeded() {
		neighbors := d.Neighbors
		if neighbors == nil {
			neighbors = []domain.NeighborRecord{}
		}
		e.Neighbors = &neighbors
	}
	return e
}

func (e statusEntry) result(hostname string) domain.DeviceResult {
	d := domain.DeviceResult{Hostname: hostname, IP: e.IP, Vendor: e.Vendor, Status: e.Status, Error: e.Error}
	if e.Neighbors != nil {
		d.Neighbors = *e.Neighbors
	}
	if d.Status == "" {
		d.Status = domain.ResultOK
		if d.Error != nil {
			d.Status = domain.ResultError
		}
	}
	if d.Succeeded() && d.Neighbors == nil {
		d.Neighbors = []domain.NeighborRecord{}
	}
	return d
}
