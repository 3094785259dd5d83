package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"nbrsnap/internal/domain"
)

// CSVCodec reads inventories with hostname, ip and os columns
type CSVCodec struct{}

// NewCSVCodec creates a new CSV codec
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

// Format returns the codec format identifier
func (c *CSVCodec) Format() string {
	return "csv"
}

// Parse reads devices in file order. Columns may appear in any order and
// extra columns are ignored; rows with a blank hostname are skipped.
func (c *CSVCodec) Parse(r io.Reader) ([]domain.Device, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Device{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"hostname", "os"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV inventory has no %q column", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	devices := []domain.Device{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		hostname := field(row, "hostname")
		if hostname == "" {
			continue
		}
		devices = append(devices, domain.Device{
			Hostname: hostname,
			IP:       field(row, "ip"),
			Vendor:   domain.ParseVendor(field(row, "os")),
		})
	}
	return devices, nil
}
