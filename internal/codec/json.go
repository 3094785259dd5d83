package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"nbrsnap/internal/domain"
)

// orderedObject marshals as a JSON object keeping insertion order
type orderedObject []objectMember

type objectMember struct {
	key   string
	value any
}

// MarshalJSON implements json.Marshaler
func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeJSON(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// StatusCodec writes hostname -> {vendor, status, neighbors | error}
type StatusCodec struct{}

// NewStatusCodec creates a new status codec
func NewStatusCodec() *StatusCodec {
	return &StatusCodec{}
}

// Format returns the codec format identifier
func (c *StatusCodec) Format() string {
	return FormatStatus
}

// Extension returns the file extension
func (c *StatusCodec) Extension() string {
	return ".json"
}

// Export writes the snapshot in inventory order
func (c *StatusCodec) Export(s *domain.Snapshot, w io.Writer) error {
	obj := make(orderedObject, 0, len(s.Devices))
	for _, d := range s.Devices {
		obj = append(obj, objectMember{key: d.Hostname, value: newStatusEntry(d)})
	}
	return encodeJSON(obj, w)
}

// Parse reads either JSON format back. Plain entries carry no vendor; a
// null entry becomes a failed device.
func (c *StatusCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	return ParseJSON(r)
}

// PlainCodec writes hostname -> neighbor list, with null for failed devices
type PlainCodec struct{}

// NewPlainCodec creates a new plain codec
func NewPlainCodec() *PlainCodec {
	return &PlainCodec{}
}

// Format returns the codec format identifier
func (c *PlainCodec) Format() string {
	return FormatPlain
}

// Extension returns the file extension
func (c *PlainCodec) Extension() string {
	return ".json"
}

// Export writes the snapshot in inventory order
func (c *PlainCodec) Export(s *domain.Snapshot, w io.Writer) error {
	sets := s.NeighborSets()
	obj := make(orderedObject, 0, len(s.Devices))
	for _, d := range s.Devices {
		var value any
		if neighbors, ok := sets[d.Hostname]; ok {
			if neighbors == nil {
				neighbors = []domain.NeighborRecord{}
			}
			value = neighbors
		}
		obj = append(obj, objectMember{key: d.Hostname, value: value})
	}
	return encodeJSON(obj, w)
}

// ParseJSON reads a status or plain snapshot file, keeping device order
func ParseJSON(r io.Reader) (*domain.Snapshot, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("failed to parse JSON: snapshot is not an object")
	}

	s := &domain.Snapshot{Devices: []domain.DeviceResult{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		hostname, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON entry %s: %w", hostname, err)
		}
		d, err := decodeEntry(hostname, raw)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return s, nil
}

func decodeEntry(hostname string, raw json.RawMessage) (domain.DeviceResult, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return domain.DeviceResult{
			Hostname: hostname,
			Status:   domain.ResultError,
			Error:    &domain.ErrorInfo{Kind: domain.ErrorKindConnectivity, Detail: "device was unreachable"},
		}, nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var neighbors []domain.NeighborRecord
		if err := json.Unmarshal(trimmed, &neighbors); err != nil {
			return domain.DeviceResult{}, fmt.Errorf("failed to parse neighbors of %s: %w", hostname, err)
		}
		return domain.DeviceResult{Hostname: hostname, Status: domain.ResultOK, Neighbors: append([]domain.NeighborRecord{}, neighbors...)}, nil
	default:
		var e statusEntry
		if err := json.Unmarshal(trimmed, &e); err != nil {
			return domain.DeviceResult{}, fmt.Errorf("failed to parse entry %s: %w", hostname, err)
		}
		return e.result(hostname), nil
	}
}
