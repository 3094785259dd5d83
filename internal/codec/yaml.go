package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"nbrsnap/internal/domain"
)

// YAMLCodec writes and reads the status format as YAML
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return FormatYAML
}

// Extension returns the file extension
func (c *YAMLCodec) Extension() string {
	return ".yaml"
}

// Export writes the snapshot in inventory order
func (c *YAMLCodec) Export(s *domain.Snapshot, w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, d := range s.Devices {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: d.Hostname}
		value := &yaml.Node{}
		if err := value.Encode(newStatusEntry(d)); err != nil {
			return fmt.Errorf("failed to encode %s: %w", d.Hostname, err)
		}
		doc.Content = append(doc.Content, key, value)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Parse reads a YAML snapshot back in document order
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse YAML: snapshot is not a mapping")
	}

	root := doc.Content[0]
	s := &domain.Snapshot{Devices: []domain.DeviceResult{}}
	for i := 0; i+1 < len(root.Content); i += 2 {
		hostname := root.Content[i].Value
		var e statusEntry
		if err := root.Content[i+1].Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to parse entry %s: %w", hostname, err)
		}
		s.Add(e.result(hostname))
	}
	return s, nil
}
