// Package inventory loads the list of devices to collect from.
package inventory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nbrsnap/internal/domain"
)

// Importer parses an inventory document
type Importer interface {
	Parse(r io.Reader) ([]domain.Device, error)
	Format() string
}

// ForPath picks the importer matching a file extension
func ForPath(path string) (Importer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVCodec(), nil
	case ".yml", ".yaml":
		return NewAnsibleCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported inventory format: %s", path)
	}
}

// Load reads the inventory file at path
func Load(path string) ([]domain.Device, error) {
	imp, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	devices, err := imp.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return devices, nil
}

// LoadCSV parses a CSV inventory
func LoadCSV(r io.Reader) ([]domain.Device, error) {
	return NewCSVCodec().Parse(r)
}

// LoadAnsible parses an Ansible YAML inventory
func LoadAnsible(r io.Reader) ([]domain.Device, error) {
	return NewAnsibleCodec().Parse(r)
}
