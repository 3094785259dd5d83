package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nbrsnap/internal/domain"
)

const fileNamePrefix = "neighbors_"

// FileName returns the dated file name of a snapshot, e.g.
// neighbors_2024-03-09.json
func FileName(s *domain.Snapshot, exp Exporter) string {
	return fileNamePrefix + s.Date() + exp.Extension()
}

// DateFromFileName recovers the snapshot date from a dated file name
func DateFromFileName(path string) (time.Time, bool) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, fileNamePrefix) {
		return time.Time{}, false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(base, fileNamePrefix), filepath.Ext(base))
	t, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WriteFile writes the snapshot into dir under its dated name and returns
// the path. The file is written to a temporary name first and renamed, so a
// reader never sees a partial snapshot. A file from an earlier run on the
// same date is replaced.
func WriteFile(dir string, s *domain.Snapshot, exp Exporter) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, FileName(s, exp))
	tmp, err := os.CreateTemp(dir, ".neighbors-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := exp.Export(s, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// ReadFile loads a snapshot file written by WriteFile. The snapshot date is
// taken from the file name when it carries one.
func ReadFile(path string) (*domain.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var imp Importer = NewStatusCodec()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		imp = NewYAMLCodec()
	}

	s, err := imp.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if t, ok := DateFromFileName(path); ok {
		s.TakenAt = t
	}
	return s, nil
}
