package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"nbrsnap/internal/domain"
)

// fieldMap names the entry keys that feed each NeighborRecord field
type fieldMap struct {
	neighborInterface string
	localInterface    string
	neighbor          string
}

// decodeDocument parses a JSON document keeping numbers verbatim
func decodeDocument(content []byte) (any, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, domain.NewParseError("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		pe := domain.NewParseError("response is not a JSON document")
		pe.Err = err
		return nil, pe
	}
	return doc, nil
}

// lookupPath walks nested mappings. A missing key is a malformed response.
func lookupPath(doc any, path ...string) (any, error) {
	cur := doc
	for i, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, domain.NewParseError("malformed response: %s is not a mapping", strings.Join(path[:i], "."))
		}
		next, ok := m[key]
		if !ok {
			return nil, domain.NewParseError("malformed response: missing %s", strings.Join(path[:i+1], "."))
		}
		cur = next
	}
	return cur, nil
}

// entryList accepts a sequence of mappings, or a single mapping standing for
// a one-entry sequence
func entryList(v any, path string) ([]map[string]any, error) {
	switch t := v.(type) {
	case []any:
		entries := make([]map[string]any, 0, len(t))
		for i, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, domain.NewParseError("malformed response: %s[%d] is not a mapping", path, i)
			}
			entries = append(entries, m)
		}
		return entries, nil
	case map[string]any:
		return []map[string]any{t}, nil
	default:
		return nil, domain.NewParseError("malformed response: %s is not a sequence", path)
	}
}

// mapEntries converts entries into records, preserving order. Entries with an
// empty field are omitted; a missing or non-scalar field fails the device.
func mapEntries(entries []map[string]any, fields fieldMap, path string) ([]domain.NeighborRecord, error) {
	records := make([]domain.NeighborRecord, 0, len(entries))
	for i, entry := range entries {
		var rec domain.NeighborRecord
		var err error
		if rec.NeighborInterface, err = scalarField(entry, fields.neighborInterface, path, i); err != nil {
			return nil, err
		}
		if rec.LocalInterface, err = scalarField(entry, fields.localInterface, path, i); err != nil {
			return nil, err
		}
		if rec.Neighbor, err = scalarField(entry, fields.neighbor, path, i); err != nil {
			return nil, err
		}
		if !rec.Complete() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func scalarField(entry map[string]any, key, path string, idx int) (string, error) {
	v, ok := entry[key]
	if !ok {
		return "", domain.NewParseError("malformed response: %s[%d] missing %s", path, idx, key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	default:
		return "", domain.NewParseError("malformed response: %s[%d].%s is not a string", path, idx, key)
	}
}
