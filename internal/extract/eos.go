package extract

import "nbrsnap/internal/domain"

const eosNeighborsPath = "result.lldpNeighbors"

var eosFields = fieldMap{
	neighborInterface: "neighborPort",
	localInterface:    "port",
	neighbor:          "neighborDevice",
}

// EOS extracts LLDP neighbors from the eAPI command result list. The first
// element must be the "show lldp neighbors" result.
func EOS(raw *domain.RawResponse) ([]domain.NeighborRecord, error) {
	if raw == nil {
		return nil, domain.NewParseError("no response")
	}
	if !raw.OK {
		return nil, domain.NewProtocolError(raw.StatusCode, raw.Reason, string(raw.Content))
	}

	doc, err := decodeDocument(raw.Content)
	if err != nil {
		return nil, err
	}
	results, ok := doc.([]any)
	if !ok {
		return nil, domain.NewParseError("malformed response: result list expected")
	}
	if len(results) == 0 {
		return nil, domain.NewParseError("malformed response: empty result list")
	}

	neighbors, err := lookupPath(results[0], "result", "lldpNeighbors")
	if err != nil {
		return nil, err
	}
	entries, err := entryList(neighbors, eosNeighborsPath)
	if err != nil {
		return nil, err
	}
	return mapEntries(entries, eosFields, eosNeighborsPath)
}
