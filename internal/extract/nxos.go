package extract

import (
	"fmt"

	"nbrsnap/internal/domain"
)

const nxosRowsPath = "result.body.TABLE_cdp_neighbor_brief_info.ROW_cdp_neighbor_brief_info"

var nxosFields = fieldMap{
	neighborInterface: "port_id",
	localInterface:    "intf_id",
	neighbor:          "device_id",
}

// NXOS extracts CDP neighbors from an NX-API "show cdp neighbor" answer.
//
// A failed request yields a protocol error that carries the status code,
// reason and body verbatim. A successful answer without the neighbor table
// path is malformed; an empty table yields an empty sequence.
func NXOS(raw *domain.RawResponse) ([]domain.NeighborRecord, error) {
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

	// Batch requests may be answered with a batch
	if batch, ok := doc.([]any); ok {
		if len(batch) == 0 {
			return nil, domain.NewParseError("malformed response: empty batch")
		}
		doc = batch[0]
	}

	top, ok := doc.(map[string]any)
	if !ok {
		return nil, domain.NewParseError("malformed response: top level is not a mapping")
	}
	if rpcErr, ok := top["error"]; ok && rpcErr != nil {
		return nil, jsonRPCError(raw, rpcErr)
	}

	result, ok := top["result"]
	if !ok {
		return nil, domain.NewParseError("malformed response: missing result")
	}
	// NX-API answers empty CLI output with a null result
	if result == nil {
		return []domain.NeighborRecord{}, nil
	}

	rows, err := lookupPath(top, "result", "body", "TABLE_cdp_neighbor_brief_info", "ROW_cdp_neighbor_brief_info")
	if err != nil {
		return nil, err
	}
	entries, err := entryList(rows, nxosRowsPath)
	if err != nil {
		return nil, err
	}
	return mapEntries(entries, nxosFields, nxosRowsPath)
}

// jsonRPCError reports an in-band JSON-RPC error as a protocol failure
func jsonRPCError(raw *domain.RawResponse, rpcErr any) *domain.DeviceError {
	reason := fmt.Sprintf("%v", rpcErr)
	if m, ok := rpcErr.(map[string]any); ok {
		reason = fmt.Sprintf("json-rpc error %v: %v", m["code"], m["message"])
	}
	de := domain.NewProtocolError(raw.StatusCode, reason, string(raw.Content))
	de.Detail = "the device rejected the command"
	return de
}
