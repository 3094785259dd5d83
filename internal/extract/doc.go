// Package extract implements the neighbor normalization engine.
//
// Each vendor family has one extractor with the same signature (Func): it
// takes the raw answer of a device client and returns the neighbor records in
// the order the device listed them. Extractors are pure functions; the same
// input always yields the same output.
//
//   - NXOS walks the NX-API JSON-RPC document for "show cdp neighbor"
//   - IOS applies a tolerant row grammar to "show cdp neighbor" CLI text
//   - EOS walks the eAPI result list for "show lldp neighbors"
//   - LLDPMIB joins LLDP-MIB remote and local port tables from an SNMP walk
//
// Device-level failures are returned as *domain.DeviceError. A record is only
// emitted when all three fields are non-empty.
package extract

import "nbrsnap/internal/domain"

// Func converts a raw device answer into normalized neighbor records
type Func func(raw *domain.RawResponse) ([]domain.NeighborRecord, error)
