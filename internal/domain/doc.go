// Package domain defines the core types shared by every nbrsnap component.
//
// # Neighbor Records
//
// NeighborRecord is the normalized unit produced by every vendor extractor:
// the remote interface, the local interface and the remote device name, copied
// verbatim from what the device reported.
//
// # Devices and Results
//
// Device is one inventory entry (hostname, management address, vendor tag).
// DeviceResult is the per-device outcome of a collection run: either an ordered
// neighbor sequence or a DeviceError describing why the device was skipped.
//
// # Error Taxonomy
//
// DeviceError classifies device-level failures as connectivity (dial, auth,
// unreachable), protocol (the device answered but rejected the request) or
// parse (the answer lacked the expected structure). Row-level parse problems
// never surface here; malformed rows are dropped by the extractors.
//
// # Snapshots
//
// Snapshot is one dated collection run over an inventory. Its NeighborSets view
// is the hostname to neighbor-sequence mapping persisted as the dated snapshot.
//
// # Design Principles
//
// - No database or transport dependencies
// - Values are passed through exactly as the device reported them
package domain
