// Package adapter implements the device clients that fetch raw neighbor
// tables from network devices.
//
// Each vendor family has one DeviceClient. A client only moves bytes: it opens
// the session, runs the neighbor command and hands back a domain.RawResponse.
// Turning that answer into records is the job of the extractor registered
// next to the client.
//
// # Clients
//
// NXAPIClient posts "show cdp neighbor" to the NX-API JSON-RPC endpoint.
//
// IOSClient opens an SSH shell, disables paging and captures the output of
// "show cdp neighbor".
//
// EAPIClient runs "show lldp neighbors" through Arista eAPI using a named
// connection profile.
//
// SNMPClient walks the LLDP-MIB remote and local port tables.
//
// # Registry
//
// Registry pairs every vendor tag with its client and extractor. The collector
// dispatches by looking the device's tag up; there is no per-vendor branching
// outside this package.
package adapter
