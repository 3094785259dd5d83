// Package handler implements the nbrsnap HTTP API on gin.
//
// # Routes
//
//	GET  /healthz
//	GET  /metrics
//	GET  /api/v1/snapshots?limit=N
//	GET  /api/v1/snapshots/latest
//	GET  /api/v1/snapshots/:id
//	GET  /api/v1/snapshots/:id/neighbors
//	GET  /api/v1/devices/:hostname/history?limit=N
//	POST /api/v1/collect
//	GET  /api/v1/events
//
// Snapshot routes read the sqlite history; "latest" is accepted wherever an
// id is. The neighbors route returns the plain hostname to neighbor-list
// mapping with null for failed devices. POST /collect runs a collection
// synchronously and answers 409 while another run is active.
//
// Errors are returned as JSON with {error, details}.
package handler
