// Package service runs collection end to end.
//
// SnapshotService.RunOnce loads the inventory, collects every device and
// hands the snapshot to each configured sink: the dated output file, the
// sqlite history and the Neo4j topology. A failing sink does not stop the
// others and never discards the snapshot. Runs are serialized so the
// scheduler, the inventory watcher and the HTTP API can share one service.
//
// Progress is published as events for connected SSE clients.
package service
