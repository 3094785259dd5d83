// Package graph writes neighbor topology into Neo4j.
//
// Each successfully collected device becomes a (:Device {name}) node with
// one [:CONNECTED_TO {local_interface}] relationship per neighbor record.
// Relationships carry the neighbor_interface and the snapshot they were last
// seen in; links a device no longer reports are removed when the device is
// written again. Failed devices are left untouched so a transient outage
// does not erase their last known topology.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nbrsnap/internal/domain"
)

const (
	schemaQuery = `CREATE CONSTRAINT device_name IF NOT EXISTS FOR (d:Device) REQUIRE d.name IS UNIQUE`

	mergeLinksQuery = `
MERGE (d:Device {name: $device})
SET d.last_seen = $snapshot
WITH d
UNWIND $links AS link
MERGE (n:Device {name: link.neighbor})
MERGE (d)-[r:CONNECTED_TO {local_interface: link.local_interface}]->(n)
SET r.neighbor_interface = link.neighbor_interface, r.snapshot = $snapshot`

	deleteStaleQuery = `
MATCH (:Device {name: $device})-[r:CONNECTED_TO]->()
WHERE r.snapshot <> $snapshot
DELETE r`
)

// Writer writes snapshots as topology
type Writer struct {
	runner Runner
	logger *zap.Logger
}

// NewWriter creates a topology writer
func NewWriter(runner Runner, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{runner: runner, logger: logger}
}

// EnsureSchema creates the device name uniqueness constraint
func (w *Writer) EnsureSchema(ctx context.Context) error {
	if err := w.runner.ExecuteWrite(ctx, Statement{Query: schemaQuery}); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// WriteSnapshot writes every successful device in its own transaction.
// A failing device does not stop the others; all errors are returned joined.
func (w *Writer) WriteSnapshot(ctx context.Context, s *domain.Snapshot) error {
	key := snapshotKey(s)

	var errs []error
	written := 0
	for _, d := range s.Devices {
		if !d.Succeeded() {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.runner.ExecuteWrite(ctx, deviceStatements(d, key)...); err != nil {
			w.logger.Warn("topology write failed", zap.String("host", d.Hostname), zap.Error(err))
			errs = append(errs, fmt.Errorf("device %s: %w", d.Hostname, err))
			continue
		}
		written++
	}

	w.logger.Debug("topology written", zap.String("snapshot", key), zap.Int("devices", written))
	return errors.Join(errs...)
}

func deviceStatements(d domain.DeviceResult, key string) []Statement {
	links := make([]map[string]any, 0, len(d.Neighbors))
	for _, n := range d.Neighbors {
		links = append(links, map[string]any{
			"local_interface":    n.LocalInterface,
			"neighbor":           n.Neighbor,
			"neighbor_interface": n.NeighborInterface,
		})
	}

	return []Statement{
		{
			Query: mergeLinksQuery,
			Params: map[string]any{
				"device":   d.Hostname,
				"snapshot": key,
				"links":    links,
			},
		},
		{
			Query: deleteStaleQuery,
			Params: map[string]any{
				"device":   d.Hostname,
				"snapshot": key,
			},
		},
	}
}

// snapshotKey identifies a snapshot on relationships. Stored snapshots use
// their id; unsaved ones fall back to the collection time.
func snapshotKey(s *domain.Snapshot) string {
	if s.ID > 0 {
		return fmt.Sprintf("%d@%s", s.ID, s.TakenAt.UTC().Format(time.RFC3339))
	}
	return s.TakenAt.UTC().Format(time.RFC3339Nano)
}
