package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nbrsnap/internal/domain"
	"nbrsnap/internal/repository"
)

const timeLayout = time.RFC3339Nano

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository and migrates its schema
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps pragmas and in-memory databases alive
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at TEXT NOT NULL,
		devices INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		neighbors INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS device_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		hostname TEXT NOT NULL,
		ip TEXT NOT NULL DEFAULT '',
		vendor TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		error_detail TEXT NOT NULL DEFAULT '',
		status_code INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		collected_at TEXT NOT NULL,
		duration_ns INTEGER NOT NULL DEFAULT 0,
		UNIQUE(snapshot_id, hostname)
	);

	CREATE TABLE IF NOT EXISTS neighbors (
		device_result_id INTEGER NOT NULL REFERENCES device_results(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		local_interface TEXT NOT NULL,
		neighbor TEXT NOT NULL,
		neighbor_interface TEXT NOT NULL,
		PRIMARY KEY (device_result_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_device_results_hostname ON device_results(hostname);
	CREATE INDEX IF NOT EXISTS idx_device_results_snapshot ON device_results(snapshot_id, position);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveSnapshot stores the snapshot, its device results and their neighbor
// sequences in one transaction
func (r *Repository) SaveSnapshot(ctx context.Context, s *domain.Snapshot) (int64, error) {
	if s == nil {
		return 0, errors.New("snapshot is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := s.Summary()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (taken_at, devices, failed, neighbors) VALUES (?, ?, ?, ?)`,
		formatTime(s.TakenAt), sum.Devices, sum.Failed, sum.Neighbors)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot id: %w", err)
	}

	for pos, d := range s.Devices {
		if err := insertDevice(ctx, tx, id, pos, d); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.ID = id
	return id, nil
}

func insertDevice(ctx context.Context, tx *sql.Tx, snapshotID int64, pos int, d domain.DeviceResult) error {
	var e domain.ErrorInfo
	if d.Error != nil {
		e = *d.Error
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO device_results (
			snapshot_id, position, hostname, ip, vendor, status,
			error_kind, error_detail, status_code, reason, content,
			collected_at, duration_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshotID, pos, d.Hostname, d.IP, string(d.Vendor), string(d.Status),
		string(e.Kind), e.Detail, e.StatusCode, e.Reason, e.Content,
		formatTime(d.CollectedAt), int64(d.Duration))
	if err != nil {
		return fmt.Errorf("failed to insert device %s: %w", d.Hostname, err)
	}
	deviceID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read device id: %w", err)
	}

	if len(d.Neighbors) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO neighbors (device_result_id, sequence, local_interface, neighbor, neighbor_interface)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare neighbor insert: %w", err)
	}
	defer stmt.Close()

	for seq, n := range d.Neighbors {
		if _, err := stmt.ExecContext(ctx, deviceID, seq, n.LocalInterface, n.Neighbor, n.NeighborInterface); err != nil {
			return fmt.Errorf("failed to insert neighbor of %s: %w", d.Hostname, err)
		}
	}
	return nil
}

// GetSnapshot loads a snapshot with all device results in inventory order
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error) {
	var takenAt string
	err := r.db.QueryRowContext(ctx, `SELECT taken_at FROM snapshots WHERE id = ?`, id).Scan(&takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %d: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	s := &domain.Snapshot{ID: id, TakenAt: parseTime(takenAt)}
	devices, err := r.queryDevices(ctx, `WHERE d.snapshot_id = ? ORDER BY d.position`, id)
	if err != nil {
		return nil, err
	}
	s.Devices = make([]domain.DeviceResult, 0, len(devices))
	for _, d := range devices {
		s.Devices = append(s.Devices, d.result)
	}
	return s, nil
}

// LatestSnapshot loads the most recently stored snapshot
func (r *Repository) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM snapshots ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest snapshot: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return r.GetSnapshot(ctx, id)
}

// ListSnapshots returns snapshot summaries, newest first. A limit <= 0
// returns all of them.
func (r *Repository) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	query := `SELECT id, taken_at, devices, failed, neighbors FROM snapshots ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SnapshotSummary{}
	for rows.Next() {
		var sum domain.SnapshotSummary
		var takenAt string
		if err := rows.Scan(&sum.ID, &takenAt, &sum.Devices, &sum.Failed, &sum.Neighbors); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		sum.TakenAt = parseTime(takenAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// DeviceHistory returns the results recorded for one hostname, newest
// snapshot first
func (r *Repository) DeviceHistory(ctx context.Context, hostname string, limit int) ([]domain.DeviceHistoryEntry, error) {
	where := `WHERE d.hostname = ? ORDER BY d.snapshot_id DESC`
	args := []any{hostname}
	if limit > 0 {
		where += ` LIMIT ?`
		args = append(args, limit)
	}

	devices, err := r.queryDevices(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("device %s: %w", hostname, repository.ErrNotFound)
	}

	history := make([]domain.DeviceHistoryEntry, 0, len(devices))
	for _, d := range devices {
		history = append(history, domain.DeviceHistoryEntry{
			SnapshotID: d.snapshotID,
			TakenAt:    d.takenAt,
			Result:     d.result,
		})
	}
	return history, nil
}

// Prune deletes all but the newest keep snapshots. A keep <= 0 deletes
// nothing.
func (r *Repository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

type storedDevice struct {
	id         int64
	snapshotID int64
	takenAt    time.Time
	result     domain.DeviceResult
}

// queryDevices loads device rows matching the clause, then their neighbors
func (r *Repository) queryDevices(ctx context.Context, clause string, args ...any) ([]storedDevice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.snapshot_id, s.taken_at, d.hostname, d.ip, d.vendor, d.status,
			d.error_kind, d.error_detail, d.status_code, d.reason, d.content,
			d.collected_at, d.duration_ns
		FROM device_results d
		JOIN snapshots s ON s.id = d.snapshot_id
		`+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}

	var devices []storedDevice
	for rows.Next() {
		var (
			d                         storedDevice
			takenAt, collectedAt      string
			vendor, status, errorKind string
			e                         domain.ErrorInfo
			duration                  int64
		)
		if err := rows.Scan(&d.id, &d.snapshotID, &takenAt, &d.result.Hostname, &d.result.IP,
			&vendor, &status, &errorKind, &e.Detail, &e.StatusCode, &e.Reason, &e.Content,
			&collectedAt, &duration); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		d.takenAt = parseTime(takenAt)
		d.result.Vendor = domain.Vendor(vendor)
		d.result.Status = domain.ResultStatus(status)
		d.result.CollectedAt = parseTime(collectedAt)
		d.result.Duration = time.Duration(duration)
		if errorKind != "" {
			e.Kind = domain.ErrorKind(errorKind)
			d.result.Error = &e
		}
		if d.result.Succeeded() {
			d.result.Neighbors = []domain.NeighborRecord{}
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	rows.Close()

	if len(devices) == 0 {
		return devices, nil
	}
	if err := r.loadNeighbors(ctx, devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *Repository) loadNeighbors(ctx context.Context, devices []storedDevice) error {
	index := make(map[int64]int, len(devices))
	placeholders := make([]string, 0, len(devices))
	args := make([]any, 0, len(devices))
	for i, d := range devices {
		index[d.id] = i
		placeholders = append(placeholders, "?")
		args = append(args, d.id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT device_result_id, local_interface, neighbor, neighbor_interface
		FROM neighbors
		WHERE device_result_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY device_result_id, sequence`, args...)
	if err != nil {
		return fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var deviceID int64
		var n domain.NeighborRecord
		if err := rows.Scan(&deviceID, &n.LocalInterface, &n.Neighbor, &n.NeighborInterface); err != nil {
			return fmt.Errorf("failed to scan neighbor: %w", err)
		}
		i := index[deviceID]
		devices[i].result.Neighbors = append(devices[i].result.Neighbors, n)
	}
	return rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.Local()
}
