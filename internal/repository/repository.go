package repository

import (
	"context"
	"errors"

	"nbrsnap/internal/domain"
)

// ErrNotFound is returned for an unknown snapshot id or an empty history
var ErrNotFound = errors.New("not found")

// Repository stores snapshots
type Repository interface {
	// SaveSnapshot stores a snapshot and sets its ID
	SaveSnapshot(ctx context.Context, s *domain.Snapshot) (int64, error)

	GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)

	// ListSnapshots returns summaries, newest first
	ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error)

	// DeviceHistory returns one device's results across snapshots, newest first
	DeviceHistory(ctx context.Context, hostname string, limit int) ([]domain.DeviceHistoryEntry, error)

	// Prune keeps the newest snapshots and deletes the rest
	Prune(ctx context.Context, keep int) (int64, error)

	Close() error
}
