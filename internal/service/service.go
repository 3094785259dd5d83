package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"nbrsnap/internal/codec"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/inventory"
)

// ErrRunInProgress is returned by TryRunOnce while another run is active
var ErrRunInProgress = errors.New("collection already in progress")

// Collector turns an inventory into a snapshot
type Collector interface {
	Collect(ctx context.Context, devices []domain.Device) *domain.Snapshot
}

// HistoryStore is the part of the snapshot repository a run writes to
type HistoryStore interface {
	SaveSnapshot(ctx context.Context, s *domain.Snapshot) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// TopologyWriter writes a snapshot's links to a graph
type TopologyWriter interface {
	WriteSnapshot(ctx context.Context, s *domain.Snapshot) error
}

// InventoryLoader reads the device list
type InventoryLoader func(path string) ([]domain.Device, error)

// RunResult is the outcome of one run
type RunResult struct {
	Snapshot *domain.Snapshot
	File     string
	Took     time.Duration
}

// Option configures a SnapshotService
type Option func(*SnapshotService)

// WithInventory sets the inventory file
func WithInventory(path string) Option {
	return func(s *SnapshotService) {
		s.inventoryPath = path
	}
}

// WithInventoryLoader replaces the file-extension based loader
func WithInventoryLoader(fn InventoryLoader) Option {
	return func(s *SnapshotService) {
		if fn != nil {
			s.load = fn
		}
	}
}

// WithOutput writes each snapshot as a dated file in dir
func WithOutput(dir string, exp codec.Exporter) Option {
	return func(s *SnapshotService) {
		s.outputDir = dir
		s.exporter = exp
	}
}

// WithHistory stores each snapshot, keeping at most retain of them (0 keeps all)
func WithHistory(store HistoryStore, retain int) Option {
	return func(s *SnapshotService) {
		s.history = store
		s.retain = retain
	}
}

// WithTopology writes each snapshot to a graph
func WithTopology(w TopologyWriter) Option {
	return func(s *SnapshotService) {
		s.topology = w
	}
}

// WithPublisher publishes run events
func WithPublisher(p Publisher) Option {
	return func(s *SnapshotService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *SnapshotService) {
		if l != nil {
			s.logger = l
		}
	}
}

// SnapshotService coordinates a collection run and its sinks
type SnapshotService struct {
	collector     Collector
	load          InventoryLoader
	inventoryPath string
	outputDir     string
	exporter      codec.Exporter
	history       HistoryStore
	retain        int
	topology      TopologyWriter
	publisher     Publisher
	logger        *zap.Logger

	mu sync.Mutex

	lastMu sync.RWMutex
	last   *RunResult
}

// New creates a snapshot service
func New(collector Collector, opts ...Option) *SnapshotService {
	s := &SnapshotService{
		collector: collector,
		load:      inventory.Load,
		publisher: nopPublisher{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunOnce performs one collection run. It waits for a run already in
// progress. Sink failures are logged and returned joined alongside the
// result; only an unreadable inventory yields no snapshot.
func (s *SnapshotService) RunOnce(ctx context.Context) (*RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx)
}

// TryRunOnce is RunOnce but returns ErrRunInProgress instead of waiting
func (s *SnapshotService) TryRunOnce(ctx context.Context) (*RunResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.mu.Unlock()
	return s.run(ctx)
}

// Last returns the result of the most recent run, if any
func (s *SnapshotService) Last() *RunResult {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

func (s *SnapshotService) run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	devices, err := s.load(s.inventoryPath)
	if err != nil {
		s.logger.Error("inventory load failed", zap.String("inventory", s.inventoryPath), zap.Error(err))
		s.publisher.Broadcast(Event{Type: EventCollectFailed, Payload: map[string]string{"error": err.Error()}})
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}

	s.logger.Info("collection started", zap.String("inventory", s.inventoryPath), zap.Int("devices", len(devices)))
	s.publisher.Broadcast(Event{Type: EventCollectStarted, Payload: map[string]int{"devices": len(devices)}})

	snap := s.collector.Collect(ctx, devices)
	result := &RunResult{Snapshot: snap}

	var errs []error

	if s.exporter != nil {
		file, err := codec.WriteFile(s.outputDir, snap, s.exporter)
		if err != nil {
			s.logger.Error("snapshot file write failed", zap.String("dir", s.outputDir), zap.Error(err))
			errs = append(errs, err)
		} else {
			result.File = file
		}
	}

	// History first so the topology carries the stored snapshot id
	if s.history != nil {
		if err := s.saveHistory(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}

	if s.topology != nil {
		if err := s.topology.WriteSnapshot(ctx, snap); err != nil {
			s.logger.Error("topology write failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("failed to write topology: %w", err))
		}
	}

	result.Took = time.Since(start)
	sum := snap.Summary()
	s.logger.Info("collection finished",
		zap.Int64("snapshot", snap.ID),
		zap.Int("devices", sum.Devices),
		zap.Int("failed", sum.Failed),
		zap.Int("neighbors", sum.Neighbors),
		zap.String("file", result.File),
		zap.Duration("took", result.Took))
	s.publisher.Broadcast(Event{Type: EventSnapshotTaken, Payload: sum})

	s.lastMu.Lock()
	s.last = result
	s.lastMu.Unlock()
	return result, errors.Join(errs...)
}

func (s *SnapshotService) saveHistory(ctx context.Context, snap *domain.Snapshot) error {
	if _, err := s.history.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("snapshot history write failed", zap.Error(err))
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if s.retain > 0 {
		pruned, err := s.history.Prune(ctx, s.retain)
		if err != nil {
			s.logger.Warn("snapshot prune failed", zap.Error(err))
			return fmt.Errorf("failed to prune history: %w", err)
		}
		if pruned > 0 {
			s.logger.Debug("snapshots pruned", zap.Int64("count", pruned))
		}
	}
	return nil
}

// InventoryChanged is called by the watcher before it triggers a run
func (s *SnapshotService) InventoryChanged(path string) {
	s.publisher.Broadcast(Event{Type: EventInventoryChanged, Payload: map[string]string{"path": path}})
}
