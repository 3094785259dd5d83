package ioc

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"nbrsnap/internal/codec"
	"nbrsnap/internal/collector"
	"nbrsnap/internal/config"
	"nbrsnap/internal/graph"
	"nbrsnap/internal/handler"
	"nbrsnap/internal/hub"
	"nbrsnap/internal/job"
	"nbrsnap/internal/repository/sqlite"
	"nbrsnap/internal/service"
	"nbrsnap/internal/watcher"
)

// InitRepository opens the snapshot history, or returns nil when disabled
func InitRepository(cfg *config.Config, logger *zap.Logger) (*sqlite.Repository, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("snapshot history opened", zap.String("path", cfg.Database.Path))
	return repo, func() {
		if err := repo.Close(); err != nil {
			logger.Warn("close snapshot history failed", zap.Error(err))
		}
	}, nil
}

// InitGraphWriter connects to Neo4j, or returns nil when disabled
func InitGraphWriter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*graph.Writer, func(), error) {
	if !cfg.Neo4j.Enabled {
		return nil, func() {}, nil
	}
	client, err := graph.NewClient(ctx, graph.Config{
		URI:            cfg.Neo4j.URI,
		Username:       cfg.Neo4j.Username,
		Password:       cfg.Neo4j.Password,
		Database:       cfg.Neo4j.Database,
		ConnectTimeout: cfg.Neo4j.Timeout.Duration(),
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("close neo4j client failed", zap.Error(err))
		}
	}

	w := graph.NewWriter(client, logger)
	if err := w.EnsureSchema(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return w, cleanup, nil
}

// InitHub starts the SSE event hub; cleanup stops it
func InitHub(logger *zap.Logger) (*hub.Hub, func()) {
	h := hub.New(logger)
	done := make(chan struct{})
	go h.Run(done)
	return h, func() { close(done) }
}

// InitSnapshotService wires the collector to every enabled sink and
// publishes run events to the hub
func InitSnapshotService(cfg *config.Config, c *collector.Collector, repo *sqlite.Repository, w *graph.Writer, h *hub.Hub, logger *zap.Logger) (*service.SnapshotService, error) {
	opts, err := serviceOptions(cfg, repo, w, logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, service.WithPublisher(h))
	return service.New(c, opts...), nil
}

// InitCollectService is InitSnapshotService without an event hub
func InitCollectService(cfg *config.Config, c *collector.Collector, repo *sqlite.Repository, w *graph.Writer, logger *zap.Logger) (*service.SnapshotService, error) {
	opts, err := serviceOptions(cfg, repo, w, logger)
	if err != nil {
		return nil, err
	}
	return service.New(c, opts...), nil
}

func serviceOptions(cfg *config.Config, repo *sqlite.Repository, w *graph.Writer, logger *zap.Logger) ([]service.Option, error) {
	exp, err := codec.ForFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	opts := []service.Option{
		service.WithInventory(cfg.Inventory.Path),
		service.WithOutput(cfg.Output.Dir, exp),
		service.WithLogger(logger),
	}
	// Typed nils must not reach the interface-typed options
	if repo != nil {
		opts = append(opts, service.WithHistory(repo, cfg.Database.Retain))
	}
	if w != nil {
		opts = append(opts, service.WithTopology(w))
	}
	return opts, nil
}

// InitScheduler returns the cron scheduler, or nil when disabled
func InitScheduler(cfg *config.Config, svc *service.SnapshotService, logger *zap.Logger) *job.Scheduler {
	if !cfg.Schedule.Enabled {
		return nil
	}
	return job.NewScheduler(cfg.Schedule.Cron, func(ctx context.Context) error {
		_, err := svc.RunOnce(ctx)
		return err
	}, logger)
}

// InitWatcher returns the inventory watcher, or nil when disabled
func InitWatcher(ctx context.Context, cfg *config.Config, svc *service.SnapshotService, logger *zap.Logger) *watcher.Watcher {
	if !cfg.Inventory.Watch {
		return nil
	}
	onChange := func(path string) {
		svc.InventoryChanged(path)
		if _, err := svc.RunOnce(ctx); err != nil {
			logger.Error("collection after inventory change failed", zap.Error(err))
		}
	}
	return watcher.New(onChange, cfg.Inventory.Path).
		WithDebounce(cfg.Inventory.Debounce.Duration()).
		WithLogger(logger)
}

// InitSnapshotHandler builds the API handler
func InitSnapshotHandler(repo *sqlite.Repository, svc *service.SnapshotService, logger *zap.Logger) *handler.SnapshotHandler {
	var history handler.SnapshotReader
	if repo != nil {
		history = repo
	}
	return handler.NewSnapshotHandler(history, svc, logger)
}

// InitGinEngine builds the gin engine
func InitGinEngine(h *handler.SnapshotHandler, reg *prometheus.Registry, events *hub.Hub, logger *zap.Logger) *gin.Engine {
	var stream http.Handler
	if events != nil {
		stream = events
	}
	return handler.NewEngine(h, reg, stream, logger)
}
