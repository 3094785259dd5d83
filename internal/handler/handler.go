package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nbrsnap/internal/codec"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/repository"
	"nbrsnap/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// SnapshotReader is the read side of the snapshot history
type SnapshotReader interface {
	GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error)
	DeviceHistory(ctx context.Context, hostname string, limit int) ([]domain.DeviceHistoryEntry, error)
}

// CollectRunner starts a collection run unless one is active
type CollectRunner interface {
	TryRunOnce(ctx context.Context) (*service.RunResult, error)
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CollectResponse is the body of POST /collect
type CollectResponse struct {
	Summary  domain.SnapshotSummary `json:"summary"`
	File     string                 `json:"file,omitempty"`
	Took     string                 `json:"took"`
	Warnings []string               `json:"warnings,omitempty"`
}

// SnapshotHandler serves the snapshot history and collection trigger
type SnapshotHandler struct {
	history SnapshotReader
	runner  CollectRunner
	plain   codec.Exporter
	logger  *zap.Logger
}

// NewSnapshotHandler creates a handler. A nil history disables the snapshot
// routes; a nil runner disables POST /collect.
func NewSnapshotHandler(history SnapshotReader, runner CollectRunner, logger *zap.Logger) *SnapshotHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotHandler{
		history: history,
		runner:  runner,
		plain:   codec.NewPlainCodec(),
		logger:  logger,
	}
}

// RegisterRoutes registers the API routes on the given group
func (h *SnapshotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/snapshots", h.listSnapshots)
	rg.GET("/snapshots/:id", h.getSnapshot)
	rg.GET("/snapshots/:id/neighbors", h.getNeighbors)
	rg.GET("/devices/:hostname/history", h.deviceHistory)
	rg.POST("/collect", h.collect)
}

func (h *SnapshotHandler) listSnapshots(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	summaries, err := h.history.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, "failed to list snapshots", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *SnapshotHandler) getSnapshot(c *gin.Context) {
	snap, ok := h.loadSnapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SnapshotHandler) getNeighbors(c *gin.Context) {
	snap, ok := h.loadSnapshot(c)
	if !ok {
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/json; charset=utf-8")
	if err := h.plain.Export(snap, c.Writer); err != nil {
		h.logger.Warn("failed to write neighbors", zap.Int64("snapshot", snap.ID), zap.Error(err))
	}
}

func (h *SnapshotHandler) deviceHistory(c *gin.Context) {
	if !h.requireHistory(c) {
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	hostname := c.Param("hostname")
	history, err := h.history.DeviceHistory(c.Request.Context(), hostname, limit)
	if err != nil {
		h.fail(c, "failed to get device history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *SnapshotHandler) collect(c *gin.Context) {
	if h.runner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "collection is not configured"})
		return
	}

	// A client disconnect must not abort a run that already touched devices
	ctx := context.WithoutCancel(c.Request.Context())
	res, err := h.runner.TryRunOnce(ctx)
	if errors.Is(err, service.ErrRunInProgress) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	if res == nil {
		h.fail(c, "collection failed", err)
		return
	}

	resp := CollectResponse{
		Summary: res.Snapshot.Summary(),
		File:    res.File,
		Took:    res.Took.Round(time.Millisecond).String(),
	}
	if err != nil {
		resp.Warnings = []string{err.Error()}
	}
	c.JSON(http.StatusOK, resp)
}

// loadSnapshot resolves the :id parameter, which may be "latest"
func (h *SnapshotHandler) loadSnapshot(c *gin.Context) (*domain.Snapshot, bool) {
	if !h.requireHistory(c) {
		return nil, false
	}

	var (
		snap *domain.Snapshot
		err  error
	)
	param := c.Param("id")
	if param == "latest" {
		snap, err = h.history.LatestSnapshot(c.Request.Context())
	} else {
		id, perr := strconv.ParseInt(param, 10, 64)
		if perr != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid snapshot id", Details: param})
			return nil, false
		}
		snap, err = h.history.GetSnapshot(c.Request.Context(), id)
	}
	if err != nil {
		h.fail(c, "failed to get snapshot", err)
		return nil, false
	}
	return snap, true
}

func (h *SnapshotHandler) requireHistory(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "snapshot history is disabled"})
		return false
	}
	return true
}

func (h *SnapshotHandler) fail(c *gin.Context, msg string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Details: err.Error()})
		return
	}
	h.logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg, Details: err.Error()})
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit", Details: raw})
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}
