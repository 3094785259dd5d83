// Package collector polls every inventory device and assembles a snapshot.
package collector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"nbrsnap/internal/adapter"
	"nbrsnap/internal/domain"
	"nbrsnap/internal/metrics"
	"nbrsnap/internal/preflight"
)

// Collector runs drivers over an inventory
type Collector struct {
	registry      *adapter.Registry
	maxConcurrent int
	deviceTimeout time.Duration
	prober        preflight.Prober
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// Option configures a Collector
type Option func(*Collector)

// WithMaxConcurrent bounds how many devices are polled at once
func WithMaxConcurrent(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithDeviceTimeout bounds the time spent on one device
func WithDeviceTimeout(d time.Duration) Option {
	return func(c *Collector) {
		c.deviceTimeout = d
	}
}

// WithPreflight probes each device's management port before connecting
func WithPreflight(p preflight.Prober) Option {
	return func(c *Collector) {
		c.prober = p
	}
}

// WithMetrics records per-device and per-snapshot metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Collector) {
		c.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a collector. Devices are polled one at a time unless
// WithMaxConcurrent says otherwise.
func New(registry *adapter.Registry, opts ...Option) *Collector {
	c := &Collector{
		registry:      registry,
		maxConcurrent: 1,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// job is one device with its driver and inventory position
type job struct {
	index  int
	device domain.Device
	driver adapter.Driver
}

// Collect polls every device with a registered driver. Devices with an
// unknown vendor tag are left out of the snapshot. A failed device never
// stops the run; its failure is recorded in its result.
func (c *Collector) Collect(ctx context.Context, devices []domain.Device) *domain.Snapshot {
	start := time.Now()
	snapshot := domain.NewSnapshot()

	jobs := make([]job, 0, len(devices))
	for i, dev := range devices {
		driver, ok := c.registry.Lookup(dev.Vendor)
		if !ok {
			c.logger.Debug("skipping device with unsupported os",
				zap.String("host", dev.Hostname), zap.String("os", string(dev.Vendor)))
			continue
		}
		jobs = append(jobs, job{index: i, device: dev, driver: driver})
	}

	c.logger.Info("collection started",
		zap.Int("devices", len(jobs)), zap.Int("skipped", len(devices)-len(jobs)),
		zap.Any("vendors", c.registry.Vendors()),
		zap.Int("max_concurrent", c.maxConcurrent))

	results := make([]domain.DeviceResult, len(jobs))
	sem := make(chan struct{}, c.maxConcurrent)
	var wg sync.WaitGroup

	for i, j := range jobs {
		sem <- struct{}{}
		wg.Add(1)
		go func(slot int, j job) {
			defer wg.Done()
			defer func() { <-sem }()
			results[slot] = c.collectDevice(ctx, j)
		}(i, j)
	}
	wg.Wait()

	for _, res := range results {
		snapshot.Add(res)
	}

	took := time.Since(start)
	c.metrics.ObserveSnapshot(snapshot, took)

	sum := snapshot.Summary()
	c.logger.Info("collection finished",
		zap.Int("devices", sum.Devices), zap.Int("failed", sum.Failed),
		zap.Int("neighbors", sum.Neighbors), zap.Duration("duration", took))
	return snapshot
}

// collectDevice runs preflight, fetch and extraction for one device
func (c *Collector) collectDevice(ctx context.Context, j job) domain.DeviceResult {
	start := time.Now()
	dev := j.device
	log := c.logger.With(zap.String("host", dev.Hostname), zap.String("vendor", string(dev.Vendor)))

	if c.deviceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deviceTimeout)
		defer cancel()
	}

	var res domain.DeviceResult
	records, err := c.poll(ctx, j)
	if err != nil {
		res = domain.Failed(dev, err)
		log.Warn("device failed",
			zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
	} else {
		res = domain.OK(dev, records)
		log.Debug("device collected", zap.Int("neighbors", len(records)))
	}
	res.Duration = time.Since(start)

	c.metrics.ObserveDevice(res)
	return res
}

func (c *Collector) poll(ctx context.Context, j job) ([]domain.NeighborRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewConnectivityError("collection cancelled", err)
	}
	if c.prober != nil {
		if err := preflight.Check(ctx, c.prober, j.device); err != nil {
			return nil, err
		}
	}
	return j.driver.Neighbors(ctx, j.device)
}
