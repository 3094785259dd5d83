package preflight

import (
	"context"
	"fmt"
	"strconv"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"
)

// scanFunc runs one nmap scan. Replaced in tests.
type scanFunc func(ctx context.Context, opts ...nmap.Option) (*nmap.Run, *[]string, error)

// NmapProber runs a single-port nmap scan per device
type NmapProber struct {
	timeout           time.Duration
	skipHostDiscovery bool
	logger            *zap.Logger
	scan              scanFunc
}

// NmapOption configures an NmapProber
type NmapOption func(*NmapProber)

// WithTimeout bounds one probe
func WithTimeout(d time.Duration) NmapOption {
	return func(n *NmapProber) {
		n.timeout = d
	}
}

// WithSkipHostDiscovery treats every host as up (-Pn). Network gear often
// drops ICMP, so this is on by default.
func WithSkipHostDiscovery(skip bool) NmapOption {
	return func(n *NmapProber) {
		n.skipHostDiscovery = skip
	}
}

// WithLogger sets the logger used for scan warnings
func WithLogger(l *zap.Logger) NmapOption {
	return func(n *NmapProber) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNmapProber creates a prober backed by the nmap binary
func NewNmapProber(opts ...NmapOption) *NmapProber {
	p := &NmapProber{
		timeout:           10 * time.Second,
		skipHostDiscovery: true,
		logger:            zap.NewNop(),
		scan:              runNmap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func runNmap(ctx context.Context, opts ...nmap.Option) (*nmap.Run, *[]string, error) {
	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return scanner.Run()
}

// Reachable implements Prober
func (n *NmapProber) Reachable(ctx context.Context, host string, port int) (bool, error) {
	if port < 1 || port > 65535 {
		return false, fmt.Errorf("invalid port number: %d", port)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(host),
		nmap.WithPorts(strconv.Itoa(port)),
	}
	if n.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	result, warnings, err := n.scan(ctx, opts...)
	if err != nil {
		return false, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		n.logger.Debug("nmap warnings", zap.String("host", host), zap.Strings("warnings", *warnings))
	}
	return portOpen(result, port), nil
}

// portOpen reports whether any up host in the result has the port open
func portOpen(result *nmap.Run, port int) bool {
	if result == nil {
		return false
	}
	for _, host := range result.Hosts {
		if host.Status.State != "" && host.Status.State != "up" {
			continue
		}
		for _, p := range host.Ports {
			if int(p.ID) == port && p.State.State == "open" {
				return true
			}
		}
	}
	return false
}
