// Package preflight checks that a device's management port answers before a
// session is opened.
package preflight

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"nbrsnap/internal/domain"
)

// Prober reports whether host:port accepts TCP connections
type Prober interface {
	Reachable(ctx context.Context, host string, port int) (bool, error)
}

// ManagementPort returns the TCP port a vendor's client connects to.
// SNMP runs over UDP and is not probed.
func ManagementPort(v domain.Vendor) (int, bool) {
	switch v {
	case domain.VendorNXOS:
		return 8443, true
	case domain.VendorIOS:
		return 22, true
	case domain.VendorEOS:
		return 443, true
	default:
		return 0, false
	}
}

// Check probes the device's management port. A closed port or a failed probe
// is reported as a connectivity failure.
func Check(ctx context.Context, p Prober, dev domain.Device) error {
	port, ok := ManagementPort(dev.Vendor)
	if !ok || p == nil {
		return nil
	}
	open, err := p.Reachable(ctx, dev.Address(), port)
	if err != nil {
		return domain.NewConnectivityError(fmt.Sprintf("preflight probe of %s:%d", dev.Address(), port), err)
	}
	if !open {
		return domain.NewConnectivityError(fmt.Sprintf("management port %s:%d is not open", dev.Address(), port), nil)
	}
	return nil
}

// DialProber checks reachability with a plain TCP connect
type DialProber struct {
	Timeout time.Duration
}

// Reachable implements Prober
func (d DialProber) Reachable(ctx context.Context, host string, port int) (bool, error) {
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false, nil
	}
	conn.Close()
	return true, nil
}
