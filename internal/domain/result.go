package domain

import (
	"errors"
	"time"
)

// ResultStatus is the outcome of collecting one device
type ResultStatus string

const (
	ResultOK    ResultStatus = "ok"
	ResultError ResultStatus = "error"
)

// ErrorInfo is the persisted form of a DeviceError
type ErrorInfo struct {
	Kind       ErrorKind `json:"kind" yaml:"kind"`
	Detail     string    `json:"detail" yaml:"detail"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Reason     string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	Content    string    `json:"content,omitempty" yaml:"content,omitempty"`
}

// DeviceResult is either a complete neighbor sequence or a reported failure
type DeviceResult struct {
	Hostname    string           `json:"hostname" yaml:"hostname"`
	IP          string           `json:"ip,omitempty" yaml:"ip,omitempty"`
	Vendor      Vendor           `json:"vendor" yaml:"vendor"`
	Status      ResultStatus     `json:"status" yaml:"status"`
	Neighbors   []NeighborRecord `json:"neighbors" yaml:"neighbors"`
	Error       *ErrorInfo       `json:"error,omitempty" yaml:"error,omitempty"`
	CollectedAt time.Time        `json:"collected_at" yaml:"collected_at"`
	Duration    time.Duration    `json:"duration_ns,omitempty" yaml:"duration,omitempty"`
}

// OK builds a successful result. A nil sequence is stored as empty so that
// "zero neighbors" stays distinguishable from a failure.
func OK(dev Device, neighbors []NeighborRecord) DeviceResult {
	if neighbors == nil {
		neighbors = []NeighborRecord{}
	}
	return DeviceResult{
		Hostname:    dev.Hostname,
		IP:          dev.IP,
		Vendor:      dev.Vendor,
		Status:      ResultOK,
		Neighbors:   neighbors,
		CollectedAt: time.Now(),
	}
}

// Failed builds a failed result from any error
func Failed(dev Device, err error) DeviceResult {
	return DeviceResult{
		Hostname:    dev.Hostname,
		IP:          dev.IP,
		Vendor:      dev.Vendor,
		Status:      ResultError,
		Error:       ErrorInfoFrom(err),
		CollectedAt: time.Now(),
	}
}

// ErrorInfoFrom converts an error into its persisted form
func ErrorInfoFrom(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return &ErrorInfo{
			Kind:       de.Kind,
			Detail:     de.Error(),
			StatusCode: de.StatusCode,
			Reason:     de.Reason,
			Content:    de.Content,
		}
	}
	return &ErrorInfo{Kind: ErrorKindConnectivity, Detail: err.Error()}
}

// Succeeded reports whether the device produced a neighbor sequence
func (r DeviceResult) Succeeded() bool {
	return r.Status == ResultOK
}
