package domain

import "strings"

// Vendor is the inventory tag selecting a device client and extractor
type Vendor string

const (
	VendorNXOS     Vendor = "nxos"
	VendorIOS      Vendor = "ios"
	VendorEOS      Vendor = "eos"
	VendorLLDPSNMP Vendor = "lldp-snmp"
)

// ParseVendor normalizes an inventory tag. Unknown tags are returned as-is so
// the collector can skip them.
func ParseVendor(s string) Vendor {
	s = strings.ToLower(strings.TrimSpace(s))
	// Collection-qualified names such as cisco.nxos.nxos
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		s = s[idx+1:]
	}
	return Vendor(s)
}

// Known reports whether the vendor tag is one nbrsnap ships a driver for
func (v Vendor) Known() bool {
	switch v {
	case VendorNXOS, VendorIOS, VendorEOS, VendorLLDPSNMP:
		return true
	default:
		return false
	}
}

// Device is one inventory entry
type Device struct {
	Hostname string `json:"hostname" yaml:"hostname"`
	IP       string `json:"ip" yaml:"ip"`
	Vendor   Vendor `json:"os" yaml:"os"`
}

// Address returns the management address, falling back to the hostname
func (d Device) Address() string {
	if d.IP != "" {
		return d.IP
	}
	return d.Hostname
}

// Varbind is one SNMP object returned by a walk
type Varbind struct {
	OID   string `json:"oid"`
	Value string `json:"value"`
}

// RawResponse is what a device client returns before extraction.
// Which fields are populated depends on the vendor family:
// structured documents arrive in Content, CLI output in Text and SNMP walks in Walk.
type RawResponse struct {
	// OK is the transport-level success flag
	OK bool
	// StatusCode and Reason describe the transport answer (HTTP status for API clients)
	StatusCode int
	Reason     string
	// Content holds the structured document, or the raw body of a failed request
	Content []byte
	// Text holds CLI command output
	Text string
	// Walk holds SNMP varbinds in walk order
	Walk []Varbind
}
