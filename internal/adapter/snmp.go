package adapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"nbrsnap/internal/domain"
	"nbrsnap/internal/extract"
)

// SNMPConfig configures the LLDP-MIB client
type SNMPConfig struct {
	Community string
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// SNMPClient collects LLDP neighbors by walking LLDP-MIB over SNMP v2c
type SNMPClient struct {
	config SNMPConfig
}

// NewSNMPClient creates an SNMP client
func NewSNMPClient(cfg SNMPConfig) *SNMPClient {
	if cfg.Community == "" {
		cfg.Community = "public"
	}
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &SNMPClient{config: cfg}
}

// Vendor implements DeviceClient
func (c *SNMPClient) Vendor() domain.Vendor {
	return domain.VendorLLDPSNMP
}

// FetchNeighbors implements DeviceClient
func (c *SNMPClient) FetchNeighbors(ctx context.Context, dev domain.Device) (*domain.RawResponse, error) {
	client := &gosnmp.GoSNMP{
		Target:    dev.Address(),
		Port:      c.config.Port,
		Version:   gosnmp.Version2c,
		Community: c.config.Community,
		Timeout:   c.config.Timeout,
		Retries:   c.config.Retries,
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return nil, domain.NewConnectivityError("snmp connect "+dev.Address(), err)
	}
	defer client.Conn.Close()

	raw := &domain.RawResponse{OK: true}
	for _, oid := range extract.LLDPWalkOIDs {
		pdus, err := client.BulkWalkAll(oid)
		if err != nil {
			return nil, domain.NewConnectivityError(fmt.Sprintf("snmp walk %s", oid), err)
		}
		for _, pdu := range pdus {
			raw.Walk = append(raw.Walk, domain.Varbind{OID: pdu.Name, Value: pduString(pdu)})
		}
	}
	return raw, nil
}

// pduString renders a varbind value. Octet strings that are not printable,
// such as MAC-address port ids, are rendered as colon-separated hex.
func pduString(pdu gosnmp.SnmpPDU) string {
	switch pdu.Type {
	case gosnmp.OctetString:
		b, ok := pdu.Value.([]byte)
		if !ok {
			return fmt.Sprint(pdu.Value)
		}
		return octetString(b)
	case gosnmp.ObjectIdentifier, gosnmp.IPAddress:
		return fmt.Sprint(pdu.Value)
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return ""
	default:
		return gosnmp.ToBigInt(pdu.Value).String()
	}
}

func octetString(b []byte) string {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			parts := make([]string, len(b))
			for i, x := range b {
				parts[i] = fmt.Sprintf("%02x", x)
			}
			return strings.Join(parts, ":")
		}
	}
	return strings.TrimSpace(string(b))
}
