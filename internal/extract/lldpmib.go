package extract

import (
	"sort"
	"strconv"
	"strings"

	"nbrsnap/internal/domain"
)

// LLDP-MIB columns walked by the SNMP client
const (
	OIDRemPortID   = "1.0.8802.1.1.2.1.4.1.1.7"
	OIDRemPortDesc = "1.0.8802.1.1.2.1.4.1.1.8"
	OIDRemSysName  = "1.0.8802.1.1.2.1.4.1.1.9"
	OIDLocPortID   = "1.0.8802.1.1.2.1.3.7.1.3"
	OIDLocPortDesc = "1.0.8802.1.1.2.1.3.7.1.4"
)

// LLDPWalkOIDs lists every column LLDPMIB reads
var LLDPWalkOIDs = []string{OIDRemPortID, OIDRemPortDesc, OIDRemSysName, OIDLocPortID, OIDLocPortDesc}

// remKey indexes lldpRemTable: timeMark.localPortNum.index
type remKey struct {
	timeMark  uint64
	localPort uint64
	index     uint64
}

type remEntry struct {
	portID   string
	portDesc string
	sysName  string
}

type locEntry struct {
	portID   string
	portDesc string
}

// LLDPMIB joins the LLDP-MIB remote table with the local port table.
// Records are ordered by local port number, then remote index.
func LLDPMIB(raw *domain.RawResponse) ([]domain.NeighborRecord, error) {
	if raw == nil {
		return nil, domain.NewParseError("no response")
	}

	remote := make(map[remKey]*remEntry)
	local := make(map[uint64]*locEntry)

	for _, vb := range raw.Walk {
		oid := strings.TrimPrefix(vb.OID, ".")
		switch {
		case strings.HasPrefix(oid, OIDRemPortID+"."):
			if key, ok := parseRemIndex(oid, OIDRemPortID); ok {
				remoteEntry(remote, key).portID = vb.Value
			}
		case strings.HasPrefix(oid, OIDRemPortDesc+"."):
			if key, ok := parseRemIndex(oid, OIDRemPortDesc); ok {
				remoteEntry(remote, key).portDesc = vb.Value
			}
		case strings.HasPrefix(oid, OIDRemSysName+"."):
			if key, ok := parseRemIndex(oid, OIDRemSysName); ok {
				remoteEntry(remote, key).sysName = vb.Value
			}
		case strings.HasPrefix(oid, OIDLocPortID+"."):
			if port, err := strconv.ParseUint(strings.TrimPrefix(oid, OIDLocPortID+"."), 10, 64); err == nil {
				localEntry(local, port).portID = vb.Value
			}
		case strings.HasPrefix(oid, OIDLocPortDesc+"."):
			if port, err := strconv.ParseUint(strings.TrimPrefix(oid, OIDLocPortDesc+"."), 10, 64); err == nil {
				localEntry(local, port).portDesc = vb.Value
			}
		}
	}

	keys := make([]remKey, 0, len(remote))
	for k := range remote {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.localPort != b.localPort {
			return a.localPort < b.localPort
		}
		if a.index != b.index {
			return a.index < b.index
		}
		return a.timeMark < b.timeMark
	})

	records := make([]domain.NeighborRecord, 0, len(keys))
	for _, k := range keys {
		rem := remote[k]
		rec := domain.NeighborRecord{
			NeighborInterface: firstNonEmpty(rem.portID, rem.portDesc),
			Neighbor:          rem.sysName,
		}
		if loc, ok := local[k.localPort]; ok {
			rec.LocalInterface = firstNonEmpty(loc.portDesc, loc.portID)
		}
		if !rec.Complete() {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRemIndex(oid, column string) (remKey, bool) {
	parts := strings.Split(strings.TrimPrefix(oid, column+"."), ".")
	if len(parts) != 3 {
		return remKey{}, false
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return remKey{}, false
		}
		nums[i] = n
	}
	return remKey{timeMark: nums[0], localPort: nums[1], index: nums[2]}, true
}

func remoteEntry(m map[remKey]*remEntry, k remKey) *remEntry {
	e, ok := m[k]
	if !ok {
		e = &remEntry{}
		m[k] = e
	}
	return e
}

func localEntry(m map[uint64]*locEntry, port uint64) *locEntry {
	e, ok := m[port]
	if !ok {
		e = &locEntry{}
		m[port] = e
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
