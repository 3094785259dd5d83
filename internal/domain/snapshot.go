package domain

import "time"

// DateLayout is the layout used for dated snapshot names
const DateLayout = "2006-01-02"

// Snapshot is one collection run over an inventory
type Snapshot struct {
	ID      int64          `json:"id,omitempty" yaml:"id,omitempty"`
	TakenAt time.Time      `json:"taken_at" yaml:"taken_at"`
	Devices []DeviceResult `json:"devices" yaml:"devices"`
}

// SnapshotSummary is the list view of a stored snapshot
type SnapshotSummary struct {
	ID        int64     `json:"id"`
	TakenAt   time.Time `json:"taken_at"`
	Devices   int       `json:"devices"`
	Failed    int       `json:"failed"`
	Neighbors int       `json:"neighbors"`
}

// NewSnapshot creates an empty snapshot stamped with the current time
func NewSnapshot() *Snapshot {
	return &Snapshot{TakenAt: time.Now(), Devices: []DeviceResult{}}
}

// Add appends a device result. A hostname already present is replaced in
// place so hostnames stay unique and keep their first inventory position.
func (s *Snapshot) Add(result DeviceResult) {
	for i := range s.Devices {
		if s.Devices[i].Hostname == result.Hostname {
			s.Devices[i] = result
			return
		}
	}
	s.Devices = append(s.Devices, result)
}

// Device returns the result for a hostname
func (s *Snapshot) Device(hostname string) (*DeviceResult, bool) {
	for i := range s.Devices {
		if s.Devices[i].Hostname == hostname {
			return &s.Devices[i], true
		}
	}
	return nil, false
}

// NeighborSets returns the hostname to neighbor-sequence mapping for every
// device that was collected successfully
func (s *Snapshot) NeighborSets() DeviceNeighborSet {
	sets := make(DeviceNeighborSet, len(s.Devices))
	for _, d := range s.Devices {
		if d.Succeeded() {
			sets[d.Hostname] = d.Neighbors
		}
	}
	return sets
}

// Summary counts devices, failures and neighbor records
func (s *Snapshot) Summary() SnapshotSummary {
	sum := SnapshotSummary{
		ID:        s.ID,
		TakenAt:   s.TakenAt,
		Devices:   len(s.Devices),
		Neighbors: s.NeighborSets().Count(),
	}
	for _, d := range s.Devices {
		if !d.Succeeded() {
			sum.Failed++
		}
	}
	return sum
}

// Date returns the snapshot's calendar date in local time
func (s *Snapshot) Date() string {
	return s.TakenAt.Format(DateLayout)
}

// DeviceHistoryEntry is one device's result within a stored snapshot
type DeviceHistoryEntry struct {
	SnapshotID int64        `json:"snapshot_id"`
	TakenAt    time.Time    `json:"taken_at"`
	Result     DeviceResult `json:"result"`
}
