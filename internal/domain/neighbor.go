package domain

// NeighborRecord is one directly connected neighbor as seen from a device
type NeighborRecord struct {
	NeighborInterface string `json:"neighbor_interface" yaml:"neighbor_interface"`
	LocalInterface    string `json:"local_interface" yaml:"local_interface"`
	Neighbor          string `json:"neighbor" yaml:"neighbor"`
}

// Complete reports whether all three fields are populated
func (r NeighborRecord) Complete() bool {
	return r.NeighborInterface != "" && r.LocalInterface != "" && r.Neighbor != ""
}

// DeviceNeighborSet maps a device hostname to its ordered neighbor sequence
type DeviceNeighborSet map[string][]NeighborRecord

// Count returns the total number of neighbor records across all devices
func (s DeviceNeighborSet) Count() int {
	total := 0
	for _, records := range s {
		total += len(records)
	}
	return total
}
