package inventory

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"nbrsnap/internal/domain"
)

// Host variables read from an Ansible inventory
const (
	varAnsibleHost = "ansible_host"
	varNetworkOS   = "ansible_network_os"
	varOS          = "os"
)

// AnsibleCodec reads Ansible YAML inventories
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// Parse walks the group tree in document order. Group vars are inherited by
// member hosts and child groups; host vars win. A host listed in several
// groups keeps its first position.
func (c *AnsibleCodec) Parse(r io.Reader) ([]domain.Device, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Device{}, nil
		}
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}
	if len(doc.Content) == 0 {
		return []domain.Device{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse Ansible inventory: top level is not a mapping")
	}

	w := &inventoryWalker{index: make(map[string]int)}
	for _, group := range pairs(root) {
		w.walkGroup(group.value, nil)
	}
	return w.devices, nil
}

type keyValue struct {
	key   string
	value *yaml.Node
}

// pairs lists a mapping node's entries in document order
func pairs(n *yaml.Node) []keyValue {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]keyValue, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, keyValue{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return out
}

// scalarVars collects the string-valued entries of a vars mapping
func scalarVars(n *yaml.Node, inherited map[string]string) map[string]string {
	vars := make(map[string]string, len(inherited))
	for k, v := range inherited {
		vars[k] = v
	}
	for _, kv := range pairs(n) {
		if kv.value.Kind == yaml.ScalarNode {
			vars[kv.key] = kv.value.Value
		}
	}
	return vars
}

type inventoryWalker struct {
	devices []domain.Device
	index   map[string]int
}

func (w *inventoryWalker) walkGroup(group *yaml.Node, inherited map[string]string) {
	var hosts, children, vars *yaml.Node
	for _, kv := range pairs(group) {
		switch kv.key {
		case "hosts":
			hosts = kv.value
		case "children":
			children = kv.value
		case "vars":
			vars = kv.value
		}
	}

	groupVars := scalarVars(vars, inherited)
	for _, h := range pairs(hosts) {
		w.addHost(h.key, scalarVars(h.value, groupVars))
	}
	for _, child := range pairs(children) {
		w.walkGroup(child.value, groupVars)
	}
}

func (w *inventoryWalker) addHost(name string, vars map[string]string) {
	dev := domain.Device{Hostname: name, IP: vars[varAnsibleHost]}
	os := vars[varNetworkOS]
	if os == "" {
		os = vars[varOS]
	}
	dev.Vendor = domain.ParseVendor(os)

	if i, seen := w.index[name]; seen {
		existing := &w.devices[i]
		if existing.IP == "" {
			existing.IP = dev.IP
		}
		if existing.Vendor == "" {
			existing.Vendor = dev.Vendor
		}
		return
	}
	w.index[name] = len(w.devices)
	w.devices = append(w.devices, dev)
}
