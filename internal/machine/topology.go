package machine

import (
	"fmt"
	"os"
	"strings"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
	"gopkg.in/yaml.v3"
)

// Global is one driver.property=value override.
type Global struct {
	Driver   string `yaml:"driver"`
	Property string `yaml:"property"`
	Value    string `yaml:"value"`
}

// Topology lists the user devices of a machine.
type Topology struct {
	Globals []Global          `yaml:"globals"`
	Devices []qdev.AddRequest `yaml:"devices"`
}

// Load reads and validates a topology file.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a topology document.
func Parse(data []byte) (*Topology, error) {
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every entry names what it applies to.
func (t *Topology) Validate() error {
	var errs []string
	for i, g := range t.Globals {
		if g.Driver == "" || g.Property == "" {
			errs = append(errs, fmt.Sprintf("globals[%d]: driver and property are required", i))
		}
	}
	for i, d := range t.Devices {
		if d.Driver == "" {
			errs = append(errs, fmt.Sprintf("devices[%d]: driver is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTopology, strings.Join(errs, "; "))
	}
	return nil
}

// ApplyGlobals appends the overrides to g in document order.
func (t *Topology) ApplyGlobals(g *property.Globals) {
	for _, e := range t.Globals {
		g.Add(e.Driver, e.Property, e.Value)
	}
}

// AddDevices adds the listed devices in order and stops at the first
// failure. Devices added before the failure stay in the tree.
func (t *Topology) AddDevices(m *qdev.Model) ([]*qdev.Device, error) {
	added := make([]*qdev.Device, 0, len(t.Devices))
	for i, req := range t.Devices {
		d, err := m.AddDevice(req)
		if err != nil {
			return added, fmt.Errorf("devices[%d] (%s): %w", i, req.Driver, err)
		}
		added = append(added, d)
	}
	return added, nil
}
