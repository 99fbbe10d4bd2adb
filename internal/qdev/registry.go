package qdev

import (
	"fmt"
	"io"
	"iter"

	"github.com/nerrad567/devmodel/internal/property"
)

// Registry is the catalogue of device classes.
//
// Registrations accumulate in order and are never removed. Several classes
// may share a name; Find returns the first registered match.
type Registry struct {
	classes []*DeviceClass
	logger  Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: noopLogger{}}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register adds a class. A malformed class or registering the same class
// twice is a contract violation.
func (r *Registry) Register(cls *DeviceClass) {
	switch {
	case cls == nil:
		violate("register", "nil class")
	case cls.Name == "":
		violate("register", "class without name")
	case cls.Bus == nil:
		violate("register", "class %q has no bus class", cls.Name)
	case cls.Driver == nil:
		violate("register", "class %q has no driver", cls.Name)
	}
	for _, c := range r.classes {
		if c == cls {
			violate("register", "class %q registered twice", cls.Name)
		}
	}
	r.classes = append(r.classes, cls)
	r.logger.Debug("device class registered", "name", cls.Name, "bus", cls.Bus.Name)
}

// Find returns the first class compatible with bus (nil matches any bus)
// whose name is name, or failing that whose alias is name. It returns nil
// when neither pass matches.
func (r *Registry) Find(bus *BusClass, name string) *DeviceClass {
	for _, c := range r.classes {
		if bus != nil && c.Bus != bus {
			continue
		}
		if c.Name == name {
			return c
		}
	}
	for _, c := range r.classes {
		if bus != nil && c.Bus != bus {
			continue
		}
		if c.Alias != "" && c.Alias == name {
			return c
		}
	}
	return nil
}

// All yields every registered class in registration order. The sequence can
// be ranged over any number of times.
func (r *Registry) All() iter.Seq[*DeviceClass] {
	return func(yield func(*DeviceClass) bool) {
		for _, c := range r.classes {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of registered classes.
func (r *Registry) Len() int { return len(r.classes) }

// TypeInfo summarises a class for listings.
type TypeInfo struct {
	Name   string `json:"name"`
	Bus    string `json:"bus"`
	Alias  string `json:"alias,omitempty"`
	Desc   string `json:"desc,omitempty"`
	NoUser bool   `json:"no_user,omitempty"`
}

// Types lists every registered class.
func (r *Registry) Types() []TypeInfo {
	out := make([]TypeInfo, 0, len(r.classes))
	for c := range r.All() {
		out = append(out, typeInfo(c))
	}
	return out
}

func typeInfo(c *DeviceClass) TypeInfo {
	return TypeInfo{Name: c.Name, Bus: c.Bus.Name, Alias: c.Alias, Desc: c.Desc, NoUser: c.NoUser}
}

func (t TypeInfo) String() string {
	s := fmt.Sprintf("name %q, bus %s", t.Name, t.Bus)
	if t.Alias != "" {
		s += fmt.Sprintf(", alias %q", t.Alias)
	}
	if t.Desc != "" {
		s += fmt.Sprintf(", desc %q", t.Desc)
	}
	if t.NoUser {
		s += ", no-user"
	}
	return s
}

// FprintTypes writes one line per registered class.
func (r *Registry) FprintTypes(w io.Writer) {
	for _, t := range r.Types() {
		fmt.Fprintln(w, t)
	}
}

// FprintDeviceHelp lists the settable properties of driver as
// driver.prop=type. With driver "?" it lists the user-creatable classes
// instead.
func (r *Registry) FprintDeviceHelp(w io.Writer, driver string) error {
	if driver == "?" {
		for c := range r.All() {
			if !c.NoUser {
				fmt.Fprintln(w, typeInfo(c))
			}
		}
		return nil
	}
	c := r.Find(nil, driver)
	if c == nil {
		return fmt.Errorf("%w: %q", ErrUnknownType, driver)
	}
	for _, p := range c.Props {
		if !property.Settable(p.Type) {
			continue
		}
		fmt.Fprintf(w, "%s.%s=%s\n", c.Name, p.Name, p.Type.Name())
	}
	return nil
}
