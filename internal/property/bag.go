package property

import (
	"fmt"
	"reflect"
)

// Bag holds the property values of one instance.
//
// It resolves names against the device class descriptors first and the bus
// class descriptors second. A Bag is not safe for concurrent use.
type Bag struct {
	dev      []Descriptor
	bus      []Descriptor
	values   map[string]any
	released bool
}

// NewBag creates a Bag for an instance of a class declaring dev, sitting on a
// bus whose class declares bus. No values are applied yet.
func NewBag(dev, bus []Descriptor) *Bag {
	return &Bag{
		dev:    dev,
		bus:    bus,
		values: make(map[string]any, len(dev)+len(bus)),
	}
}

// DeviceProps returns the device class descriptors.
func (b *Bag) DeviceProps() []Descriptor { return b.dev }

// BusProps returns the bus class descriptors.
func (b *Bag) BusProps() []Descriptor { return b.bus }

// ApplyDefaults stores every declared default, device descriptors first and
// then bus descriptors, so a bus default overrides a device default of the
// same name.
func (b *Bag) ApplyDefaults() {
	for _, list := range [][]Descriptor{b.dev, b.bus} {
		for _, d := range list {
			if d.Default != nil {
				b.store(d, d.Default)
			} else {
				b.store(d, d.Type.Zero())
			}
		}
	}
}

// ApplyGlobals parses every global override whose driver matches one of
// names (typically the class name and its alias), in table order.
func (b *Bag) ApplyGlobals(g *Globals, names ...string) error {
	if g == nil {
		return nil
	}
	for _, e := range g.entries {
		if !matches(e.Driver, names) {
			continue
		}
		if err := b.Parse(e.Property, e.Value); err != nil {
			return fmt.Errorf("global %s.%s=%s: %w", e.Driver, e.Property, e.Value, err)
		}
	}
	return nil
}

func matches(driver string, names []string) bool {
	for _, n := range names {
		if n != "" && n == driver {
			return true
		}
	}
	return false
}

// lookup resolves name among device then bus descriptors.
func (b *Bag) lookup(name string) (Descriptor, bool) {
	for _, list := range [][]Descriptor{b.dev, b.bus} {
		for _, d := range list {
			if d.Name == name {
				return d, true
			}
		}
	}
	return Descriptor{}, false
}

// Has reports whether name resolves to a descriptor.
func (b *Bag) Has(name string) bool {
	_, ok := b.lookup(name)
	return ok
}

// Parse sets name from its string form using the type's parser.
//
// Returns ErrUnknownProperty, ErrNotSettable or an error wrapping ErrParse.
func (b *Bag) Parse(name, value string) error {
	d, ok := b.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	p, ok := d.Type.(Parser)
	if !ok {
		return fmt.Errorf("%w: %q has type %s", ErrNotSettable, name, d.Type.Name())
	}
	v, err := p.Parse(value)
	if err != nil {
		return fmt.Errorf("property %q: %w", name, err)
	}
	b.store(d, v)
	return nil
}

// Set stores a typed value. The dynamic type of v must match the type's
// Zero value; Pointer properties accept anything. Types that own resources
// acquire them here exactly as Parse would.
func (b *Bag) Set(name string, v any) error {
	d, ok := b.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	if zero := d.Type.Zero(); zero != nil && reflect.TypeOf(zero) != reflect.TypeOf(v) {
		return fmt.Errorf("%w: %q wants %T, got %T", ErrTypeMismatch, name, zero, v)
	}
	if a, ok := d.Type.(Acquirer); ok {
		var err error
		if v, err = a.Acquire(v); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
	}
	b.store(d, v)
	return nil
}

// store replaces the current value, releasing the old one first.
func (b *Bag) store(d Descriptor, v any) {
	if old, ok := b.values[d.Name]; ok {
		if r, ok := d.Type.(Releaser); ok {
			r.Release(old)
		}
	}
	b.values[d.Name] = v
}

// Get returns the current value of name.
func (b *Bag) Get(name string) (any, error) {
	d, ok := b.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	if v, ok := b.values[name]; ok {
		return v, nil
	}
	return d.Type.Zero(), nil
}

// Format renders the current value of name for display.
func (b *Bag) Format(name string) (string, error) {
	d, ok := b.lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	f, ok := d.Type.(Formatter)
	if !ok {
		return "", fmt.Errorf("%w: %q has no display form", ErrNotSettable, name)
	}
	v, _ := b.Get(name)
	return f.Format(v), nil
}

// Release runs every release hook once. Later calls do nothing.
func (b *Bag) Release() {
	if b.released {
		return
	}
	b.released = true
	for _, list := range [][]Descriptor{b.dev, b.bus} {
		for _, d := range list {
			r, ok := d.Type.(Releaser)
			if !ok {
				continue
			}
			if v, ok := b.values[d.Name]; ok {
				r.Release(v)
				delete(b.values, d.Name)
			}
		}
	}
}

// Value returns the value of name as T.
func Value[T any](b *Bag, name string) (T, error) {
	var zero T
	v, err := b.Get(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, name, v)
	}
	return t, nil
}
