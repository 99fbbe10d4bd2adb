package property

// Global is one process-wide override: driver.property=value.
type Global struct {
	Driver   string
	Property string
	Value    string
}

// Globals is the override table applied to every new instance whose class
// name or alias matches Driver. Entries are applied in insertion order, so a
// later entry for the same property wins.
type Globals struct {
	entries []Global
}

// NewGlobals returns an empty override table.
func NewGlobals() *Globals {
	return &Globals{}
}

// Add appends an override.
func (g *Globals) Add(driver, prop, value string) {
	g.entries = append(g.entries, Global{Driver: driver, Property: prop, Value: value})
}

// Entries returns a copy of the table.
func (g *Globals) Entries() []Global {
	out := make([]Global, len(g.entries))
	copy(out, g.entries)
	return out
}

// Len returns the number of overrides.
func (g *Globals) Len() int { return len(g.entries) }
