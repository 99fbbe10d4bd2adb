package property

import (
	"fmt"
	"sort"
)

// Reference is the value of a RefType property: the name the user gave and
// the object it resolved to.
type Reference struct {
	Name   string
	Target any
}

// NameTable is a named object table owned by another subsystem (network
// backends, VLANs, character devices). References taken by properties are
// counted so the owner can tell whether an object is still in use.
type NameTable struct {
	kind    string
	objects map[string]any
	users   map[string]int
}

// NewNameTable creates an empty table. kind is used in error messages.
func NewNameTable(kind string) *NameTable {
	return &NameTable{
		kind:    kind,
		objects: make(map[string]any),
		users:   make(map[string]int),
	}
}

// Add publishes an object under name, replacing any previous entry.
func (t *NameTable) Add(name string, obj any) {
	t.objects[name] = obj
}

// Names returns the published names in sorted order.
func (t *NameTable) Names() []string {
	names := make([]string, 0, len(t.objects))
	for name := range t.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Users returns how many live references point at name.
func (t *NameTable) Users(name string) int {
	return t.users[name]
}

func (t *NameTable) acquire(name string) (any, error) {
	obj, ok := t.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: no %s named %q", ErrUnresolvedRef, t.kind, name)
	}
	t.users[name]++
	return obj, nil
}

func (t *NameTable) release(name string) {
	if t.users[name] > 0 {
		t.users[name]--
	}
}

// RefType is a property type whose values name an entry of a NameTable.
type RefType struct {
	Kind  string
	Table *NameTable
}

// NewRefType creates a reference type resolving against table.
func NewRefType(kind string, table *NameTable) *RefType {
	return &RefType{Kind: kind, Table: table}
}

// Name implements Type.
func (r *RefType) Name() string { return r.Kind }

// Zero implements Type.
func (r *RefType) Zero() any { return Reference{} }

// Parse resolves s against the table and takes a reference on the entry.
func (r *RefType) Parse(s string) (any, error) {
	obj, err := r.Table.acquire(s)
	if err != nil {
		return nil, err
	}
	return Reference{Name: s, Target: obj}, nil
}

// Acquire takes a reference on the entry a Reference names. The target is
// re-resolved from the table, so a stale Target is never stored. The empty
// Reference is stored as is.
func (r *RefType) Acquire(v any) (any, error) {
	ref, _ := v.(Reference)
	if ref.Name == "" {
		return Reference{}, nil
	}
	return r.Parse(ref.Name)
}

// Format implements Formatter.
func (r *RefType) Format(v any) string {
	ref, _ := v.(Reference)
	if ref.Name == "" {
		return "<null>"
	}
	return ref.Name
}

// Release drops the reference taken by Parse.
func (r *RefType) Release(v any) {
	ref, _ := v.(Reference)
	if ref.Name != "" {
		r.Table.release(ref.Name)
	}
}
