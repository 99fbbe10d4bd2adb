package vmstate

// AutoInstance asks Register to pick the next free instance id.
const AutoInstance = -1

// Entry is one registered state description bound to an instance.
type Entry struct {
	Desc   *Description
	Opaque any

	// InstanceID distinguishes several instances of one description.
	InstanceID int

	// AliasID is a legacy instance id accepted from older images, or -1.
	AliasID int

	// RequiredForVersion is the machine version up to which AliasID applies.
	RequiredForVersion int
}

// Registry holds the state entries of live instances.
type Registry struct {
	entries []*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds desc to opaque. With AutoInstance the id is one past the
// highest id already used by a description of the same name.
func (r *Registry) Register(instanceID int, desc *Description, opaque any, aliasID, requiredForVersion int) *Entry {
	if instanceID == AutoInstance {
		instanceID = r.nextInstance(desc.Name)
	}
	e := &Entry{
		Desc:               desc,
		Opaque:             opaque,
		InstanceID:         instanceID,
		AliasID:            aliasID,
		RequiredForVersion: requiredForVersion,
	}
	r.entries = append(r.entries, e)
	return e
}

func (r *Registry) nextInstance(name string) int {
	next := 0
	for _, e := range r.entries {
		if e.Desc.Name == name && e.InstanceID >= next {
			next = e.InstanceID + 1
		}
	}
	return next
}

// Unregister removes the entry binding desc to opaque. It reports whether an
// entry was found.
func (r *Registry) Unregister(desc *Description, opaque any) bool {
	for i, e := range r.entries {
		if e.Desc == desc && e.Opaque == opaque {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the entry registered for opaque.
func (r *Registry) Lookup(opaque any) (*Entry, bool) {
	for _, e := range r.entries {
		if e.Opaque == opaque {
			return e, true
		}
	}
	return nil, false
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }
