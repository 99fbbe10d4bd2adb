package vmstate

// Flags select how Walk interprets a field.
type Flags uint32

const (
	// Array marks a fixed-length array of Num elements.
	Array Flags = 1 << iota
	// VArrayInt32 reads the element count from the int32 field named NumField.
	VArrayInt32
	// VArrayUint16 reads the element count from the uint16 field named NumField.
	VArrayUint16
	// Pointer dereferences the accessor result, then skips Start elements.
	Pointer
	// ArrayOfPointer dereferences every element individually.
	ArrayOfPointer
	// Buffer dumps Size bytes.
	Buffer
	// VBuffer dumps a byte count read from the int32 field named SizeField.
	VBuffer
	// Multiply scales a VBuffer count by Size.
	Multiply
	// Struct recurses into Sub.
	Struct
	// Queue renders each element with Custom.
	Queue
	// Bitfield reduces the scalar to BitMask != 0, shown under BitName.
	Bitfield
)

// Has reports whether all bits of o are set in f.
func (f Flags) Has(o Flags) bool { return f&o == o }

// Any reports whether any bit of o is set in f.
func (f Flags) Any(o Flags) bool { return f&o != 0 }

// Description declares the persisted state of one device class.
type Description struct {
	Name      string
	VersionID int

	// MinimumVersionID is the oldest version a stored image may carry.
	MinimumVersionID int

	Fields []Field

	// PreSave runs once per walk before any field is read, so a device can
	// normalize transient state.
	PreSave func(opaque any)
}

// Field declares one entry of a Description.
type Field struct {
	Name  string
	Flags Flags

	// Size is the element width in bytes: 1, 2, 4 or 8 for scalars, the byte
	// count for buffers, the nominal unit for Multiply.
	Size int

	// Num is the element count of an Array field.
	Num int

	// NumField names the sibling field holding a variable element count.
	NumField string

	// SizeField names the sibling field holding a VBuffer byte count.
	SizeField string

	// Start is skipped after a Pointer dereference. It counts elements, or
	// bytes for buffers.
	Start int

	// StartLabel is carried to the output node for display.
	StartLabel string

	// Get returns the field value of opaque: a scalar, a byte slice or array,
	// a struct (or pointer to one), or a slice/array/pointer of those.
	Get func(opaque any) any

	// Sub is the nested description of a Struct field.
	Sub *Description

	// Exists, if set, decides per version whether the field is present.
	Exists func(opaque any, version int) bool

	BitMask uint64
	BitName string

	// Custom renders one element of a Queue field.
	Custom func(elem any) string
}

// field returns the declared field called name.
func (d *Description) field(name string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}
