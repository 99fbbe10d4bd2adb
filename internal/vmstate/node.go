package vmstate

// Node is one emitted field.
type Node struct {
	Name  string `json:"name"`
	Start string `json:"start,omitempty"`

	// Size is the byte size of one element; for structs the recursive total.
	Size int `json:"size"`

	// Array is set when the field was an array; Elems then holds one value
	// per element.
	Array bool    `json:"array,omitempty"`
	Elems []Value `json:"elems"`
}

// Value is one element of a Node: Int, Bool, Buffer, Struct or Text.
type Value interface {
	isValue()
}

// Int is a scalar read from a 1, 2, 4 or 8 byte field.
type Int uint64

// Bool is a masked bitfield.
type Bool bool

// Buffer is a (possibly truncated) byte dump.
type Buffer struct {
	Data      []byte `json:"data"`
	Truncated bool   `json:"truncated,omitempty"`
}

// Struct holds the fields of a nested description.
type Struct struct {
	Fields []*Node `json:"fields"`
}

// Text is the output of a Queue field's custom printer.
type Text string

func (Int) isValue()    {}
func (Bool) isValue()   {}
func (Buffer) isValue() {}
func (Struct) isValue() {}
func (Text) isValue()   {}
