package vmstate

import "reflect"

// Options tune a walk.
type Options struct {
	// Full dumps whole buffers instead of the first 16 bytes.
	Full bool
}

// bufferPreview is how many bytes of a buffer are dumped unless Options.Full.
const bufferPreview = 16

// Walk evaluates desc over opaque and returns the emitted fields together with
// the total byte size of everything emitted.
//
// PreSave runs first. Fields whose Exists predicate rejects desc.VersionID
// are skipped entirely. Walk never mutates opaque itself.
func Walk(desc *Description, opaque any, opts Options) ([]*Node, int) {
	return walker{opts: opts}.walk(desc, opaque)
}

type walker struct {
	opts Options
}

func (w walker) walk(desc *Description, opaque any) ([]*Node, int) {
	if desc.PreSave != nil {
		desc.PreSave(opaque)
	}
	nodes := make([]*Node, 0, len(desc.Fields))
	total := 0
	for i := range desc.Fields {
		f := &desc.Fields[i]
		if f.Exists != nil && !f.Exists(opaque, desc.VersionID) {
			continue
		}
		node, size := w.field(desc, f, opaque)
		nodes = append(nodes, node)
		total += size
	}
	return nodes, total
}

func (w walker) field(desc *Description, f *Field, opaque any) (*Node, int) {
	if f.Get == nil {
		violate(desc.Name, f.Name, "no accessor")
	}

	name := f.Name
	if f.Flags.Any(Bitfield) {
		if f.BitName == "" {
			violate(desc.Name, f.Name, "bitfield without bit name")
		}
		name = f.BitName
	}
	node := &Node{Name: name, Start: f.StartLabel, Elems: []Value{}}

	size := f.Size
	if f.Flags.Any(VBuffer) {
		size = sibling[int32](desc, f, f.SizeField, opaque)
		if f.Flags.Any(Multiply) {
			size *= f.Size
		}
	}

	n := 1
	switch {
	case f.Flags.Any(Array):
		n = f.Num
		node.Array = true
	case f.Flags.Any(VArrayInt32):
		n = sibling[int32](desc, f, f.NumField, opaque)
		node.Array = true
	case f.Flags.Any(VArrayUint16):
		n = sibling[uint16](desc, f, f.NumField, opaque)
		node.Array = true
	}
	if n < 0 || size < 0 {
		violate(desc.Name, f.Name, "negative count or size")
	}

	v := reflect.ValueOf(f.Get(opaque))
	if f.Flags.Any(Pointer) {
		v = deref(desc, f, v)
		if f.Start > 0 {
			v = skip(desc, f, v, f.Start)
		}
	}

	total, real := 0, 0
	for i := 0; i < n; i++ {
		e := v
		if node.Array {
			e = index(desc, f, v, i)
		}
		if f.Flags.Any(ArrayOfPointer) {
			e = deref(desc, f, e)
		}
		var val Value
		val, real = w.elem(desc, f, e, size)
		node.Elems = append(node.Elems, val)
		total += real
	}
	node.Size = real
	return node, total
}

func (w walker) elem(desc *Description, f *Field, e reflect.Value, size int) (Value, int) {
	switch {
	case f.Flags.Any(Struct):
		if f.Sub == nil {
			violate(desc.Name, f.Name, "struct field without nested description")
		}
		nodes, sz := w.walk(f.Sub, structOpaque(desc, f, e))
		return Struct{Fields: nodes}, sz

	case f.Flags.Any(Buffer | VBuffer):
		dump := size
		if !w.opts.Full && dump > bufferPreview {
			dump = bufferPreview
		}
		return Buffer{Data: bytesOf(desc, f, e, size, dump), Truncated: dump < size}, size

	case f.Flags.Any(Queue):
		if f.Custom == nil {
			violate(desc.Name, f.Name, "queue field without printer")
		}
		var arg any
		if e.IsValid() {
			arg = e.Interface()
		}
		return Text(f.Custom(arg)), size
	}

	bits := scalar(desc, f, e, size)
	if f.Flags.Any(Bitfield) {
		return Bool(bits&f.BitMask != 0), size
	}
	return Int(bits), size
}

// sibling reads a count stored in another field of the same description.
func sibling[T int32 | uint16](desc *Description, f *Field, name string, opaque any) int {
	sib, ok := desc.field(name)
	if !ok || sib.Get == nil {
		violate(desc.Name, f.Name, "count field %q not declared", name)
	}
	raw := sib.Get(opaque)
	v, ok := raw.(T)
	if !ok {
		var want T
		violate(desc.Name, f.Name, "count field %q holds %T, want %T", name, raw, want)
	}
	return int(v)
}

func deref(desc *Description, f *Field, v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			violate(desc.Name, f.Name, "nil pointer")
		}
		return v.Elem()
	case reflect.Slice:
		return v
	}
	violate(desc.Name, f.Name, "cannot dereference %s", kindOf(v))
	return v
}

func skip(desc *Description, f *Field, v reflect.Value, start int) reflect.Value {
	if (v.Kind() != reflect.Slice && !(v.Kind() == reflect.Array && v.CanAddr())) || start > v.Len() {
		violate(desc.Name, f.Name, "cannot offset %s by %d", kindOf(v), start)
	}
	return v.Slice(start, v.Len())
}

func index(desc *Description, f *Field, v reflect.Value, i int) reflect.Value {
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		violate(desc.Name, f.Name, "array accessor returns %s", kindOf(v))
	}
	if i >= v.Len() {
		violate(desc.Name, f.Name, "element %d out of range (len %d)", i, v.Len())
	}
	return v.Index(i)
}

// structOpaque hands nested accessors a pointer to the struct element.
func structOpaque(desc *Description, f *Field, e reflect.Value) any {
	switch {
	case e.Kind() == reflect.Pointer:
		if e.IsNil() {
			violate(desc.Name, f.Name, "nil struct pointer")
		}
		return e.Interface()
	case e.Kind() != reflect.Struct:
		violate(desc.Name, f.Name, "struct accessor returns %s", kindOf(e))
	case e.CanAddr():
		return e.Addr().Interface()
	}
	p := reflect.New(e.Type())
	p.Elem().Set(e)
	return p.Interface()
}

func bytesOf(desc *Description, f *Field, e reflect.Value, size, dump int) []byte {
	if e.Kind() == reflect.Pointer && !e.IsNil() {
		e = e.Elem()
	}
	if (e.Kind() != reflect.Slice && e.Kind() != reflect.Array) || e.Type().Elem().Kind() != reflect.Uint8 {
		violate(desc.Name, f.Name, "buffer accessor returns %s", kindOf(e))
	}
	if e.Len() < size {
		violate(desc.Name, f.Name, "buffer holds %d bytes, want %d", e.Len(), size)
	}
	out := make([]byte, dump)
	for i := range out {
		out[i] = byte(e.Index(i).Uint())
	}
	return out
}

func scalar(desc *Description, f *Field, e reflect.Value, size int) uint64 {
	switch size {
	case 1, 2, 4, 8:
	default:
		violate(desc.Name, f.Name, "unsupported scalar width %d", size)
	}
	if !e.IsValid() || int(e.Type().Size()) != size {
		violate(desc.Name, f.Name, "accessor returns %s, want %d-byte scalar", kindOf(e), size)
	}
	switch e.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return e.Uint()
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		u := uint64(e.Int())
		if size < 8 {
			u &= 1<<(uint(size)*8) - 1
		}
		return u
	case reflect.Bool:
		if e.Bool() {
			return 1
		}
		return 0
	}
	violate(desc.Name, f.Name, "accessor returns %s, want integer", kindOf(e))
	return 0
}

func kindOf(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}
