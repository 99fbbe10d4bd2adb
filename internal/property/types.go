package property

import (
	"fmt"
	"strconv"
	"strings"
)

// Type describes the value type of a property.
//
// Parsing, formatting and releasing are optional capabilities expressed as
// separate interfaces; a type without a Parser cannot be set from a string
// and is hidden from device help, a type without a Formatter is hidden from
// tree dumps.
type Type interface {
	// Name is the type name shown in device help (e.g. "uint32", "macaddr").
	Name() string

	// Zero returns the value a property holds when no default is declared.
	// Its dynamic Go type is the only type Bag.Set accepts.
	Zero() any
}

// Parser converts a user-supplied string into a property value.
type Parser interface {
	Parse(s string) (any, error)
}

// Formatter renders a property value for display.
type Formatter interface {
	Format(v any) string
}

// Releaser frees resources owned by a property value.
type Releaser interface {
	Release(v any)
}

// Acquirer takes the resources a typed value needs before it is stored with
// Bag.Set, balancing the Releaser. It may return a normalised value.
type Acquirer interface {
	Acquire(v any) (any, error)
}

// Descriptor declares one property of a device or bus class.
type Descriptor struct {
	Name    string
	Type    Type
	Default any // nil means Type.Zero()
}

// Built-in scalar types.
var (
	Uint8  Type = uintType{name: "uint8", bits: 8}
	Uint16 Type = uintType{name: "uint16", bits: 16}
	Uint32 Type = uintType{name: "uint32", bits: 32}
	Uint64 Type = uintType{name: "uint64", bits: 64}
	Hex8   Type = uintType{name: "hex8", bits: 8, hex: true}
	Hex32  Type = uintType{name: "hex32", bits: 32, hex: true}
	Hex64  Type = uintType{name: "hex64", bits: 64, hex: true}
	Int32  Type = int32Type{}
	Bool   Type = boolType{}
	String Type = stringType{}
	MAC    Type = macType{}

	// Pointer holds an opaque Go value wired by board code. It has no
	// parser and no formatter.
	Pointer Type = pointerType{}
)

// uintType handles the unsigned integer family. Values are stored with the
// Go type matching bits (uint8, uint16, uint32, uint64).
type uintType struct {
	name string
	bits int
	hex  bool
}

func (t uintType) Name() string { return t.name }

func (t uintType) Zero() any { return t.narrow(0) }

func (t uintType) Parse(s string) (any, error) {
	n, err := strconv.ParseUint(s, 0, t.bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid %s", ErrParse, s, t.name)
	}
	return t.narrow(n), nil
}

func (t uintType) Format(v any) string {
	n := toUint64(v)
	if t.hex {
		return fmt.Sprintf("0x%x", n)
	}
	return strconv.FormatUint(n, 10)
}

func (t uintType) narrow(n uint64) any {
	switch t.bits {
	case 8:
		return uint8(n)
	case 16:
		return uint16(n)
	case 32:
		return uint32(n)
	default:
		return n
	}
}

func toUint64(v any) uint64 {
	switch n := v.(type) {
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	default:
		return 0
	}
}

type int32Type struct{}

func (int32Type) Name() string { return "int32" }
func (int32Type) Zero() any    { return int32(0) }

func (int32Type) Parse(s string) (any, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid int32", ErrParse, s)
	}
	return int32(n), nil
}

func (int32Type) Format(v any) string {
	n, _ := v.(int32)
	return strconv.FormatInt(int64(n), 10)
}

type boolType struct{}

func (boolType) Name() string { return "bool" }
func (boolType) Zero() any    { return false }

func (boolType) Parse(s string) (any, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return nil, fmt.Errorf("%w: %q is not on/off", ErrParse, s)
}

func (boolType) Format(v any) string {
	if b, _ := v.(bool); b {
		return "on"
	}
	return "off"
}

type stringType struct{}

func (stringType) Name() string { return "string" }
func (stringType) Zero() any    { return "" }

func (stringType) Parse(s string) (any, error) { return s, nil }

func (stringType) Format(v any) string {
	s, _ := v.(string)
	if s == "" {
		return "<null>"
	}
	return strconv.Quote(s)
}

// MACAddr is a 48-bit Ethernet address.
type MACAddr [6]byte

// String formats the address as xx:xx:xx:xx:xx:xx.
func (m MACAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// macAddrLen is the length of "xx:xx:xx:xx:xx:xx".
const macAddrLen = 17

// ParseMAC parses xx:xx:xx:xx:xx:xx (':' or '-' separators).
func ParseMAC(s string) (MACAddr, error) {
	var mac MACAddr
	if len(s) != macAddrLen {
		return mac, fmt.Errorf("%w: %q is not a MAC address", ErrParse, s)
	}
	for i := range mac {
		pos := i * 3
		if i > 0 && s[pos-1] != ':' && s[pos-1] != '-' {
			return mac, fmt.Errorf("%w: %q is not a MAC address", ErrParse, s)
		}
		b, err := strconv.ParseUint(s[pos:pos+2], 16, 8)
		if err != nil {
			return mac, fmt.Errorf("%w: %q is not a MAC address", ErrParse, s)
		}
		mac[i] = byte(b)
	}
	return mac, nil
}

type macType struct{}

func (macType) Name() string { return "macaddr" }
func (macType) Zero() any    { return MACAddr{} }

func (macType) Parse(s string) (any, error) {
	mac, err := ParseMAC(s)
	if err != nil {
		return nil, err
	}
	return mac, nil
}

func (macType) Format(v any) string {
	mac, _ := v.(MACAddr)
	return mac.String()
}

type pointerType struct{}

func (pointerType) Name() string { return "ptr" }
func (pointerType) Zero() any    { return nil }

// Settable reports whether values of t can be parsed from strings.
func Settable(t Type) bool {
	_, ok := t.(Parser)
	return ok
}
