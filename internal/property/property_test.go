package property

import (
	"errors"
	"testing"
)

func TestPrecedence(t *testing.T) {
	dev := []Descriptor{{Name: "level", Type: Uint32, Default: uint32(5)}}
	bus := []Descriptor{{Name: "level", Type: Uint32, Default: uint32(7)}}

	t.Run("explicit value wins", func(t *testing.T) {
		b := NewBag(dev, bus)
		b.ApplyDefaults()
		if err := b.Parse("level", "9"); err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		got, err := Value[uint32](b, "level")
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if got != 9 {
			t.Errorf("level = %d, want 9", got)
		}
	})

	t.Run("bus default overrides class default", func(t *testing.T) {
		b := NewBag(dev, bus)
		b.ApplyDefaults()
		got, _ := Value[uint32](b, "level")
		if got != 7 {
			t.Errorf("level = %d, want 7", got)
		}
	})

	t.Run("global overrides bus default", func(t *testing.T) {
		g := NewGlobals()
		g.Add("other", "level", "1")
		g.Add("widget", "level", "8")
		b := NewBag(dev, bus)
		b.ApplyDefaults()
		if err := b.ApplyGlobals(g, "widget", ""); err != nil {
			t.Fatalf("ApplyGlobals() error = %v", err)
		}
		got, _ := Value[uint32](b, "level")
		if got != 8 {
			t.Errorf("level = %d, want 8", got)
		}
	})
}

func TestApplyGlobalsMatchesAlias(t *testing.T) {
	g := NewGlobals()
	g.Add("lamp", "name", "hall")
	b := NewBag([]Descriptor{{Name: "name", Type: String}}, nil)
	b.ApplyDefaults()
	if err := b.ApplyGlobals(g, "led", "lamp"); err != nil {
		t.Fatalf("ApplyGlobals() error = %v", err)
	}
	got, _ := Value[string](b, "name")
	if got != "hall" {
		t.Errorf("name = %q, want %q", got, "hall")
	}
}

func TestApplyGlobalsBadValue(t *testing.T) {
	g := NewGlobals()
	g.Add("led", "brightness", "bright")
	b := NewBag([]Descriptor{{Name: "brightness", Type: Uint8}}, nil)
	b.ApplyDefaults()
	err := b.ApplyGlobals(g, "led")
	if !errors.Is(err, ErrParse) {
		t.Errorf("ApplyGlobals() error = %v, want ErrParse", err)
	}
}

func TestParse(t *testing.T) {
	props := []Descriptor{
		{Name: "u8", Type: Uint8},
		{Name: "u16", Type: Uint16},
		{Name: "u64", Type: Uint64},
		{Name: "h32", Type: Hex32},
		{Name: "i32", Type: Int32},
		{Name: "on", Type: Bool},
		{Name: "s", Type: String},
		{Name: "mac", Type: MAC},
		{Name: "ptr", Type: Pointer},
	}

	tests := []struct {
		name    string
		prop    string
		value   string
		want    string
		wantErr error
	}{
		{name: "decimal", prop: "u8", value: "200", want: "200"},
		{name: "hex input", prop: "u16", value: "0x10", want: "16"},
		{name: "uint8 overflow", prop: "u8", value: "256", wantErr: ErrParse},
		{name: "uint64", prop: "u64", value: "18446744073709551615", want: "18446744073709551615"},
		{name: "hex32 display", prop: "h32", value: "255", want: "0xff"},
		{name: "negative int32", prop: "i32", value: "-12", want: "-12"},
		{name: "bool yes", prop: "on", value: "yes", want: "on"},
		{name: "bool false", prop: "on", value: "false", want: "off"},
		{name: "bool junk", prop: "on", value: "maybe", wantErr: ErrParse},
		{name: "string", prop: "s", value: "hello", want: `"hello"`},
		{name: "mac colon", prop: "mac", value: "52:54:00:12:34:56", want: "52:54:00:12:34:56"},
		{name: "mac dash", prop: "mac", value: "52-54-00-AB-CD-EF", want: "52:54:00:ab:cd:ef"},
		{name: "mac short", prop: "mac", value: "52:54:00", wantErr: ErrParse},
		{name: "pointer", prop: "ptr", value: "x", wantErr: ErrNotSettable},
		{name: "unknown", prop: "nope", value: "1", wantErr: ErrUnknownProperty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBag(props, nil)
			b.ApplyDefaults()
			err := b.Parse(tt.prop, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := b.Format(tt.prop)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeviceDescriptorShadowsBus(t *testing.T) {
	b := NewBag(
		[]Descriptor{{Name: "addr", Type: String, Default: "dev"}},
		[]Descriptor{{Name: "addr", Type: Uint8, Default: uint8(3)}},
	)
	if err := b.Parse("addr", "x"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := Value[string](b, "addr")
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if got != "x" {
		t.Errorf("addr = %q, want %q", got, "x")
	}
}

func TestSetTypeCheck(t *testing.T) {
	b := NewBag([]Descriptor{
		{Name: "n", Type: Uint32},
		{Name: "p", Type: Pointer},
	}, nil)
	b.ApplyDefaults()

	if err := b.Set("n", 3); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(int) error = %v, want ErrTypeMismatch", err)
	}
	if err := b.Set("n", uint32(3)); err != nil {
		t.Errorf("Set(uint32) error = %v", err)
	}
	obj := &struct{ x int }{1}
	if err := b.Set("p", obj); err != nil {
		t.Fatalf("Set(pointer) error = %v", err)
	}
	got, _ := b.Get("p")
	if got != any(obj) {
		t.Errorf("Get(p) = %v, want %v", got, obj)
	}
	if _, err := Value[string](b, "n"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Value[string] error = %v, want ErrTypeMismatch", err)
	}
}

func TestReferenceLifetime(t *testing.T) {
	table := NewNameTable("netdev")
	table.Add("user0", "backend-user0")
	table.Add("tap1", "backend-tap1")
	ref := NewRefType("netdev", table)

	b := NewBag([]Descriptor{{Name: "netdev", Type: ref}}, nil)
	b.ApplyDefaults()

	if got, _ := b.Format("netdev"); got != "<null>" {
		t.Errorf("Format() before set = %q, want <null>", got)
	}
	if err := b.Parse("netdev", "missing"); !errors.Is(err, ErrUnresolvedRef) {
		t.Fatalf("Parse(missing) error = %v, want ErrUnresolvedRef", err)
	}
	if err := b.Parse("netdev", "user0"); err != nil {
		t.Fatalf("Parse(user0) error = %v", err)
	}
	if n := table.Users("user0"); n != 1 {
		t.Errorf("users(user0) = %d, want 1", n)
	}

	// Overwriting drops the previous reference.
	if err := b.Parse("netdev", "tap1"); err != nil {
		t.Fatalf("Parse(tap1) error = %v", err)
	}
	if n := table.Users("user0"); n != 0 {
		t.Errorf("users(user0) after overwrite = %d, want 0", n)
	}

	got, _ := Value[Reference](b, "netdev")
	if got.Target != "backend-tap1" {
		t.Errorf("Target = %v, want backend-tap1", got.Target)
	}

	b.Release()
	b.Release()
	if n := table.Users("tap1"); n != 0 {
		t.Errorf("users(tap1) after release = %d, want 0", n)
	}
}

func TestSettable(t *testing.T) {
	if !Settable(Uint8) {
		t.Error("Uint8 should be settable")
	}
	if Settable(Pointer) {
		t.Error("Pointer should not be settable")
	}
}

func TestGlobalsEntriesCopy(t *testing.T) {
	g := NewGlobals()
	g.Add("led", "name", "a")
	entries := g.Entries()
	entries[0].Value = "changed"
	if got := g.Entries()[0].Value; got != "a" {
		t.Errorf("Entries() shares storage: got %q", got)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}
