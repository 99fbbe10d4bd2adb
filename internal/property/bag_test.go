package property

import (
	"errors"
	"testing"
)

func TestSetReferenceIsCounted(t *testing.T) {
	table := NewNameTable("netdev")
	table.Add("hn0", "backend-hn0")
	ref := NewRefType("netdev", table)
	props := []Descriptor{{Name: "netdev", Type: ref}}

	a := NewBag(props, nil)
	a.ApplyDefaults()
	if err := a.Parse("netdev", "hn0"); err != nil {
		t.Fatalf("a.Parse() error = %v", err)
	}

	b := NewBag(props, nil)
	b.ApplyDefaults()
	if err := b.Set("netdev", Reference{Name: "hn0", Target: "stale"}); err != nil {
		t.Fatalf("b.Set() error = %v", err)
	}
	if n := table.Users("hn0"); n != 2 {
		t.Fatalf("users(hn0) after Parse and Set = %d, want 2", n)
	}
	got, _ := Value[Reference](b, "netdev")
	if got.Target != "backend-hn0" {
		t.Errorf("Target = %v, want backend-hn0", got.Target)
	}

	b.Release()
	if n := table.Users("hn0"); n != 1 {
		t.Errorf("users(hn0) while a is live = %d, want 1", n)
	}
	a.Release()
	if n := table.Users("hn0"); n != 0 {
		t.Errorf("users(hn0) after both released = %d, want 0", n)
	}
}

func TestSetReferenceEdgeCases(t *testing.T) {
	table := NewNameTable("netdev")
	table.Add("hn0", "backend-hn0")
	ref := NewRefType("netdev", table)

	tests := []struct {
		name    string
		value   Reference
		wantErr error
		users   int
	}{
		{"unknown name", Reference{Name: "ghost"}, ErrUnresolvedRef, 0},
		{"empty reference", Reference{}, nil, 0},
		{"known name", Reference{Name: "hn0"}, nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBag([]Descriptor{{Name: "netdev", Type: ref}}, nil)
			b.ApplyDefaults()
			err := b.Set("netdev", tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Set() error = %v, want %v", err, tt.wantErr)
			}
			if n := table.Users("hn0"); n != tt.users {
				t.Errorf("users(hn0) = %d, want %d", n, tt.users)
			}
			b.Release()
			if n := table.Users("hn0"); n != 0 {
				t.Errorf("users(hn0) after release = %d, want 0", n)
			}
		})
	}
}
