package vmstate

import "testing"

func TestRegistry(t *testing.T) {
	led := &Description{Name: "led", VersionID: 1}
	nic := &Description{Name: "nic", VersionID: 2}
	a, b, c, d := new(int), new(int), new(int), new(int)

	r := NewRegistry()
	e0 := r.Register(AutoInstance, led, a, -1, 0)
	e1 := r.Register(AutoInstance, led, b, -1, 0)
	e2 := r.Register(5, nic, c, 3, 4)
	e3 := r.Register(AutoInstance, nic, d, -1, 0)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"first led", e0.InstanceID, 0},
		{"second led", e1.InstanceID, 1},
		{"explicit nic", e2.InstanceID, 5},
		{"auto after explicit", e3.InstanceID, 6},
		{"alias kept", e2.AliasID, 3},
		{"required version kept", e2.RequiredForVersion, 4},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	if e, ok := r.Lookup(b); !ok || e != e1 {
		t.Errorf("Lookup(b) = %v, %v", e, ok)
	}
	if !r.Unregister(led, a) {
		t.Fatal("Unregister(led, a) = false")
	}
	if r.Unregister(led, a) {
		t.Error("second Unregister(led, a) = true")
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
	if e := r.Register(AutoInstance, led, a, -1, 0); e.InstanceID != 2 {
		t.Errorf("re-registered instance id = %d, want 2", e.InstanceID)
	}
}
