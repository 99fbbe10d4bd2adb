package qdev

import "testing"

func TestGPIO(t *testing.T) {
	e := newTestEnv(t)
	bus := e.bridge(t, "br")
	src := e.leaf(t, bus, "src")
	dst := e.leaf(t, bus, "dst")

	type edge struct {
		dev   *Device
		n     int
		level int
	}
	var got []edge
	dst.InitGPIOIn(func(opaque any, n, level int) {
		got = append(got, edge{opaque.(*Device), n, level})
	}, 2)

	pins := make([]*IRQ, 1)
	src.InitGPIOOut(pins)
	if src.NumGPIOOut() != 1 || dst.NumGPIOIn() != 2 {
		t.Fatalf("lines = %d out, %d in; want 1, 2", src.NumGPIOOut(), dst.NumGPIOIn())
	}

	// Unconnected output lines are nil and ignore writes.
	pins[0].Raise()
	if len(got) != 0 {
		t.Fatalf("unconnected line delivered %v", got)
	}

	src.ConnectGPIOOut(0, dst.GPIOIn(1))
	pins[0].Raise()
	pins[0].Lower()

	want := []edge{{dst, 1, 1}, {dst, 1, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d edges, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	mustViolate(t, func() { dst.GPIOIn(2) })
	mustViolate(t, func() { src.ConnectGPIOOut(1, nil) })
	mustViolate(t, func() { dst.InitGPIOIn(nil, 1) })
	mustViolate(t, func() { src.InitGPIOOut(make([]*IRQ, 1)) })
}
