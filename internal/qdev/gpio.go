package qdev

// IRQHandler receives level changes of input line n.
type IRQHandler func(opaque any, n int, level int)

// IRQ is one interrupt or GPIO line. A nil *IRQ is a disconnected line;
// setting it does nothing.
type IRQ struct {
	handler IRQHandler
	opaque  any
	n       int
}

// NewIRQs allocates n lines delivering to handler.
func NewIRQs(handler IRQHandler, opaque any, n int) []*IRQ {
	irqs := make([]*IRQ, n)
	for i := range irqs {
		irqs[i] = &IRQ{handler: handler, opaque: opaque, n: i}
	}
	return irqs
}

// Set drives the line to level.
func (q *IRQ) Set(level int) {
	if q == nil || q.handler == nil {
		return
	}
	q.handler(q.opaque, q.n, level)
}

// Raise sets the line to 1.
func (q *IRQ) Raise() { q.Set(1) }

// Lower sets the line to 0.
func (q *IRQ) Lower() { q.Set(0) }

// InitGPIOIn creates n input lines delivering to handler with the device as
// opaque. It may be called once per device.
func (d *Device) InitGPIOIn(handler IRQHandler, n int) {
	if len(d.gpioIn) != 0 {
		violate("init gpio in", "device %q already has inputs", d.class.Name)
	}
	d.gpioIn = NewIRQs(handler, d, n)
}

// InitGPIOOut declares the output lines of the device. pins is owned by the
// device model and filled in by ConnectGPIOOut. It may be called once per
// device.
func (d *Device) InitGPIOOut(pins []*IRQ) {
	if len(d.gpioOut) != 0 {
		violate("init gpio out", "device %q already has outputs", d.class.Name)
	}
	d.gpioOut = pins
}

// GPIOIn returns input line n.
func (d *Device) GPIOIn(n int) *IRQ {
	if n < 0 || n >= len(d.gpioIn) {
		violate("gpio in", "device %q has no input %d", d.class.Name, n)
	}
	return d.gpioIn[n]
}

// ConnectGPIOOut wires output n to pin.
func (d *Device) ConnectGPIOOut(n int, pin *IRQ) {
	if n < 0 || n >= len(d.gpioOut) {
		violate("connect gpio out", "device %q has no output %d", d.class.Name, n)
	}
	d.gpioOut[n] = pin
}

// NumGPIOIn returns the number of input lines.
func (d *Device) NumGPIOIn() int { return len(d.gpioIn) }

// NumGPIOOut returns the number of output lines.
func (d *Device) NumGPIOOut() int { return len(d.gpioOut) }
