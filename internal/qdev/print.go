package qdev

import (
	"fmt"
	"io"
	"strings"

	"github.com/nerrad567/devmodel/internal/property"
)

// FprintTree writes the live tree starting at the root bus.
func (m *Model) FprintTree(w io.Writer) {
	printBus(w, m.RootBus(), 0)
}

func printBus(w io.Writer, b *Bus, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(w, "%sbus: %s\n", pad, b.Name)
	indent += 2
	pad = strings.Repeat(" ", indent)
	fmt.Fprintf(w, "%stype %s\n", pad, b.class.Name)
	for _, d := range b.children {
		printDevice(w, d, indent)
	}
}

func printDevice(w io.Writer, d *Device, indent int) {
	pad := strings.Repeat(" ", indent)
	fmt.Fprintf(w, "%sdev: %s, id %q\n", pad, d.class.Name, d.ID)
	indent += 2
	pad = strings.Repeat(" ", indent)
	if n := len(d.gpioIn); n > 0 {
		fmt.Fprintf(w, "%sgpio-in %d\n", pad, n)
	}
	if n := len(d.gpioOut); n > 0 {
		fmt.Fprintf(w, "%sgpio-out %d\n", pad, n)
	}
	printProps(w, d, d.props.DeviceProps(), "dev", pad)
	printProps(w, d, d.props.BusProps(), "bus", pad)
	if p, ok := d.parent.class.Ops.(DevicePrinter); ok {
		p.PrintDevice(w, d, indent)
	}
	for _, b := range d.buses {
		printBus(w, b, indent)
	}
}

// printProps skips properties without a display form.
func printProps(w io.Writer, d *Device, props []property.Descriptor, prefix, pad string) {
	for _, p := range props {
		if _, ok := p.Type.(property.Formatter); !ok {
			continue
		}
		v, err := d.props.Format(p.Name)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s%s-prop: %s = %s\n", pad, prefix, p.Name, v)
	}
}
