// Package property implements the typed property system used by device
// instances.
//
// A property is a named, typed, externally settable attribute. Each device
// class declares a list of Descriptors; the bus class a device sits on may
// declare more. A Bag holds the live values of one instance.
//
// # Precedence
//
// Values are applied in this order, later wins:
//
//  1. device class defaults
//  2. bus class defaults
//  3. process-wide global overrides (Globals), keyed by driver name or alias
//  4. explicit values supplied by the caller
//
// # Value grammar
//
// Every Type owns its own parse/format pair. The built-in types accept:
//
//   - integers in decimal or 0x-prefixed hex (Uint8 ... Uint64, Int32, Hex*)
//   - booleans: on/off, yes/no, true/false
//   - plain strings
//   - MAC addresses: xx:xx:xx:xx:xx:xx (or '-' separated)
//   - named references resolved against a NameTable (RefType)
//
// # Resource release
//
// Types that own resources implement Releaser. Bag.Release calls the hook
// once per value, after the owning device has run its exit callback.
//
// # Usage
//
//	bag := property.NewBag(cls.Props, busCls.Props)
//	bag.ApplyDefaults()
//	if err := bag.ApplyGlobals(globals, "led"); err != nil {
//	    return err
//	}
//	if err := bag.Parse("brightness", "0x80"); err != nil {
//	    return err
//	}
//	level, _ := property.Value[uint8](bag, "brightness")
package property
