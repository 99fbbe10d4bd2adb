package hw

import (
	"fmt"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

const eepromSize = 256

// i2cController bridges the system bus to one I2C bus.
type i2cController struct{}

func (i2cController) Init(d *qdev.Device) error {
	d.NewChildBus(I2CBus, "")
	return nil
}

type eepromState struct {
	offset uint8
	data   [eepromSize]byte
}

var eepromVMState = &vmstate.Description{
	Name:      "eeprom",
	VersionID: 1,
	Fields: []vmstate.Field{
		{Name: "offset", Size: 1, Get: func(o any) any { return o.(*eepromState).offset }},
		{Name: "data", Flags: vmstate.Buffer, Size: eepromSize, Get: func(o any) any { return &o.(*eepromState).data }},
	},
}

type eeprom struct{}

func (eeprom) Init(d *qdev.Device) error {
	if err := claimAddress(d); err != nil {
		return err
	}
	contents, _ := property.Value[string](d.Props(), "contents")
	if len(contents) > eepromSize {
		return fmt.Errorf("%w: %d bytes", ErrContentsTooLarge, len(contents))
	}
	s := d.Instance().(*eepromState)
	copy(s.data[:], contents)
	return nil
}

func (eeprom) Reset(d *qdev.Device) error {
	d.Instance().(*eepromState).offset = 0
	return nil
}

func i2cClasses() []*qdev.DeviceClass {
	return []*qdev.DeviceClass{
		{
			Name:   "i2c-ctrl",
			Desc:   "I2C controller",
			Bus:    qdev.SystemBus,
			Driver: i2cController{},
		},
		{
			Name:    "eeprom",
			Desc:    "256-byte serial EEPROM",
			Bus:     I2CBus,
			Props:   []property.Descriptor{{Name: "contents", Type: property.String}},
			Driver:  eeprom{},
			VMState: eepromVMState,
			New:     func() any { return &eepromState{} },
		},
	}
}
