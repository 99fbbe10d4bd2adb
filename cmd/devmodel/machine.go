package main

import (
	"fmt"

	"github.com/nerrad567/devmodel/internal/hw"
	"github.com/nerrad567/devmodel/internal/infrastructure/config"
	"github.com/nerrad567/devmodel/internal/infrastructure/logging"
	"github.com/nerrad567/devmodel/internal/machine"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// newModel registers the sample classes and the configured network
// backends. Observers should be attached before bootMachine so they see the
// board come up.
func newModel(cfg config.MachineConfig, log *logging.Logger) *qdev.Model {
	reg := qdev.NewRegistry()
	reg.SetLogger(log.Component("registry"))
	backends := hw.RegisterAll(reg)
	for _, name := range cfg.Netdevs {
		backends.Netdevs.Add(name, name)
	}

	m := qdev.NewModel(reg)
	m.SetLogger(log.Component("qdev").With("machine", cfg.Name))
	return m
}

// bootMachine loads the topology, builds the board and marks the machine
// ready. Config globals are applied before the topology's own, so the
// topology file overrides the config for the same driver.property.
func bootMachine(m *qdev.Model, cfg config.MachineConfig, log *logging.Logger) (err error) {
	topo := &machine.Topology{}
	if cfg.Topology != "" {
		topo, err = machine.Load(cfg.Topology)
		if err != nil {
			return err
		}
	}
	globals := make([]machine.Global, 0, len(cfg.Globals)+len(topo.Globals))
	for _, g := range cfg.Globals {
		globals = append(globals, machine.Global{Driver: g.Driver, Property: g.Property, Value: g.Value})
	}
	topo.Globals = append(globals, topo.Globals...)

	// A bad global aimed at a board device makes the board panic; report it
	// as a boot error. Contract violations are programming errors and keep
	// propagating.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(*qdev.ContractViolation); ok {
			panic(r)
		}
		err = fmt.Errorf("building board: %v", r)
	}()

	added, err := machine.Boot(m, topo, func(m *qdev.Model) { hw.BuildBoard(m) })
	if err != nil {
		return err
	}
	log.Info("machine booted",
		"machine", cfg.Name,
		"topology", cfg.Topology,
		"topology_devices", len(added),
		"globals", len(topo.Globals),
	)

	if cfg.ResetOnStart {
		if err := m.Reset(); err != nil {
			log.Warn("machine reset failed", "error", err)
		}
	}
	return nil
}
