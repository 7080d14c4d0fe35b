// Package madt generates the Multiple APIC Description Table of a GIC
// based platform: one GICC structure per CPU and the GIC distributor.
package madt

import (
	"errors"
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/platform"
)

const (
	ID = "acpi-madt"

	DefaultOEMTableID = "MADT"
)

type Generator struct{}

var _ generator.Generator = Generator{}

func New() Generator {
	return Generator{}
}

func (Generator) Info() generator.Info {
	return generator.Info{
		ID:          ID,
		Description: "ACPI.STD.MADT.GENERATOR",
		Signature:   acpi.SigAPIC,
		Revision:    5,
		MinRevision: 5,
		CreatorID:   "GACT",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

func gicc(info platform.GicCInfo) *acpi.GICC {
	g := acpi.NewGICC()

	g.CPUInterfaceNumber = info.CPUInterfaceNumber
	g.AcpiProcessorUID = info.AcpiProcessorUID
	g.Flags = info.Flags
	g.ParkingProtocolVersion = info.ParkingProtocolVersion
	g.PerformanceInterruptGSIV = info.PerformanceInterruptGSIV
	g.ParkedAddress = info.ParkedAddress
	g.PhysicalBaseAddress = info.PhysicalBaseAddress
	g.GICV = info.GICV
	g.GICH = info.GICH
	g.VGICMaintenanceInterrupt = info.VGICMaintenanceInterrupt
	g.GICRBaseAddress = info.GICRBaseAddress
	g.MPIDR = info.MPIDR
	g.ProcessorPowerEfficiencyClass = info.ProcessorPowerEfficiencyClass
	g.SPEOverflowInterrupt = info.SPEOverflowInterrupt

	return g
}

// Build generates the MADT. The platform must describe at least one GIC
// CPU interface; the distributor is optional, and at most one is allowed.
func (m Generator) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if p == nil {
		return nil, fmt.Errorf("build %s: nil provider: %w", ID, acpi.ErrInvalidParameter)
	}

	if t.OEMTableID == "" {
		t.OEMTableID = DefaultOEMTableID
	}

	hdr, err := generator.Header(m.Info(), t, p)
	if err != nil {
		return nil, err
	}

	giccs, err := p.GicCInfo(platform.NullToken)
	if err != nil {
		return nil, err
	}

	if len(giccs) == 0 {
		return nil, fmt.Errorf("build %s: no gic cpu interface: %w", ID, acpi.ErrNotFound)
	}

	controllers := make([]acpi.InterruptController, 0, len(giccs)+1)
	uids := make(map[uint32]struct{}, len(giccs))

	for _, info := range giccs {
		if _, ok := uids[info.AcpiProcessorUID]; ok {
			return nil, fmt.Errorf("gicc %#x: duplicate processor uid %d: %w",
				info.Token, info.AcpiProcessorUID, acpi.ErrInvalidParameter)
		}

		uids[info.AcpiProcessorUID] = struct{}{}

		controllers = append(controllers, gicc(info))
	}

	gicds, err := p.GicDInfo(platform.NullToken)

	switch {
	case errors.Is(err, acpi.ErrNotFound), err == nil && len(gicds) == 0:
	case err != nil:
		return nil, err
	case len(gicds) > 1:
		return nil, fmt.Errorf("%d gic distributors: %w", len(gicds), acpi.ErrInvalidParameter)
	default:
		d := acpi.NewGICD()
		d.PhysicalBaseAddress = gicds[0].PhysicalBaseAddress
		d.SystemVectorBase = gicds[0].SystemVectorBase
		d.GICVersion = gicds[0].GicVersion
		controllers = append(controllers, d)
	}

	return acpi.NewMADT(hdr, controllers)
}

func (Generator) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}
