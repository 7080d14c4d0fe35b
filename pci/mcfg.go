package pci

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/platform"
)

const (
	MCFGID = "acpi-mcfg"

	DefaultMCFGOEMTableID = "MCFG"
)

// MCFG builds the table of the ECAM regions.
type MCFG struct{}

var _ generator.Generator = MCFG{}

func NewMCFG() MCFG {
	return MCFG{}
}

func (MCFG) Info() generator.Info {
	return generator.Info{
		ID:          MCFGID,
		Description: "ACPI.STD.MCFG.GENERATOR",
		Signature:   acpi.SigMCFG,
		Revision:    1,
		MinRevision: 1,
		CreatorID:   "GACT",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

func (m MCFG) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if p == nil {
		return nil, fmt.Errorf("build %s: nil provider: %w", MCFGID, acpi.ErrInvalidParameter)
	}

	if t.OEMTableID == "" {
		t.OEMTableID = DefaultMCFGOEMTableID
	}

	hdr, err := generator.Header(m.Info(), t, p)
	if err != nil {
		return nil, err
	}

	spaces, err := p.PciConfigSpaceInfo(platform.NullToken)
	if err != nil {
		return nil, err
	}

	allocs := make([]acpi.MCFGAllocation, 0, len(spaces))

	for _, s := range spaces {
		if s.EndBusNumber < s.StartBusNumber {
			return nil, fmt.Errorf("pci config space %#x: bus range [%d, %d]: %w",
				s.Token, s.StartBusNumber, s.EndBusNumber, acpi.ErrInvalidParameter)
		}

		allocs = append(allocs, acpi.MCFGAllocation{
			BaseAddress: s.BaseAddress,
			Segment:     s.PciSegmentGroupNumber,
			StartBus:    s.StartBusNumber,
			EndBus:      s.EndBusNumber,
		})
	}

	return acpi.NewMCFG(hdr, allocs)
}

func (MCFG) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}
