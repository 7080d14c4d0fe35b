// Package pci generates the ACPI tables describing PCI Express host
// bridges: an SSDT holding one PNP0A08 device per ECAM region, and the
// MCFG listing the ECAM regions.
package pci

import (
	"fmt"
	"math"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
	"github.com/bobuhiro11/dyntables/codegen"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/platform"
)

const (
	SSDTID = "ssdt-pci-express"

	DefaultSSDTOEMTableID = "SSDT-PCI"
)

// SSDT builds the host bridge SSDT.
type SSDT struct {
	alloc aml.Allocator
}

var _ generator.Generator = (*SSDT)(nil)

// NewSSDT returns a generator allocating its AML nodes through a. A nil
// a means aml.Heap.
func NewSSDT(a aml.Allocator) *SSDT {
	if a == nil {
		a = aml.Heap
	}

	return &SSDT{alloc: a}
}

func (s *SSDT) Info() generator.Info {
	return generator.Info{
		ID:          SSDTID,
		Description: "ACPI.STD.SSDT.PCI.GENERATOR",
		Signature:   acpi.SigSSDT,
		Revision:    2,
		MinRevision: 1,
		CreatorID:   "GACT",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

// Build generates, for each PCI configuration space of p:
//
//	Scope (\_SB) {
//	  Device (P000) {
//	    Name (_HID, EISAID ("PNP0A08"))
//	    Name (_CID, EISAID ("PNP0A03"))
//	    Name (_SEG, 0)
//	    Name (_BBN, 0)
//	    Name (_UID, 0)
//	    Name (_CCA, 1)
//	    Name (_CRS, ResourceTemplate () {
//	      WordBusNumber (...)
//	      DWordIo (...)
//	      DWordMemory (...)
//	      QWordMemory (...)
//	    })
//	  }
//	}
func (s *SSDT) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if p == nil {
		return nil, fmt.Errorf("build %s: nil provider: %w", SSDTID, acpi.ErrInvalidParameter)
	}

	if t.OEMTableID == "" {
		t.OEMTableID = DefaultSSDTOEMTableID
	}

	hdr, err := generator.Header(s.Info(), t, p)
	if err != nil {
		return nil, err
	}

	spaces, err := p.PciConfigSpaceInfo(platform.NullToken)
	if err != nil {
		return nil, err
	}

	cg := codegen.New(s.alloc)

	root, err := cg.DefinitionBlock(hdr)
	if err != nil {
		return nil, err
	}
	defer aml.DeleteTree(root) //nolint:errcheck

	scope, err := cg.Scope("\\_SB", root)
	if err != nil {
		return nil, err
	}

	for i, cfg := range spaces {
		if err := hostBridge(cg, p, cfg, uint32(i), scope); err != nil {
			return nil, fmt.Errorf("pci config space %#x: %w", cfg.Token, err)
		}
	}

	return aml.Serialize(root)
}

func (s *SSDT) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}

func hostBridge(cg *codegen.CodeGen, p platform.Provider, cfg platform.PciConfigSpaceInfo, uid uint32,
	parent aml.Node,
) error {
	if cfg.EndBusNumber < cfg.StartBusNumber {
		return fmt.Errorf("bus range [%d, %d]: %w", cfg.StartBusNumber, cfg.EndBusNumber, acpi.ErrInvalidParameter)
	}

	name, err := aml.IndexName('P', uid)
	if err != nil {
		return err
	}

	dev, err := cg.Device(name.String(), parent)
	if err != nil {
		return err
	}

	if _, err := cg.NameEisaID("_HID", "PNP0A08", dev); err != nil {
		return err
	}

	if _, err := cg.NameEisaID("_CID", "PNP0A03", dev); err != nil {
		return err
	}

	for _, v := range []struct {
		name  string
		value uint64
	}{
		{"_SEG", uint64(cfg.PciSegmentGroupNumber)},
		{"_BBN", uint64(cfg.StartBusNumber)},
		{"_UID", uint64(uid)},
		{"_CCA", 1},
	} {
		if _, err := cg.NameInteger(v.name, v.value, dev); err != nil {
			return err
		}
	}

	crs, err := cg.NameResourceTemplate("_CRS", dev)
	if err != nil {
		return err
	}

	producer := codegen.AddressSpace{IsPosDecode: true, IsMinFixed: true, IsMaxFixed: true}

	_, err = cg.RdWordBusNumber(producer, codegen.WordRange{
		Minimum: uint16(cfg.StartBusNumber),
		Maximum: uint16(cfg.EndBusNumber),
		Length:  uint16(cfg.EndBusNumber) - uint16(cfg.StartBusNumber) + 1,
	}, crs)
	if err != nil {
		return err
	}

	if cfg.AddressMapToken == platform.NullToken {
		return nil
	}

	refs, err := p.CmRef(cfg.AddressMapToken)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		maps, err := p.PciAddressMapInfo(ref)
		if err != nil {
			return err
		}

		if len(maps) == 0 {
			return fmt.Errorf("address map %#x: %w", ref, acpi.ErrNotFound)
		}

		if err := addressMap(cg, producer, maps[0], crs); err != nil {
			return fmt.Errorf("address map %#x: %w", ref, err)
		}
	}

	return nil
}

func dwordRange(m platform.PciAddressMapInfo) (codegen.DWordRange, bool) {
	end := m.PciAddress + m.AddressSize - 1
	if m.AddressSize == 0 || m.AddressSize > math.MaxUint32 || end > math.MaxUint32 {
		return codegen.DWordRange{}, false
	}

	return codegen.DWordRange{
		Minimum:     uint32(m.PciAddress),
		Maximum:     uint32(end),
		Translation: uint32(m.CPUAddress - m.PciAddress),
		Length:      uint32(m.AddressSize),
	}, true
}

func qwordRange(m platform.PciAddressMapInfo) codegen.QWordRange {
	return codegen.QWordRange{
		Minimum:     m.PciAddress,
		Maximum:     m.PciAddress + m.AddressSize - 1,
		Translation: m.CPUAddress - m.PciAddress,
		Length:      m.AddressSize,
	}
}

// addressMap adds the resource of one address translation window to crs.
// Windows that do not fit in 32 bits use QWord descriptors.
func addressMap(cg *codegen.CodeGen, s codegen.AddressSpace, m platform.PciAddressMapInfo, crs *aml.ObjectNode) error {
	if m.AddressSize == 0 {
		return fmt.Errorf("empty window: %w", acpi.ErrInvalidParameter)
	}

	io := codegen.IOFlags{IsaRanges: codegen.IsaRangesEntire, IsDenseTranslation: true}
	mem := codegen.MemoryFlags{
		Cacheable:       codegen.MemoryNonCacheable,
		IsReadWrite:     true,
		MemoryRangeType: codegen.AddressRangeMemory,
		IsTypeStatic:    true,
	}

	var err error

	switch m.SpaceCode {
	case platform.PciSpaceIO:
		if r, ok := dwordRange(m); ok {
			_, err = cg.RdDWordIO(s, io, r, crs)
		} else {
			_, err = cg.RdQWordIO(s, io, qwordRange(m), crs)
		}
	case platform.PciSpaceMem32:
		r, ok := dwordRange(m)
		if !ok {
			return fmt.Errorf("32-bit window [%#x, +%#x]: %w", m.PciAddress, m.AddressSize, acpi.ErrInvalidParameter)
		}

		_, err = cg.RdDWordMemory(s, mem, r, crs)
	case platform.PciSpaceMem64:
		_, err = cg.RdQWordMemory(s, mem, qwordRange(m), crs)
	default:
		return fmt.Errorf("space code %d: %w", m.SpaceCode, acpi.ErrInvalidParameter)
	}

	return err
}
