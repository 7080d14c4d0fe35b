// Package serial generates an SSDT describing the memory mapped UARTs of
// the platform.
package serial

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
	ID = "ssdt-serial-port"

	DefaultOEMTableID = "SSDT-COM"

	// DefaultLength is the size of the register window of a UART whose
	// length is not given.
	DefaultLength = 0x1000
)

// Serial port subtypes (DBG2 table 7, as used by the SPCR).
const (
	Subtype16550        = 0x00
	Subtype16450        = 0x01
	SubtypePL011        = 0x03
	SubtypeSBSA32       = 0x0d
	SubtypeSBSA         = 0x0e
	Subtype16550WithGAS = 0x12
)

type ids struct {
	hid, cid string
	eisa     bool
}

func hardwareIDs(subtype uint16) (ids, error) {
	switch subtype {
	case SubtypePL011:
		return ids{hid: "ARMH0011", cid: "ARMHB000"}, nil
	case SubtypeSBSA, SubtypeSBSA32:
		return ids{hid: "ARMHB000"}, nil
	case Subtype16550, Subtype16450, Subtype16550WithGAS:
		return ids{hid: "PNP0501", eisa: true}, nil
	}

	return ids{}, fmt.Errorf("serial port subtype %#x: %w", subtype, acpi.ErrInvalidParameter)
}

// Generator builds the serial port SSDT.
type Generator struct {
	alloc aml.Allocator
}

var _ generator.Generator = (*Generator)(nil)

// New returns a generator allocating its AML nodes through a. A nil a
// means aml.Heap.
func New(a aml.Allocator) *Generator {
	if a == nil {
		a = aml.Heap
	}

	return &Generator{alloc: a}
}

func (g *Generator) Info() generator.Info {
	return generator.Info{
		ID:          ID,
		Description: "ACPI.STD.SSDT.SERIAL.PORT.GENERATOR",
		Signature:   acpi.SigSSDT,
		Revision:    2,
		MinRevision: 1,
		CreatorID:   "GACT",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

// Build generates, for each serial port of p:
//
//	Scope (\_SB) {
//	  Device (U000) {
//	    Name (_HID, "ARMH0011")
//	    Name (_CID, "ARMHB000")
//	    Name (_UID, 0)
//	    Name (_CRS, ResourceTemplate () {
//	      DWordMemory (...)
//	      Interrupt (ResourceConsumer, Level, ActiveHigh, Exclusive) { 33 }
//	    })
//	  }
//	}
func (g *Generator) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if p == nil {
		return nil, fmt.Errorf("build %s: nil provider: %w", ID, acpi.ErrInvalidParameter)
	}

	if t.OEMTableID == "" {
		t.OEMTableID = DefaultOEMTableID
	}

	hdr, err := generator.Header(g.Info(), t, p)
	if err != nil {
		return nil, err
	}

	ports, err := p.SerialPortInfo(platform.NullToken)
	if err != nil {
		return nil, err
	}

	cg := codegen.New(g.alloc)

	root, err := cg.DefinitionBlock(hdr)
	if err != nil {
		return nil, err
	}
	defer aml.DeleteTree(root) //nolint:errcheck

	scope, err := cg.Scope("\\_SB", root)
	if err != nil {
		return nil, err
	}

	for i, port := range ports {
		if err := device(cg, port, uint32(i), scope); err != nil {
			return nil, fmt.Errorf("serial port %#x: %w", port.Token, err)
		}
	}

	return aml.Serialize(root)
}

func (g *Generator) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}

func device(cg *codegen.CodeGen, port platform.SerialPortInfo, uid uint32, parent aml.Node) error {
	hw, err := hardwareIDs(port.PortSubtype)
	if err != nil {
		return err
	}

	name, err := aml.IndexName('U', uid)
	if err != nil {
		return err
	}

	dev, err := cg.Device(name.String(), parent)
	if err != nil {
		return err
	}

	if hw.eisa {
		_, err = cg.NameEisaID("_HID", hw.hid, dev)
	} else {
		_, err = cg.NameString("_HID", hw.hid, dev)
	}

	if err != nil {
		return err
	}

	if hw.cid != "" {
		if _, err := cg.NameString("_CID", hw.cid, dev); err != nil {
			return err
		}
	}

	if _, err := cg.NameInteger("_UID", uint64(uid), dev); err != nil {
		return err
	}

	crs, err := cg.NameResourceTemplate("_CRS", dev)
	if err != nil {
		return err
	}

	if err := registers(cg, port, crs); err != nil {
		return err
	}

	_, err = cg.RdInterrupt(codegen.Interrupt{
		ResourceConsumer: true,
		Irqs:             []uint32{port.Interrupt},
	}, crs)

	return err
}

// registers adds the register window of port to crs, as a DWord memory
// range when it fits below 4GB.
func registers(cg *codegen.CodeGen, port platform.SerialPortInfo, crs *aml.ObjectNode) error {
	length := port.BaseAddressLength
	if length == 0 {
		length = DefaultLength
	}

	s := codegen.AddressSpace{IsResourceConsumer: true, IsPosDecode: true, IsMinFixed: true, IsMaxFixed: true}
	f := codegen.MemoryFlags{
		Cacheable:       codegen.MemoryNonCacheable,
		IsReadWrite:     true,
		MemoryRangeType: codegen.AddressRangeMemory,
		IsTypeStatic:    true,
	}

	end := port.BaseAddress + length - 1
	if end < port.BaseAddress {
		return fmt.Errorf("registers [%#x, +%#x]: %w", port.BaseAddress, length, acpi.ErrInvalidParameter)
	}

	if end <= math.MaxUint32 {
		_, err := cg.RdDWordMemory(s, f, codegen.DWordRange{
			Minimum: uint32(port.BaseAddress),
			Maximum: uint32(end),
			Length:  uint32(length),
		}, crs)

		return err
	}

	_, err := cg.RdQWordMemory(s, f, codegen.QWordRange{
		Minimum: port.BaseAddress,
		Maximum: end,
		Length:  length,
	}, crs)

	return err
}
