package codegen

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

// Access sizes of a generic register.
const (
	AccessUndefined uint8 = iota
	AccessByte
	AccessWord
	AccessDWord
	AccessQWord
)

// MaxInterrupts is the largest interrupt list an extended interrupt
// descriptor can hold.
const MaxInterrupts = 0xff

type rdLargeHeader struct {
	Tag    uint8
	Length uint16
}

type rdWordAddressSpace struct {
	rdLargeHeader
	ResType      uint8
	GenFlag      uint8
	SpecificFlag uint8
	Granularity  uint16
	Minimum      uint16
	Maximum      uint16
	Translation  uint16
	Length       uint16
}

type rdDWordAddressSpace struct {
	rdLargeHeader
	ResType      uint8
	GenFlag      uint8
	SpecificFlag uint8
	Granularity  uint32
	Minimum      uint32
	Maximum      uint32
	Translation  uint32
	Length       uint32
}

type rdQWordAddressSpace struct {
	rdLargeHeader
	ResType      uint8
	GenFlag      uint8
	SpecificFlag uint8
	Granularity  uint64
	Minimum      uint64
	Maximum      uint64
	Translation  uint64
	Length       uint64
}

type rdExtInterrupt struct {
	rdLargeHeader
	Flags uint8
	Count uint8
}

type rdGenericRegister struct {
	rdLargeHeader
	AddressSpaceID uint8
	BitWidth       uint8
	BitOffset      uint8
	AccessSize     uint8
	Address        uint64
}

type rdEndTag struct {
	Desc     uint8
	Checksum uint8
}

// AddressSpace holds the fields shared by address space descriptors of
// every width.
type AddressSpace struct {
	IsResourceConsumer bool
	IsPosDecode        bool
	IsMinFixed         bool
	IsMaxFixed         bool

	// Not supported, must be left zero.
	ResourceSourceIndex uint8
	ResourceSource      string
}

type WordRange struct {
	Granularity uint16
	Minimum     uint16
	Maximum     uint16
	Translation uint16
	Length      uint16
}

type DWordRange struct {
	Granularity uint32
	Minimum     uint32
	Maximum     uint32
	Translation uint32
	Length      uint32
}

type QWordRange struct {
	Granularity uint64
	Minimum     uint64
	Maximum     uint64
	Translation uint64
	Length      uint64
}

func (r WordRange) fields() AddressSpaceFields {
	return AddressSpaceFields{
		Granularity: uint64(r.Granularity),
		Minimum:     uint64(r.Minimum),
		Maximum:     uint64(r.Maximum),
		Translation: uint64(r.Translation),
		Length:      uint64(r.Length),
	}
}

func (r DWordRange) fields() AddressSpaceFields {
	return AddressSpaceFields{
		Granularity: uint64(r.Granularity),
		Minimum:     uint64(r.Minimum),
		Maximum:     uint64(r.Maximum),
		Translation: uint64(r.Translation),
		Length:      uint64(r.Length),
	}
}

func (r QWordRange) fields() AddressSpaceFields {
	return AddressSpaceFields{
		Granularity: r.Granularity,
		Minimum:     r.Minimum,
		Maximum:     r.Maximum,
		Translation: r.Translation,
		Length:      r.Length,
	}
}

// IOFlags are the type specific fields of an IO range.
type IOFlags struct {
	IsaRanges          uint8
	IsDenseTranslation bool
	IsTypeStatic       bool
}

// MemoryFlags are the type specific fields of a memory range.
type MemoryFlags struct {
	Cacheable       uint8
	IsReadWrite     bool
	MemoryRangeType uint8
	IsTypeStatic    bool
}

// Interrupt describes an Interrupt() resource, encoded as an extended
// interrupt descriptor.
type Interrupt struct {
	ResourceConsumer bool
	EdgeTriggered    bool
	ActiveLow        bool
	Shared           bool
	Irqs             []uint32
}

// Register describes a Register() resource, encoded as a generic
// register descriptor.
type Register struct {
	AddressSpace uint8
	BitWidth     uint8
	BitOffset    uint8
	Address      uint64
	AccessSize   uint8
}

// rdNode packs v into a new resource data node. The length field of a
// large header in v must already be set.
func (g *CodeGen) rdNode(v ...interface{}) (*aml.DataNode, error) {
	var buf bytes.Buffer

	for _, x := range v {
		if err := binary.Write(&buf, binary.LittleEndian, x); err != nil {
			return nil, fmt.Errorf("encode %T: %v: %w", x, err, acpi.ErrInternal)
		}
	}

	return aml.NewDataNode(g.alloc, aml.DataResourceData, buf.Bytes())
}

func largeHeader(tag uint8, v interface{}) rdLargeHeader {
	return rdLargeHeader{Tag: tag, Length: uint16(binary.Size(v) - aml.RdLargeHeaderSize)}
}

func checkAddressSpace(s AddressSpace, typeSpecificFlags uint8, f AddressSpaceFields) error {
	if typeSpecificFlags == InvalidSpecificFlags || s.ResourceSourceIndex != 0 || s.ResourceSource != "" {
		return fmt.Errorf("address space: flags %#x, resource source %q/%d: %w",
			typeSpecificFlags, s.ResourceSource, s.ResourceSourceIndex, acpi.ErrInvalidParameter)
	}

	f.IsMinFixed = s.IsMinFixed
	f.IsMaxFixed = s.IsMaxFixed

	return CheckAddressSpaceFields(f)
}

// RdWordSpace generates a WordSpace() resource, a Word address space
// descriptor (ACPI 6.4, s6.4.3.5.3). When owner is not nil, it must be a
// Name object holding a ResourceTemplate; the descriptor is added to it.
// Otherwise the caller owns the returned node.
func (g *CodeGen) RdWordSpace(resourceType uint8, s AddressSpace, typeSpecificFlags uint8, r WordRange,
	owner *aml.ObjectNode,
) (*aml.DataNode, error) {
	err := checkAddressSpace(s, typeSpecificFlags, r.fields())
	if err != nil {
		return nil, err
	}

	rd := rdWordAddressSpace{
		ResType:      resourceType,
		GenFlag:      AddressSpaceGeneralFlags(s.IsPosDecode, s.IsMinFixed, s.IsMaxFixed),
		SpecificFlag: typeSpecificFlags,
		Granularity:  r.Granularity,
		Minimum:      r.Minimum,
		Maximum:      r.Maximum,
		Translation:  r.Translation,
		Length:       r.Length,
	}
	rd.rdLargeHeader = largeHeader(aml.RdWordAddressSpaceDesc, rd)

	n, err := g.rdNode(rd)
	if err != nil {
		return nil, err
	}

	return linkRdNode(n, owner)
}

// RdWordBusNumber generates a WordBusNumber() resource.
func (g *CodeGen) RdWordBusNumber(s AddressSpace, r WordRange, owner *aml.ObjectNode) (*aml.DataNode, error) {
	return g.RdWordSpace(AddressSpaceTypeBus, s, 0, r, owner)
}

// RdWordIO generates a WordIO() resource.
func (g *CodeGen) RdWordIO(s AddressSpace, f IOFlags, r WordRange, owner *aml.ObjectNode) (*aml.DataNode, error) {
	flags, err := IORangeSpecificFlags(f.IsaRanges, f.IsDenseTranslation, f.IsTypeStatic)
	if err != nil {
		return nil, err
	}

	return g.RdWordSpace(AddressSpaceTypeIO, s, flags, r, owner)
}

// RdDWordSpace generates a DWordSpace() resource, a DWord address space
// descriptor (ACPI 6.4, s6.4.3.5.2).
func (g *CodeGen) RdDWordSpace(resourceType uint8, s AddressSpace, typeSpecificFlags uint8, r DWordRange,
	owner *aml.ObjectNode,
) (*aml.DataNode, error) {
	err := checkAddressSpace(s, typeSpecificFlags, r.fields())
	if err != nil {
		return nil, err
	}

	rd := rdDWordAddressSpace{
		ResType:      resourceType,
		GenFlag:      AddressSpaceGeneralFlags(s.IsPosDecode, s.IsMinFixed, s.IsMaxFixed),
		SpecificFlag: typeSpecificFlags,
		Granularity:  r.Granularity,
		Minimum:      r.Minimum,
		Maximum:      r.Maximum,
		Translation:  r.Translation,
		Length:       r.Length,
	}
	rd.rdLargeHeader = largeHeader(aml.RdDWordAddressSpaceDesc, rd)

	n, err := g.rdNode(rd)
	if err != nil {
		return nil, err
	}

	return linkRdNode(n, owner)
}

// RdDWordIO generates a DWordIO() resource.
func (g *CodeGen) RdDWordIO(s AddressSpace, f IOFlags, r DWordRange, owner *aml.ObjectNode) (*aml.DataNode, error) {
	flags, err := IORangeSpecificFlags(f.IsaRanges, f.IsDenseTranslation, f.IsTypeStatic)
	if err != nil {
		return nil, err
	}

	return g.RdDWordSpace(AddressSpaceTypeIO, s, flags, r, owner)
}

// RdDWordMemory generates a DWordMemory() resource.
func (g *CodeGen) RdDWordMemory(s AddressSpace, f MemoryFlags, r DWordRange,
	owner *aml.ObjectNode,
) (*aml.DataNode, error) {
	flags, err := MemoryRangeSpecificFlags(f.Cacheable, f.IsReadWrite, f.MemoryRangeType, f.IsTypeStatic)
	if err != nil {
		return nil, err
	}

	return g.RdDWordSpace(AddressSpaceTypeMemory, s, flags, r, owner)
}

// RdQWordSpace generates a QWordSpace() resource, a QWord address space
// descriptor (ACPI 6.4, s6.4.3.5.1).
func (g *CodeGen) RdQWordSpace(resourceType uint8, s AddressSpace, typeSpecificFlags uint8, r QWordRange,
	owner *aml.ObjectNode,
) (*aml.DataNode, error) {
	err := checkAddressSpace(s, typeSpecificFlags, r.fields())
	if err != nil {
		return nil, err
	}

	rd := rdQWordAddressSpace{
		ResType:      resourceType,
		GenFlag:      AddressSpaceGeneralFlags(s.IsPosDecode, s.IsMinFixed, s.IsMaxFixed),
		SpecificFlag: typeSpecificFlags,
		Granularity:  r.Granularity,
		Minimum:      r.Minimum,
		Maximum:      r.Maximum,
		Translation:  r.Translation,
		Length:       r.Length,
	}
	rd.rdLargeHeader = largeHeader(aml.RdQWordAddressSpaceDesc, rd)

	n, err := g.rdNode(rd)
	if err != nil {
		return nil, err
	}

	return linkRdNode(n, owner)
}

// RdQWordIO generates a QWordIO() resource.
func (g *CodeGen) RdQWordIO(s AddressSpace, f IOFlags, r QWordRange, owner *aml.ObjectNode) (*aml.DataNode, error) {
	flags, err := IORangeSpecificFlags(f.IsaRanges, f.IsDenseTranslation, f.IsTypeStatic)
	if err != nil {
		return nil, err
	}

	return g.RdQWordSpace(AddressSpaceTypeIO, s, flags, r, owner)
}

// RdQWordMemory generates a QWordMemory() resource.
func (g *CodeGen) RdQWordMemory(s AddressSpace, f MemoryFlags, r QWordRange,
	owner *aml.ObjectNode,
) (*aml.DataNode, error) {
	flags, err := MemoryRangeSpecificFlags(f.Cacheable, f.IsReadWrite, f.MemoryRangeType, f.IsTypeStatic)
	if err != nil {
		return nil, err
	}

	return g.RdQWordSpace(AddressSpaceTypeMemory, s, flags, r, owner)
}

// RdInterrupt generates an Interrupt() resource, an extended interrupt
// descriptor (ACPI 6.4, s6.4.3.6).
//
//	bit 0: consumer
//	bit 1: edge triggered
//	bit 2: active low
//	bit 3: shared
func (g *CodeGen) RdInterrupt(irq Interrupt, owner *aml.ObjectNode) (*aml.DataNode, error) {
	if len(irq.Irqs) == 0 || len(irq.Irqs) > MaxInterrupts {
		return nil, fmt.Errorf("interrupt: %d interrupts: %w", len(irq.Irqs), acpi.ErrInvalidParameter)
	}

	rd := rdExtInterrupt{
		Flags: boolBit(irq.ResourceConsumer, 0) | boolBit(irq.EdgeTriggered, 1) |
			boolBit(irq.ActiveLow, 2) | boolBit(irq.Shared, 3),
		Count: uint8(len(irq.Irqs)),
	}
	rd.rdLargeHeader = rdLargeHeader{
		Tag:    aml.RdExtIRQDesc,
		Length: uint16(binary.Size(rd) - aml.RdLargeHeaderSize + 4*len(irq.Irqs)),
	}

	n, err := g.rdNode(rd, irq.Irqs)
	if err != nil {
		return nil, err
	}

	return linkRdNode(n, owner)
}

// RdRegister generates a Register() resource, a generic register
// descriptor (ACPI 6.4, s6.4.3.7).
func (g *CodeGen) RdRegister(reg Register, owner *aml.ObjectNode) (*aml.DataNode, error) {
	if reg.AccessSize > AccessQWord {
		return nil, fmt.Errorf("register: access size %d: %w", reg.AccessSize, acpi.ErrInvalidParameter)
	}

	rd := rdGenericRegister{
		AddressSpaceID: reg.AddressSpace,
		BitWidth:       reg.BitWidth,
		BitOffset:      reg.BitOffset,
		AccessSize:     reg.AccessSize,
		Address:        reg.Address,
	}
	rd.rdLargeHeader = largeHeader(aml.RdGenericRegisterDesc, rd)

	n, err := g.rdNode(rd)
	if err != nil {
		return nil, err
	}

	return linkRdNode(n, owner)
}

// EndTag generates the End Tag closing a resource list. checksum is
// stored as is and never updated afterwards. When buffer is not nil, it
// must be a Buffer object holding no resource data yet, and the End Tag
// becomes its only element.
func (g *CodeGen) EndTag(checksum uint8, buffer *aml.ObjectNode) (*aml.DataNode, error) {
	if buffer != nil {
		if !aml.HasOpCode(buffer, aml.OpBuffer) {
			return nil, fmt.Errorf("end tag: parent is %v: %w", buffer.Op(), acpi.ErrInvalidParameter)
		}

		if aml.NextVariableArgument(buffer, nil) != nil {
			return nil, fmt.Errorf("end tag: buffer already holds resource data: %w", acpi.ErrInvalidParameter)
		}
	}

	n, err := g.rdNode(rdEndTag{Desc: aml.RdEndTag, Checksum: checksum})
	if err != nil {
		return nil, err
	}

	if buffer == nil {
		return n, nil
	}

	if err := aml.VarListAddTail(buffer, n); err != nil {
		_ = aml.DeleteTree(n)

		return nil, err
	}

	return n, nil
}
