package acpi

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Interrupt controller structure types of the MADT.
const (
	TypeGICC uint8 = 0x0b
	TypeGICD uint8 = 0x0c
)

// InterruptController is an entry of the MADT.
type InterruptController interface {
	Len() uint8
	ToBytes() ([]byte, error)
}

// GICC is a GIC CPU interface structure (ACPI 6.4, s5.2.12.14).
type GICC struct {
	Type                          uint8
	Length                        uint8
	_                             uint16
	CPUInterfaceNumber            uint32
	AcpiProcessorUID              uint32
	Flags                         uint32
	ParkingProtocolVersion        uint32
	PerformanceInterruptGSIV      uint32
	ParkedAddress                 uint64
	PhysicalBaseAddress           uint64
	GICV                          uint64
	GICH                          uint64
	VGICMaintenanceInterrupt      uint32
	GICRBaseAddress               uint64
	MPIDR                         uint64
	ProcessorPowerEfficiencyClass uint8
	_                             uint8
	SPEOverflowInterrupt          uint16
}

func (g *GICC) Len() uint8 {
	return g.Length
}

func (g *GICC) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GICD is a GIC distributor structure (ACPI 6.4, s5.2.12.15).
type GICD struct {
	Type                uint8
	Length              uint8
	_                   uint16
	GICID               uint32
	PhysicalBaseAddress uint64
	SystemVectorBase    uint32
	GICVersion          uint8
	_                   [3]uint8
}

func (g *GICD) Len() uint8 {
	return g.Length
}

func (g *GICD) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// NewGICC returns a GIC CPU interface structure with its type and length
// set.
func NewGICC() *GICC {
	g := &GICC{Type: TypeGICC}
	g.Length = uint8(binary.Size(g))

	return g
}

// NewGICD returns a GIC distributor structure with its type and length
// set.
func NewGICD() *GICD {
	g := &GICD{Type: TypeGICD}
	g.Length = uint8(binary.Size(g))

	return g
}

type madtBody struct {
	// Always 0 on Arm: there is no local APIC.
	LocalInterruptControllerAddress uint32
	Flags                           uint32
}

// NewMADT builds a MADT holding the given interrupt controllers.
func NewMADT(info HeaderInfo, controllers []InterruptController) (*Table, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, madtBody{}); err != nil {
		return nil, err
	}

	for _, c := range controllers {
		data, err := c.ToBytes()
		if err != nil {
			return nil, err
		}

		if len(data) != int(c.Len()) {
			return nil, fmt.Errorf("interrupt controller length %d, encoded %d: %w", c.Len(), len(data), ErrInternal)
		}

		buf.Write(data)
	}

	return NewTable(info, buf.Bytes())
}
