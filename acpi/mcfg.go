package acpi

import (
	"bytes"
	"encoding/binary"
)

// MCFGAllocation is the configuration space base address allocation of
// one PCI segment group (PCI Firmware Specification 3.2, table 4-3).
type MCFGAllocation struct {
	BaseAddress uint64
	Segment     uint16
	StartBus    uint8
	EndBus      uint8
	_           uint32
}

type mcfgBody struct {
	Allocations []MCFGAllocation
}

func (m *mcfgBody) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	// Reserved.
	if err := binary.Write(&buf, binary.LittleEndian, [8]byte{}); err != nil {
		return nil, err
	}

	for _, a := range m.Allocations {
		if err := binary.Write(&buf, binary.LittleEndian, a); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// NewMCFG builds an MCFG table listing allocs.
func NewMCFG(info HeaderInfo, allocs []MCFGAllocation) (*Table, error) {
	body := &mcfgBody{Allocations: allocs}

	b, err := body.ToBytes()
	if err != nil {
		return nil, err
	}

	return NewTable(info, b)
}
