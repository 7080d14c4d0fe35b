package aml

import (
	"encoding/binary"
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// Resource data descriptor tags. Large items have bit 7 set and a 7-bit
// name; small items pack a 4-bit name and a 3-bit length.
const (
	RdLargeItemFlag = 0x80

	RdGenericRegisterDesc   = 0x82
	RdDWordAddressSpaceDesc = 0x87
	RdWordAddressSpaceDesc  = 0x88
	RdExtIRQDesc            = 0x89
	RdQWordAddressSpaceDesc = 0x8A

	RdSmallEndTagName = 0x0F
	RdEndTag          = RdSmallEndTagName<<3 | 1

	RdLargeHeaderSize = 3
	RdSmallHeaderSize = 1
)

// RdHeader is the decoded header of a resource data element.
type RdHeader struct {
	Large  bool
	Name   uint8
	Length uint16
}

// Size returns the size of the header itself.
func (h RdHeader) Size() int {
	if h.Large {
		return RdLargeHeaderSize
	}

	return RdSmallHeaderSize
}

// ParseRdHeader decodes the header at the start of a resource data
// element and checks that the body fits in b.
func ParseRdHeader(b []byte) (RdHeader, error) {
	var h RdHeader

	if len(b) < RdSmallHeaderSize {
		return h, fmt.Errorf("resource data header: %w", acpi.ErrInvalidParameter)
	}

	if b[0]&RdLargeItemFlag != 0 {
		if len(b) < RdLargeHeaderSize {
			return h, fmt.Errorf("resource data header % x: %w", b, acpi.ErrInvalidParameter)
		}

		h = RdHeader{Large: true, Name: b[0] &^ RdLargeItemFlag, Length: binary.LittleEndian.Uint16(b[1:3])}
	} else {
		h = RdHeader{Name: (b[0] >> 3) & 0xf, Length: uint16(b[0] & 0x7)}
	}

	if h.Size()+int(h.Length) > len(b) {
		return h, fmt.Errorf("resource data % x: truncated body: %w", b, acpi.ErrInvalidParameter)
	}

	return h, nil
}

// IsEndTag reports whether n is an End Tag resource data node.
func IsEndTag(n Node) bool {
	d, ok := n.(*DataNode)
	if !ok || d == nil || d.dataType != DataResourceData || len(d.buf) == 0 {
		return false
	}

	h, err := ParseRdHeader(d.buf)

	return err == nil && !h.Large && h.Name == RdSmallEndTagName
}
