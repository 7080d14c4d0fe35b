package aml

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// MaxIndexName is the number of distinct indices IndexName can encode
// with three hexadecimal digits.
const MaxIndexName = 1 << 12

// NameSeg is a 4 character AML name segment.
type NameSeg [NameSegSize]byte

func (n NameSeg) String() string {
	return string(n[:])
}

// IndexName writes the name 'Xxxx': lead followed by index as three
// upper-case hexadecimal digits, most significant first.
func IndexName(lead byte, index uint32) (NameSeg, error) {
	var name NameSeg

	if index >= MaxIndexName || !isLeadNameChar(lead) {
		return name, fmt.Errorf("name %q/%d: %w", lead, index, acpi.ErrInvalidParameter)
	}

	const hex = "0123456789ABCDEF"

	name[0] = lead

	for i := 0; i < NameSegSize-1; i++ {
		name[NameSegSize-1-i] = hex[(index>>(4*i))&0xf]
	}

	return name, nil
}
