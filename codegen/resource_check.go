package codegen

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// AddressSpaceFields are the range fields of an address space descriptor,
// widened to 64 bits.
type AddressSpaceFields struct {
	IsMinFixed  bool
	IsMaxFixed  bool
	Granularity uint64
	Minimum     uint64
	Maximum     uint64
	Translation uint64
	Length      uint64
}

func invalidRange(f AddressSpaceFields, reason string) error {
	return fmt.Errorf("address space [%#x-%#x] len %#x gran %#x: %s: %w",
		f.Minimum, f.Maximum, f.Length, f.Granularity, reason, acpi.ErrInvalidParameter)
}

// CheckAddressSpaceFields checks the consistency of the range fields of an
// address space descriptor against the valid combinations of ACPI 6.4,
// table 6.44.
func CheckAddressSpaceFields(f AddressSpaceFields) error {
	if f.Minimum > f.Maximum {
		return invalidRange(f, "minimum above maximum")
	}

	// Computed without overflow for a full 64-bit range.
	if f.Length != 0 && f.Length-1 > f.Maximum-f.Minimum {
		return invalidRange(f, "length larger than the range")
	}

	if f.Granularity&(f.Granularity+1) != 0 {
		return invalidRange(f, "granularity is not a power of two minus one")
	}

	if f.Length != 0 {
		if f.IsMinFixed != f.IsMaxFixed {
			return invalidRange(f, "only one bound fixed")
		}

		if f.IsMinFixed && f.Granularity != 0 && f.Maximum-f.Minimum != f.Length-1 {
			return invalidRange(f, "fixed range does not match length")
		}

		return nil
	}

	if f.IsMinFixed && f.IsMaxFixed {
		return invalidRange(f, "both bounds fixed with variable length")
	}

	if f.IsMinFixed && f.Minimum&f.Granularity != 0 {
		return invalidRange(f, "minimum not aligned on granularity")
	}

	if f.IsMaxFixed && (f.Maximum+1)&f.Granularity != 0 {
		return invalidRange(f, "maximum+1 not aligned on granularity")
	}

	return nil
}
