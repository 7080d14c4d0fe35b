package acpi

import "fmt"

type Signature string

// ToBytes returns the 4-byte on-disk form of the signature.
func (s Signature) ToBytes() [4]byte {
	var ret [4]byte

	copy(ret[:], s)

	return ret
}

// Valid reports whether s is exactly four printable ASCII characters.
func (s Signature) Valid() bool {
	if len(s) != 4 {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}

	return true
}

// ParseSignature checks str and converts it to a Signature.
func ParseSignature(str string) (Signature, error) {
	s := Signature(str)
	if !s.Valid() {
		return "", fmt.Errorf("signature %q: %w", str, ErrInvalidParameter)
	}

	return s, nil
}

const (
	SigAPIC Signature = "APIC"
	SigDSDT Signature = "DSDT"
	SigFACP Signature = "FACP"
	SigMCFG Signature = "MCFG"
	SigPPTT Signature = "PPTT"
	SigSPCR Signature = "SPCR"
	SigSSDT Signature = "SSDT"
	SigXSDT Signature = "XSDT"
)

// Revision packs a major.minor pair the way generator revisions are
// reported in table headers.
func Revision(major, minor uint16) uint32 {
	return uint32(major)<<16 | uint32(minor)
}
