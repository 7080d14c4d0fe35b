package acpi

import "fmt"

// Checksum returns the byte that makes the 8-bit sum of data, with its
// checksum byte cleared, equal to zero.
func Checksum(data []byte) uint8 {
	cks := uint8(0)

	for _, b := range data {
		cks += b
	}

	return -cks
}

// Table is a finished ACPI table: header plus definition block body.
type Table struct {
	Header
	Body []byte
}

// NewTable assembles a table, fixing up the length and checksum fields.
func NewTable(info HeaderInfo, body []byte) (*Table, error) {
	h, err := NewHeader(info, uint32(HeaderSize+len(body)))
	if err != nil {
		return nil, err
	}

	t := &Table{Header: h, Body: body}

	data, err := t.ToBytes()
	if err != nil {
		return nil, err
	}

	t.Header.Checksum = Checksum(data)

	return t, nil
}

func (t *Table) ToBytes() ([]byte, error) {
	data, err := t.Header.ToBytes()
	if err != nil {
		return nil, err
	}

	return append(data, t.Body...), nil
}

// Verify checks that the table length and checksum are consistent.
func (t *Table) Verify() error {
	data, err := t.ToBytes()
	if err != nil {
		return err
	}

	if int(t.Length) != len(data) {
		return fmt.Errorf("table length %d, have %d bytes: %w", t.Length, len(data), ErrInvalidParameter)
	}

	sum := uint8(0)
	for _, b := range data {
		sum += b
	}

	if sum != 0 {
		return fmt.Errorf("table checksum: %w", ErrInvalidParameter)
	}

	return nil
}

func (t *Table) String() string {
	return fmt.Sprintf("%s(%q rev %d, %d bytes)", string(t.Signature[:]), string(t.OEMTableID[:]), t.Rev, t.Length)
}
