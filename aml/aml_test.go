package aml_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

func TestCalcPkgLength(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		size    uint32
		include bool
		exp     []byte
	}{
		{
			name:    "1ByteSize",
			size:    62,
			include: true,
			exp:     []byte{63},
		},
		{
			name:    "2ByteSize",
			size:    64,
			include: true,
			exp:     []byte{1<<6 | (66 & 0xf), 66 >> 4},
		},
		{
			name:    "2ByteUpperBound",
			size:    4093,
			include: true,
			exp:     []byte{1<<6 | 0xf, 0xff},
		},
		{
			name:    "3ByteSize",
			size:    4096,
			include: true,
			exp:     []byte{2<<6 | (4099 & 0xf), 0, 1},
		},
		{
			name:    "3ByteAtBoundary",
			size:    4094,
			include: true,
			exp:     []byte{2<<6 | (4097 & 0xf), 0, 1},
		},
		{
			name:    "4ByteSize",
			size:    536870912,
			include: true,
			exp:     []byte{3<<6 | (536870916 & 0xf), 0, 0, 0},
		},
		{
			name: "Excluded",
			size: 63,
			exp:  []byte{63},
		},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			val := aml.CalcPkgLength(tt.size, tt.include)
			if !bytes.Equal(val, tt.exp) {
				t.Fatalf("byte not match. Have: 0x%x, want: 0x%x", val, tt.exp)
			}
		})
	}
}

func TestEncodeNameString(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		path string
		exp  []byte
		err  error
	}{
		{name: "Single", path: "_UID", exp: []byte("_UID")},
		{name: "Padded", path: "_SB", exp: []byte("_SB_")},
		{name: "Root", path: "\\_SB", exp: []byte("\\_SB_")},
		{name: "Dual", path: "\\_SB.L003", exp: append([]byte{'\\', 0x2e}, "_SB_L003"...)},
		{name: "Multi", path: "_SB.PCI0.C000", exp: append([]byte{0x2f, 3}, "_SB_PCI0C000"...)},
		{name: "Parent", path: "^^C001", exp: []byte("^^C001")},
		{name: "NullName", path: "\\", exp: []byte{'\\', 0}},
		{name: "TooLong", path: "ABCDE", err: acpi.ErrInvalidParameter},
		{name: "BadLead", path: "0ABC", err: acpi.ErrInvalidParameter},
		{name: "Lowercase", path: "abc", err: acpi.ErrInvalidParameter},
		{name: "EmptySegment", path: "_SB..C000", err: acpi.ErrInvalidParameter},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			val, err := aml.EncodeNameString(tt.path)
			if !errors.Is(err, tt.err) {
				t.Fatalf("error not match. Have: %v, want: %v", err, tt.err)
			}

			if !bytes.Equal(val, tt.exp) {
				t.Fatalf("byte not match. Have: % x, want: % x", val, tt.exp)
			}
		})
	}
}

func TestEncodeInteger(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		v    uint64
		op   aml.AMLOp
		data []byte
	}{
		{v: 0, op: aml.OpZero},
		{v: 1, op: aml.OpOne},
		{v: 2, op: aml.OpBytePrefix, data: []byte{2}},
		{v: 0x1234, op: aml.OpWordPrefix, data: []byte{0x34, 0x12}},
		{v: 0x12345678, op: aml.OpDWordPrefix, data: []byte{0x78, 0x56, 0x34, 0x12}},
		{v: 1 << 32, op: aml.OpQWordPrefix, data: []byte{0, 0, 0, 0, 1, 0, 0, 0}},
	} {
		op, data := aml.EncodeInteger(tt.v)
		if op != tt.op || !bytes.Equal(data, tt.data) {
			t.Fatalf("%#x: Have: %v % x, want: %v % x", tt.v, op, data, tt.op, tt.data)
		}
	}
}

func TestEncodeEisaID(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		id  string
		exp uint32
		err error
	}{
		{id: "PNP0A03", exp: 0x030AD041},
		{id: "PNP0A08", exp: 0x080AD041},
		{id: "PNP0A0", err: acpi.ErrInvalidParameter},
		{id: "pNP0A03", err: acpi.ErrInvalidParameter},
		{id: "PNP0G03", err: acpi.ErrInvalidParameter},
	} {
		v, err := aml.EncodeEisaID(tt.id)
		if !errors.Is(err, tt.err) {
			t.Fatalf("%s: error Have: %v, want: %v", tt.id, err, tt.err)
		}

		if v != tt.exp {
			t.Fatalf("%s: Have: %#x, want: %#x", tt.id, v, tt.exp)
		}
	}
}

func TestEncodeString(t *testing.T) {
	t.Parallel()

	b, err := aml.EncodeString("ACPI0007")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(b, []byte("ACPI0007\x00")) {
		t.Fatalf("Have: % x", b)
	}

	if _, err := aml.EncodeString("a\x00b"); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("embedded nul accepted: %v", err)
	}
}
