package aml

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobuhiro11/dyntables/acpi"
)

const (
	pkgLen1 = 0x3f
	pkgLen2 = 0xfff
	pkgLen3 = 0xfffff

	// NameSegSize is the length of one segment of a NameString.
	NameSegSize = 4
)

// CalcPkgLength encodes length as a PkgLength. With includepkg, the
// encoded value also counts the bytes of the PkgLength itself.
func CalcPkgLength(length uint32, includepkg bool) []byte {
	var lenlen uint32

	total := func(n uint32) uint32 {
		if includepkg {
			return length + n
		}

		return length
	}

	switch {
	case total(1) <= pkgLen1:
		lenlen = 1
	case total(2) <= pkgLen2:
		lenlen = 2
	case total(3) <= pkgLen3:
		lenlen = 3
	default:
		lenlen = 4
	}

	ret := make([]byte, lenlen)

	length = total(lenlen)

	switch lenlen {
	case 1:
		ret[0] = uint8(length)
	case 2:
		ret[0] = (uint8(1) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
	case 3:
		ret[0] = (uint8(2) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
	case 4:
		ret[0] = (uint8(3) << 6) | uint8(length&0xf)
		ret[1] = uint8(length >> 4)
		ret[2] = uint8(length >> 12)
		ret[3] = uint8(length >> 20)
	}

	return ret
}

func isLeadNameChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || c == '_'
}

func isNameChar(c byte) bool {
	return isLeadNameChar(c) || (c >= '0' && c <= '9')
}

// EncodeNameString converts an ASL path such as "\_SB.L003", "^PCI0" or
// "_UID" to its AML NameString encoding. Segments shorter than four
// characters are padded with '_'.
func EncodeNameString(path string) ([]byte, error) {
	var out []byte

	str := path

	if strings.HasPrefix(str, "\\") {
		out = append(out, byte(OpRootChar))
		str = str[1:]
	} else {
		for strings.HasPrefix(str, "^") {
			out = append(out, byte(OpParentPrefix))
			str = str[1:]
		}
	}

	if str == "" {
		return append(out, 0x00), nil
	}

	segs := strings.Split(str, ".")

	switch {
	case len(segs) == 2:
		out = append(out, byte(OpDualNamePrefix))
	case len(segs) > 255:
		return nil, fmt.Errorf("name %q: too many segments: %w", path, acpi.ErrInvalidParameter)
	case len(segs) > 2:
		out = append(out, byte(OpMultiNamePrefix), byte(len(segs)))
	}

	for _, seg := range segs {
		if len(seg) == 0 || len(seg) > NameSegSize || !isLeadNameChar(seg[0]) {
			return nil, fmt.Errorf("name %q: segment %q: %w", path, seg, acpi.ErrInvalidParameter)
		}

		for i := 0; i < NameSegSize; i++ {
			switch {
			case i >= len(seg):
				out = append(out, '_')
			case isNameChar(seg[i]):
				out = append(out, seg[i])
			default:
				return nil, fmt.Errorf("name %q: segment %q: %w", path, seg, acpi.ErrInvalidParameter)
			}
		}
	}

	return out, nil
}

// EncodeInteger returns the shortest integer opcode for v and the bytes
// of its data argument, if any.
func EncodeInteger(v uint64) (AMLOp, []byte) {
	switch {
	case v == 0:
		return OpZero, nil
	case v == 1:
		return OpOne, nil
	case v <= 0xff:
		return OpBytePrefix, []byte{uint8(v)}
	case v <= 0xffff:
		data := make([]byte, 2)
		binary.LittleEndian.PutUint16(data, uint16(v))

		return OpWordPrefix, data
	case v <= 0xffffffff:
		data := make([]byte, 4)
		binary.LittleEndian.PutUint32(data, uint32(v))

		return OpDWordPrefix, data
	default:
		data := make([]byte, 8)
		binary.LittleEndian.PutUint64(data, v)

		return OpQWordPrefix, data
	}
}

// EncodeEisaID compresses a 7 character EISA id such as "PNP0A08" into
// its 32-bit form.
func EncodeEisaID(str string) (uint32, error) {
	if len(str) != 7 {
		return 0, fmt.Errorf("eisa id %q: %w", str, acpi.ErrInvalidParameter)
	}

	for i := 0; i < 3; i++ {
		if str[i] < 'A' || str[i] > 'Z' {
			return 0, fmt.Errorf("eisa id %q: %w", str, acpi.ErrInvalidParameter)
		}
	}

	n1, err := strconv.ParseUint(str[3:], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("eisa id %q: %w", str, acpi.ErrInvalidParameter)
	}

	var eisaid uint32
	eisaid |= (uint32(str[0]-0x40) & 0x1F) << 26
	eisaid |= (uint32(str[1]-0x40) & 0x1F) << 21
	eisaid |= (uint32(str[2]-0x40) & 0x1F) << 16
	eisaid |= uint32(n1)

	// The compressed id is stored big-endian.
	return eisaid>>24 | (eisaid>>8)&0xff00 | (eisaid<<8)&0xff0000 | eisaid<<24, nil
}

// EncodeString returns the null-terminated ASCII form of str.
func EncodeString(str string) ([]byte, error) {
	out := make([]byte, 0, len(str)+1)

	for i := 0; i < len(str); i++ {
		if str[i] == 0 || str[i] > 0x7f {
			return nil, fmt.Errorf("string %q: %w", str, acpi.ErrInvalidParameter)
		}

		out = append(out, str[i])
	}

	return append(out, 0x0), nil
}
