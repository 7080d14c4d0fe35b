package acpi

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// HeaderSize is the size of the common system description table header.
const HeaderSize = 36

type Header struct {
	Signature  [4]byte
	Length     uint32
	Rev        uint8
	Checksum   uint8
	OEMId      [6]byte
	OEMTableID [8]byte
	OEMRev     uint32
	CreatorID  [4]byte
	CreatorRev uint32
}

// padID copies id into dst and fills the remainder with spaces, the
// usual padding of OEM identifiers.
func padID(dst []byte, id string) {
	for i := range dst {
		if i < len(id) {
			dst[i] = id[i]
		} else {
			dst[i] = ' '
		}
	}
}

func convertOEMID(oemID string) [6]byte {
	var id [6]byte

	padID(id[:], oemID)

	return id
}

func convertOEMTableID(oemTableID string) [8]byte {
	var id [8]byte

	padID(id[:], oemTableID)

	return id
}

func convertCreatorID(creatorID string) [4]byte {
	var id [4]byte

	padID(id[:], creatorID)

	return id
}

// HeaderInfo holds the identification fields of a table header.
type HeaderInfo struct {
	Signature  Signature
	Revision   uint8
	OEMID      string
	OEMTableID string
	OEMRev     uint32
	CreatorID  string
	CreatorRev uint32
}

// NewHeader builds a header for a table of the given total length.
// Identifiers longer than their field are rejected.
func NewHeader(info HeaderInfo, length uint32) (Header, error) {
	if !info.Signature.Valid() ||
		len(info.OEMID) > 6 ||
		len(info.OEMTableID) > 8 ||
		len(info.CreatorID) > 4 ||
		length < HeaderSize {
		return Header{}, fmt.Errorf("table header %+v: %w", info, ErrInvalidParameter)
	}

	return Header{
		Signature:  info.Signature.ToBytes(),
		Length:     length,
		Rev:        info.Revision,
		OEMId:      convertOEMID(info.OEMID),
		OEMTableID: convertOEMTableID(info.OEMTableID),
		OEMRev:     info.OEMRev,
		CreatorID:  convertCreatorID(info.CreatorID),
		CreatorRev: info.CreatorRev,
	}, nil
}

func (h *Header) ToBytes() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ParseHeader decodes the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	var h Header

	if len(b) < HeaderSize {
		return h, fmt.Errorf("header: %d bytes: %w", len(b), ErrInvalidParameter)
	}

	if err := binary.Read(bytes.NewReader(b[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, err
	}

	return h, nil
}
