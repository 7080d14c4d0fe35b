package aml

// AMLOp is an AML opcode. Extended opcodes carry the 0x5b prefix in
// their high byte.
type AMLOp uint16

const (
	OpZero AMLOp = 0x00
	OpOne  AMLOp = 0x01

	OpName            AMLOp = 0x08
	OpBytePrefix      AMLOp = 0x0A
	OpWordPrefix      AMLOp = 0x0B
	OpDWordPrefix     AMLOp = 0x0C
	OpString          AMLOp = 0x0D
	OpQWordPrefix     AMLOp = 0x0E
	OpScope           AMLOp = 0x10
	OpBuffer          AMLOp = 0x11
	OpPackage         AMLOp = 0x12
	OpMethod          AMLOp = 0x14
	OpDualNamePrefix  AMLOp = 0x2E
	OpMultiNamePrefix AMLOp = 0x2F
	OpRootChar        AMLOp = 0x5C
	OpParentPrefix    AMLOp = 0x5E
	OpReturn          AMLOp = 0xA4
	OpOnes            AMLOp = 0xFF

	OpExtPrefix AMLOp = 0x5b
	OpDevice    AMLOp = OpExtPrefix<<8 | 0x82
)

// opInfo describes how an object node of a given opcode is laid out:
// how many fixed arguments it takes, whether a PkgLength follows the
// opcode and whether it owns a variable argument list.
type opInfo struct {
	name   string
	fixed  int
	pkgLen bool
	vars   bool
}

// The BufferSize of a Buffer and the NumElements of a Package are not
// stored as arguments, they are derived from the variable list when the
// tree is serialized.
var opTable = map[AMLOp]opInfo{
	OpZero:        {name: "Zero"},
	OpOne:         {name: "One"},
	OpOnes:        {name: "Ones"},
	OpBytePrefix:  {name: "BytePrefix", fixed: 1},
	OpWordPrefix:  {name: "WordPrefix", fixed: 1},
	OpDWordPrefix: {name: "DWordPrefix", fixed: 1},
	OpQWordPrefix: {name: "QWordPrefix", fixed: 1},
	OpString:      {name: "String", fixed: 1},
	OpName:        {name: "Name", fixed: 2},
	OpScope:       {name: "Scope", fixed: 1, pkgLen: true, vars: true},
	OpBuffer:      {name: "Buffer", pkgLen: true, vars: true},
	OpPackage:     {name: "Package", pkgLen: true, vars: true},
	OpMethod:      {name: "Method", fixed: 2, pkgLen: true, vars: true},
	OpReturn:      {name: "Return", fixed: 1},
	OpDevice:      {name: "Device", fixed: 1, pkgLen: true, vars: true},
}

func (op AMLOp) String() string {
	if info, ok := opTable[op]; ok {
		return info.name
	}

	return "Unknown"
}

func (op AMLOp) isExt() bool {
	return op>>8 == OpExtPrefix
}

func (op AMLOp) appendTo(b []byte) []byte {
	if op.isExt() {
		return append(b, byte(OpExtPrefix), byte(op))
	}

	return append(b, byte(op))
}
