package aml

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

type NodeType uint8

const (
	NodeRoot NodeType = iota + 1
	NodeObject
	NodeData
)

// Node is implemented by every element of an AML tree.
type Node interface {
	// Type returns whether this is a root, object or data node.
	Type() NodeType

	// Parent returns the node holding this one, or nil if detached.
	Parent() Node

	setParent(Node)
	allocator() Allocator
}

// container is implemented by nodes owning a variable argument list.
type container interface {
	Node
	varArgs() *[]Node
}

type DataType uint8

const (
	DataNameString DataType = iota + 1
	DataString
	DataUInt
	DataRaw
	DataResourceData
)

// RootNode is the root of a definition block. It only holds the table
// identification and a list of terms.
type RootNode struct {
	info  acpi.HeaderInfo
	vars  []Node
	alloc Allocator
}

// NewRootNode creates the root of a definition block.
func NewRootNode(a Allocator, info acpi.HeaderInfo) (*RootNode, error) {
	if !info.Signature.Valid() {
		return nil, fmt.Errorf("root node: signature %q: %w", info.Signature, acpi.ErrInvalidParameter)
	}

	r := &RootNode{info: info, alloc: a}
	if err := a.Alloc(r); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RootNode) Type() NodeType {
	return NodeRoot
}

func (r *RootNode) Parent() Node {
	return nil
}

func (r *RootNode) setParent(Node) {}

func (r *RootNode) allocator() Allocator {
	return r.alloc
}

func (r *RootNode) varArgs() *[]Node {
	return &r.vars
}

func (r *RootNode) HeaderInfo() acpi.HeaderInfo {
	return r.info
}

// ObjectNode is an AML object: an opcode with fixed arguments and, for
// some opcodes, a variable argument list.
type ObjectNode struct {
	op     AMLOp
	fixed  []Node
	vars   []Node
	parent Node
	alloc  Allocator
}

// NewObjectNode creates a detached object node for op. Its fixed
// arguments are empty until set with SetFixedArgument.
func NewObjectNode(a Allocator, op AMLOp) (*ObjectNode, error) {
	info, ok := opTable[op]
	if !ok {
		return nil, fmt.Errorf("object node: opcode %#x: %w", uint16(op), acpi.ErrInvalidParameter)
	}

	n := &ObjectNode{op: op, fixed: make([]Node, info.fixed), alloc: a}
	if err := a.Alloc(n); err != nil {
		return nil, err
	}

	return n, nil
}

func (n *ObjectNode) Type() NodeType {
	return NodeObject
}

func (n *ObjectNode) Parent() Node {
	return n.parent
}

func (n *ObjectNode) setParent(p Node) {
	n.parent = p
}

func (n *ObjectNode) allocator() Allocator {
	return n.alloc
}

func (n *ObjectNode) varArgs() *[]Node {
	return &n.vars
}

// Op returns the opcode of the object.
func (n *ObjectNode) Op() AMLOp {
	return n.op
}

// VarArgs returns a copy of the variable argument list.
func (n *ObjectNode) VarArgs() []Node {
	return append([]Node(nil), n.vars...)
}

// DataNode holds a byte sequence: a NameString, a string, an integer or a
// resource data element.
type DataNode struct {
	dataType DataType
	buf      []byte
	parent   Node
	alloc    Allocator
}

// NewDataNode creates a detached data node holding a copy of data.
func NewDataNode(a Allocator, t DataType, data []byte) (*DataNode, error) {
	if t < DataNameString || t > DataResourceData || len(data) == 0 {
		return nil, fmt.Errorf("data node: type %d, %d bytes: %w", t, len(data), acpi.ErrInvalidParameter)
	}

	d := &DataNode{dataType: t, buf: append([]byte(nil), data...), alloc: a}
	if err := a.Alloc(d); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DataNode) Type() NodeType {
	return NodeData
}

func (d *DataNode) Parent() Node {
	return d.parent
}

func (d *DataNode) setParent(p Node) {
	d.parent = p
}

func (d *DataNode) allocator() Allocator {
	return d.alloc
}

// DataType returns the kind of data held by the node.
func (d *DataNode) DataType() DataType {
	return d.dataType
}

// Bytes returns the raw content of the node.
func (d *DataNode) Bytes() []byte {
	return d.buf
}

// HasOpCode reports whether n is an object node with opcode op.
func HasOpCode(n Node, op AMLOp) bool {
	o, ok := n.(*ObjectNode)

	return ok && o != nil && o.op == op
}
