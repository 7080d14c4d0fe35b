package aml

import (
	"encoding/binary"
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// NewInteger creates a detached integer object using the shortest
// encoding of v.
func NewInteger(a Allocator, v uint64) (*ObjectNode, error) {
	op, data := EncodeInteger(v)

	n, err := NewObjectNode(a, op)
	if err != nil {
		return nil, err
	}

	if data == nil {
		return n, nil
	}

	d, err := NewDataNode(a, DataUInt, data)
	if err != nil {
		_ = DeleteTree(n)

		return nil, err
	}

	if err := SetFixedArgument(n, 0, d); err != nil {
		_ = DeleteTree(d)
		_ = DeleteTree(n)

		return nil, err
	}

	return n, nil
}

func isInteger(n *ObjectNode) bool {
	switch n.op {
	case OpZero, OpOne, OpOnes, OpBytePrefix, OpWordPrefix, OpDWordPrefix, OpQWordPrefix:
		return true
	}

	return false
}

// IntegerValue returns the value of an integer object.
func IntegerValue(n Node) (uint64, error) {
	o, ok := n.(*ObjectNode)
	if !ok || o == nil || !isInteger(o) {
		return 0, fmt.Errorf("integer value of %T: %w", n, acpi.ErrInvalidParameter)
	}

	switch o.op {
	case OpZero:
		return 0, nil
	case OpOne:
		return 1, nil
	case OpOnes:
		return ^uint64(0), nil
	}

	d, ok := o.fixed[0].(*DataNode)
	if !ok || d == nil {
		return 0, fmt.Errorf("integer %v without data: %w", o.op, acpi.ErrInternal)
	}

	var buf [8]byte

	copy(buf[:], d.buf)

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// SetInteger updates the value of an integer object in place, switching
// to another integer opcode when v needs a different encoding.
func SetInteger(n *ObjectNode, v uint64) error {
	if n == nil || !isInteger(n) {
		return fmt.Errorf("set integer: %w", acpi.ErrInvalidParameter)
	}

	op, data := EncodeInteger(v)

	var cur *DataNode
	if len(n.fixed) == 1 {
		cur, _ = n.fixed[0].(*DataNode)
	}

	switch {
	case data == nil && cur != nil:
		if err := DeleteTree(cur); err != nil {
			return err
		}

		n.fixed = nil
	case data != nil && cur == nil:
		d, err := NewDataNode(n.alloc, DataUInt, data)
		if err != nil {
			return err
		}

		n.fixed = make([]Node, 1)
		if err := SetFixedArgument(n, 0, d); err != nil {
			_ = DeleteTree(d)

			return err
		}
	case data != nil:
		cur.buf = data
	}

	n.op = op

	return nil
}
