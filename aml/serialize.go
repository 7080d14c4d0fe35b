package aml

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// Serialize walks the definition block rooted at root and returns the
// finished table, with length and checksum filled in.
func Serialize(root *RootNode) (*acpi.Table, error) {
	if root == nil {
		return nil, fmt.Errorf("serialize: %w", acpi.ErrInvalidParameter)
	}

	body, err := appendList(nil, root.vars)
	if err != nil {
		return nil, err
	}

	return acpi.NewTable(root.info, body)
}

// Bytes returns the AML encoding of a single object or data node.
func Bytes(n Node) ([]byte, error) {
	return appendNode(nil, n)
}

func appendList(b []byte, list []Node) ([]byte, error) {
	var err error

	for _, n := range list {
		if b, err = appendNode(b, n); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func appendNode(b []byte, n Node) ([]byte, error) {
	switch v := n.(type) {
	case *DataNode:
		return append(b, v.buf...), nil
	case *ObjectNode:
		return v.appendTo(b)
	default:
		return nil, fmt.Errorf("serialize %T: %w", n, acpi.ErrInvalidParameter)
	}
}

func (n *ObjectNode) appendTo(b []byte) ([]byte, error) {
	info := opTable[n.op]

	var (
		body []byte
		err  error
	)

	for i, f := range n.fixed {
		if f == nil {
			return nil, fmt.Errorf("serialize %v: fixed argument %d missing: %w", n.op, i, acpi.ErrInvalidParameter)
		}

		if body, err = appendNode(body, f); err != nil {
			return nil, err
		}
	}

	vars, err := appendList(nil, n.vars)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case OpBuffer:
		op, data := EncodeInteger(uint64(len(vars)))
		body = append(op.appendTo(body), data...)
	case OpPackage:
		if len(n.vars) > 0xff {
			return nil, fmt.Errorf("serialize package: %d elements: %w", len(n.vars), acpi.ErrInvalidParameter)
		}

		body = append(body, uint8(len(n.vars)))
	}

	body = append(body, vars...)

	b = n.op.appendTo(b)

	if info.pkgLen {
		b = append(b, CalcPkgLength(uint32(len(body)), true)...)
	}

	return append(b, body...), nil
}
