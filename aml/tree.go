package aml

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// SetFixedArgument attaches arg as fixed argument index of n. The slot
// must be empty and arg must be detached.
func SetFixedArgument(n *ObjectNode, index int, arg Node) error {
	if n == nil || arg == nil || arg.Parent() != nil ||
		index < 0 || index >= len(n.fixed) || n.fixed[index] != nil {
		return fmt.Errorf("set fixed argument %d: %w", index, acpi.ErrInvalidParameter)
	}

	if _, ok := arg.(*RootNode); ok {
		return fmt.Errorf("set fixed argument %d: root node: %w", index, acpi.ErrInvalidParameter)
	}

	n.fixed[index] = arg
	arg.setParent(n)

	return nil
}

// FixedArgument returns fixed argument index of n, or nil if there is no
// such argument.
func FixedArgument(n *ObjectNode, index int) Node {
	if n == nil || index < 0 || index >= len(n.fixed) {
		return nil
	}

	return n.fixed[index]
}

func varList(parent Node) (*[]Node, error) {
	c, ok := parent.(container)
	if !ok || c == nil {
		return nil, fmt.Errorf("node %T has no variable arguments: %w", parent, acpi.ErrInvalidParameter)
	}

	if o, ok := parent.(*ObjectNode); ok && !opTable[o.op].vars {
		return nil, fmt.Errorf("%v has no variable arguments: %w", o.op, acpi.ErrInvalidParameter)
	}

	return c.varArgs(), nil
}

// VarListAddTail appends the detached node child at the end of the
// variable argument list of parent.
func VarListAddTail(parent, child Node) error {
	if parent == nil || child == nil || child.Parent() != nil {
		return fmt.Errorf("add tail: %w", acpi.ErrInvalidParameter)
	}

	if _, ok := child.(*RootNode); ok {
		return fmt.Errorf("add tail: root node: %w", acpi.ErrInvalidParameter)
	}

	vars, err := varList(parent)
	if err != nil {
		return err
	}

	*vars = append(*vars, child)
	child.setParent(parent)

	return nil
}

// varListAddBefore inserts the detached node child just before ref in the
// variable argument list holding ref.
func varListAddBefore(ref, child Node) error {
	vars, err := varList(ref.Parent())
	if err != nil {
		return err
	}

	for i, n := range *vars {
		if n != ref {
			continue
		}

		*vars = append(*vars, nil)
		copy((*vars)[i+1:], (*vars)[i:])
		(*vars)[i] = child
		child.setParent(ref.Parent())

		return nil
	}

	return fmt.Errorf("add before: reference not in parent list: %w", acpi.ErrInternal)
}

// NextVariableArgument returns the variable argument of parent following
// cur, or the first one when cur is nil. It returns nil at the end of the
// list.
func NextVariableArgument(parent, cur Node) Node {
	vars, err := varList(parent)
	if err != nil {
		return nil
	}

	if cur == nil {
		if len(*vars) == 0 {
			return nil
		}

		return (*vars)[0]
	}

	for i, n := range *vars {
		if n == cur && i+1 < len(*vars) {
			return (*vars)[i+1]
		}
	}

	return nil
}

// AppendRdNode adds the resource data node rd to the resource list of the
// Buffer object buffer. rd goes after the last element but before the
// End Tag. Without an End Tag, rd is appended at the end.
func AppendRdNode(buffer *ObjectNode, rd *DataNode) error {
	if !HasOpCode(buffer, OpBuffer) || rd == nil ||
		rd.dataType != DataResourceData || rd.parent != nil {
		return fmt.Errorf("append resource data: %w", acpi.ErrInvalidParameter)
	}

	var last Node
	if n := len(buffer.vars); n > 0 {
		last = buffer.vars[n-1]
	}

	if last == nil || !IsEndTag(last) {
		return VarListAddTail(buffer, rd)
	}

	// A list holds at most one End Tag.
	if IsEndTag(rd) {
		return fmt.Errorf("append resource data: list already terminated: %w", acpi.ErrInvalidParameter)
	}

	return varListAddBefore(last, rd)
}

func detach(n Node) {
	switch p := n.Parent().(type) {
	case *ObjectNode:
		for i, f := range p.fixed {
			if f == n {
				p.fixed[i] = nil
			}
		}

		p.vars = removeNode(p.vars, n)
	case *RootNode:
		p.vars = removeNode(p.vars, n)
	}

	n.setParent(nil)
}

func removeNode(list []Node, n Node) []Node {
	for i, v := range list {
		if v == n {
			return append(list[:i], list[i+1:]...)
		}
	}

	return list
}

// DeleteTree detaches n from its parent and frees n and all the nodes
// below it.
func DeleteTree(n Node) error {
	if n == nil {
		return fmt.Errorf("delete tree: %w", acpi.ErrInvalidParameter)
	}

	if n.Parent() != nil {
		detach(n)
	}

	freeTree(n)

	return nil
}

func freeTree(n Node) {
	switch v := n.(type) {
	case *ObjectNode:
		for _, f := range v.fixed {
			if f != nil {
				freeTree(f)
			}
		}

		for _, c := range v.vars {
			freeTree(c)
		}

		v.fixed = nil
		v.vars = nil
	case *RootNode:
		for _, c := range v.vars {
			freeTree(c)
		}

		v.vars = nil
	}

	n.allocator().Free(n)
}
