// Package codegen generates AML objects and resource data from their ASL
// description.
//
// Functions taking a parent attach the generated object at the end of
// the variable argument list of parent. When parent is nil, the caller
// owns the returned object and must attach it or delete it. Nothing is
// left allocated when a function fails.
package codegen

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

type CodeGen struct {
	alloc aml.Allocator
}

// New returns a generator creating its nodes through a. A nil a means
// aml.Heap.
func New(a aml.Allocator) *CodeGen {
	if a == nil {
		a = aml.Heap
	}

	return &CodeGen{alloc: a}
}

func attach(parent, n aml.Node) error {
	if parent == nil {
		return nil
	}

	if err := aml.VarListAddTail(parent, n); err != nil {
		_ = aml.DeleteTree(n)

		return err
	}

	return nil
}

// object creates an object of opcode op whose first fixed argument is
// the NameString path.
func (g *CodeGen) object(op aml.AMLOp, path string) (*aml.ObjectNode, error) {
	b, err := aml.EncodeNameString(path)
	if err != nil {
		return nil, err
	}

	n, err := aml.NewObjectNode(g.alloc, op)
	if err != nil {
		return nil, err
	}

	s, err := aml.NewDataNode(g.alloc, aml.DataNameString, b)
	if err != nil {
		_ = aml.DeleteTree(n)

		return nil, err
	}

	if err := aml.SetFixedArgument(n, 0, s); err != nil {
		_ = aml.DeleteTree(s)
		_ = aml.DeleteTree(n)

		return nil, err
	}

	return n, nil
}

// name creates Name(path, value). It takes ownership of value, which is
// deleted on failure.
func (g *CodeGen) name(path string, value, parent aml.Node) (*aml.ObjectNode, error) {
	n, err := g.object(aml.OpName, path)
	if err != nil {
		_ = aml.DeleteTree(value)

		return nil, err
	}

	if err := aml.SetFixedArgument(n, 1, value); err != nil {
		_ = aml.DeleteTree(value)
		_ = aml.DeleteTree(n)

		return nil, err
	}

	if err := attach(parent, n); err != nil {
		return nil, err
	}

	return n, nil
}

// String creates a detached String object.
func (g *CodeGen) String(str string) (*aml.ObjectNode, error) {
	b, err := aml.EncodeString(str)
	if err != nil {
		return nil, err
	}

	n, err := aml.NewObjectNode(g.alloc, aml.OpString)
	if err != nil {
		return nil, err
	}

	d, err := aml.NewDataNode(g.alloc, aml.DataString, b)
	if err != nil {
		_ = aml.DeleteTree(n)

		return nil, err
	}

	if err := aml.SetFixedArgument(n, 0, d); err != nil {
		_ = aml.DeleteTree(d)
		_ = aml.DeleteTree(n)

		return nil, err
	}

	return n, nil
}

// Integer creates a detached integer object.
func (g *CodeGen) Integer(v uint64) (*aml.ObjectNode, error) {
	return aml.NewInteger(g.alloc, v)
}

// DefinitionBlock creates the root of a definition block:
//
//	DefinitionBlock ("", signature, revision, oemID, oemTableID, oemRev) {}
func (g *CodeGen) DefinitionBlock(info acpi.HeaderInfo) (*aml.RootNode, error) {
	return aml.NewRootNode(g.alloc, info)
}

// Scope generates Scope(path) {}.
func (g *CodeGen) Scope(path string, parent aml.Node) (*aml.ObjectNode, error) {
	n, err := g.object(aml.OpScope, path)
	if err != nil {
		return nil, err
	}

	if err := attach(parent, n); err != nil {
		return nil, err
	}

	return n, nil
}

// Device generates Device(name) {}.
func (g *CodeGen) Device(name string, parent aml.Node) (*aml.ObjectNode, error) {
	n, err := g.object(aml.OpDevice, name)
	if err != nil {
		return nil, err
	}

	if err := attach(parent, n); err != nil {
		return nil, err
	}

	return n, nil
}

// NameInteger generates Name(name, v).
func (g *CodeGen) NameInteger(name string, v uint64, parent aml.Node) (*aml.ObjectNode, error) {
	i, err := g.Integer(v)
	if err != nil {
		return nil, err
	}

	return g.name(name, i, parent)
}

// NameString generates Name(name, "str").
func (g *CodeGen) NameString(name, str string, parent aml.Node) (*aml.ObjectNode, error) {
	s, err := g.String(str)
	if err != nil {
		return nil, err
	}

	return g.name(name, s, parent)
}

// NameEisaID generates Name(name, EISAID("id")).
func (g *CodeGen) NameEisaID(name, id string, parent aml.Node) (*aml.ObjectNode, error) {
	v, err := aml.EncodeEisaID(id)
	if err != nil {
		return nil, err
	}

	return g.NameInteger(name, uint64(v), parent)
}

// NamePackage generates Name(name, Package() {}) and returns the Name
// object.
func (g *CodeGen) NamePackage(name string, parent aml.Node) (*aml.ObjectNode, error) {
	p, err := aml.NewObjectNode(g.alloc, aml.OpPackage)
	if err != nil {
		return nil, err
	}

	return g.name(name, p, parent)
}

// ResourceTemplate generates an empty detached ResourceTemplate() {}: a
// Buffer holding an End Tag.
func (g *CodeGen) ResourceTemplate() (*aml.ObjectNode, error) {
	buf, err := aml.NewObjectNode(g.alloc, aml.OpBuffer)
	if err != nil {
		return nil, err
	}

	if _, err := g.EndTag(0, buf); err != nil {
		_ = aml.DeleteTree(buf)

		return nil, err
	}

	return buf, nil
}

// NameResourceTemplate generates Name(name, ResourceTemplate() {}) and
// returns the Name object. Resource data encoders take it as owner.
func (g *CodeGen) NameResourceTemplate(name string, parent aml.Node) (*aml.ObjectNode, error) {
	rt, err := g.ResourceTemplate()
	if err != nil {
		return nil, err
	}

	return g.name(name, rt, parent)
}

// MethodRetNameString generates:
//
//	Method(name, argCount, serialized, syncLevel) {
//	  Return (retName)
//	}
func (g *CodeGen) MethodRetNameString(name, retName string, argCount uint8, serialized bool, syncLevel uint8,
	parent aml.Node,
) (*aml.ObjectNode, error) {
	if argCount > 7 || syncLevel > 15 {
		return nil, fmt.Errorf("method %s: %d args, sync level %d: %w",
			name, argCount, syncLevel, acpi.ErrInvalidParameter)
	}

	ret, err := g.object(aml.OpReturn, retName)
	if err != nil {
		return nil, err
	}

	m, err := g.object(aml.OpMethod, name)
	if err != nil {
		_ = aml.DeleteTree(ret)

		return nil, err
	}

	if err := g.buildMethod(m, ret, argCount|boolBit(serialized, 3)|syncLevel<<4); err != nil {
		_ = aml.DeleteTree(m)

		return nil, err
	}

	if err := attach(parent, m); err != nil {
		return nil, err
	}

	return m, nil
}

// buildMethod sets the flags of m and appends ret to its body. ret is
// deleted on failure.
func (g *CodeGen) buildMethod(m, ret *aml.ObjectNode, flags uint8) error {
	f, err := aml.NewDataNode(g.alloc, aml.DataUInt, []byte{flags})
	if err != nil {
		_ = aml.DeleteTree(ret)

		return err
	}

	if err := aml.SetFixedArgument(m, 1, f); err != nil {
		_ = aml.DeleteTree(f)
		_ = aml.DeleteTree(ret)

		return err
	}

	if err := aml.VarListAddTail(m, ret); err != nil {
		_ = aml.DeleteTree(ret)

		return err
	}

	return nil
}
