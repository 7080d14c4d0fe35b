package aml_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

func newRd(t *testing.T, a aml.Allocator, b ...byte) *aml.DataNode {
	t.Helper()

	d, err := aml.NewDataNode(a, aml.DataResourceData, b)
	if err != nil {
		t.Fatal(err)
	}

	return d
}

func TestAppendRdNodeBeforeEndTag(t *testing.T) {
	t.Parallel()

	a := &aml.Tracker{}

	buf, err := aml.NewObjectNode(a, aml.OpBuffer)
	if err != nil {
		t.Fatal(err)
	}

	first := newRd(t, a, aml.RdExtIRQDesc, 6, 0, 0, 1, 1, 0, 0, 0)
	if err := aml.AppendRdNode(buf, first); err != nil {
		t.Fatal(err)
	}

	end := newRd(t, a, aml.RdEndTag, 0)
	if err := aml.AppendRdNode(buf, end); err != nil {
		t.Fatal(err)
	}

	second := newRd(t, a, aml.RdExtIRQDesc, 6, 0, 0, 1, 2, 0, 0, 0)
	if err := aml.AppendRdNode(buf, second); err != nil {
		t.Fatal(err)
	}

	got := buf.VarArgs()
	if len(got) != 3 || got[0] != first || got[1] != second || got[2] != end {
		t.Fatalf("unexpected order: %v", got)
	}

	if err := aml.AppendRdNode(buf, newRd(t, a, aml.RdEndTag, 0)); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("second end tag accepted: %v", err)
	}

	if aml.NextVariableArgument(buf, nil) != first || aml.NextVariableArgument(buf, second) != end ||
		aml.NextVariableArgument(buf, end) != nil {
		t.Fatal("NextVariableArgument walk does not match the list")
	}
}

func TestAppendRdNodeRejects(t *testing.T) {
	t.Parallel()

	name, err := aml.NewObjectNode(aml.Heap, aml.OpName)
	if err != nil {
		t.Fatal(err)
	}

	if err := aml.AppendRdNode(name, newRd(t, aml.Heap, aml.RdEndTag, 0)); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("append to a Name object: %v", err)
	}

	buf, err := aml.NewObjectNode(aml.Heap, aml.OpBuffer)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := aml.NewDataNode(aml.Heap, aml.DataRaw, []byte{1})
	if err != nil {
		t.Fatal(err)
	}

	if err := aml.AppendRdNode(buf, raw); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("append non resource data: %v", err)
	}
}

func TestDeleteTree(t *testing.T) {
	t.Parallel()

	a := &aml.Tracker{}

	root, err := aml.NewRootNode(a, acpi.HeaderInfo{Signature: acpi.SigSSDT})
	if err != nil {
		t.Fatal(err)
	}

	pkg, err := aml.NewObjectNode(a, aml.OpPackage)
	if err != nil {
		t.Fatal(err)
	}

	for i := uint64(0); i < 4; i++ {
		n, err := aml.NewInteger(a, i)
		if err != nil {
			t.Fatal(err)
		}

		if err := aml.VarListAddTail(pkg, n); err != nil {
			t.Fatal(err)
		}
	}

	if err := aml.VarListAddTail(root, pkg); err != nil {
		t.Fatal(err)
	}

	// root, package, 4 integers and 2 data nodes for 2 and 3.
	if a.Live() != 8 {
		t.Fatalf("live nodes: expected: %v, actual: %v", 8, a.Live())
	}

	if err := aml.VarListAddTail(root, pkg); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("attached node added twice: %v", err)
	}

	if err := aml.DeleteTree(pkg); err != nil {
		t.Fatal(err)
	}

	if a.Live() != 1 || aml.NextVariableArgument(root, nil) != nil {
		t.Fatalf("package not released: %d live", a.Live())
	}

	if err := aml.DeleteTree(root); err != nil {
		t.Fatal(err)
	}

	if a.Live() != 0 || a.DoubleFrees() != 0 {
		t.Fatalf("live: %d, double frees: %d", a.Live(), a.DoubleFrees())
	}
}

func TestTrackerFailAt(t *testing.T) {
	t.Parallel()

	a := &aml.Tracker{FailAt: 2}

	// The integer object succeeds, its data node does not.
	if _, err := aml.NewInteger(a, 0x1234); !errors.Is(err, acpi.ErrOutOfResources) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrOutOfResources, err)
	}

	if a.Live() != 0 {
		t.Fatalf("%d nodes leaked", a.Live())
	}
}

func TestSetInteger(t *testing.T) {
	t.Parallel()

	a := &aml.Tracker{}

	n, err := aml.NewInteger(a, 0)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []uint64{1, 2, 0x300, 0x10000, 1 << 40, 0, 7} {
		if err := aml.SetInteger(n, v); err != nil {
			t.Fatal(err)
		}

		got, err := aml.IntegerValue(n)
		if err != nil {
			t.Fatal(err)
		}

		if got != v {
			t.Fatalf("expected: %v, actual: %v", v, got)
		}
	}

	// The integer object and the data node for 7.
	if a.Live() != 2 {
		t.Fatalf("live nodes: expected: %v, actual: %v", 2, a.Live())
	}
}

func TestSerialize(t *testing.T) {
	t.Parallel()

	root, err := aml.NewRootNode(aml.Heap, acpi.HeaderInfo{
		Signature:  acpi.SigSSDT,
		Revision:   2,
		OEMID:      "GOKVM",
		OEMTableID: "TEST",
		CreatorID:  "GACT",
	})
	if err != nil {
		t.Fatal(err)
	}

	dev, err := aml.NewObjectNode(aml.Heap, aml.OpDevice)
	if err != nil {
		t.Fatal(err)
	}

	devName, err := aml.NewDataNode(aml.Heap, aml.DataNameString, []byte("C000"))
	if err != nil {
		t.Fatal(err)
	}

	if err := aml.SetFixedArgument(dev, 0, devName); err != nil {
		t.Fatal(err)
	}

	name, err := aml.NewObjectNode(aml.Heap, aml.OpName)
	if err != nil {
		t.Fatal(err)
	}

	uid, err := aml.NewDataNode(aml.Heap, aml.DataNameString, []byte("_UID"))
	if err != nil {
		t.Fatal(err)
	}

	zero, err := aml.NewInteger(aml.Heap, 0)
	if err != nil {
		t.Fatal(err)
	}

	if err := aml.SetFixedArgument(name, 0, uid); err != nil {
		t.Fatal(err)
	}

	if err := aml.SetFixedArgument(name, 1, zero); err != nil {
		t.Fatal(err)
	}

	if err := aml.VarListAddTail(dev, name); err != nil {
		t.Fatal(err)
	}

	if err := aml.VarListAddTail(root, dev); err != nil {
		t.Fatal(err)
	}

	table, err := aml.Serialize(root)
	if err != nil {
		t.Fatal(err)
	}

	exp := []byte{0x5b, 0x82, 0x0b, 'C', '0', '0', '0', 0x08, '_', 'U', 'I', 'D', 0x00}
	if !bytes.Equal(table.Body, exp) {
		t.Fatalf("byte not match. Have: % x, want: % x", table.Body, exp)
	}

	if err := table.Verify(); err != nil {
		t.Fatal(err)
	}

	if table.Length != uint32(acpi.HeaderSize+len(exp)) {
		t.Fatalf("length: expected: %v, actual: %v", acpi.HeaderSize+len(exp), table.Length)
	}
}

func TestSerializeMissingArgument(t *testing.T) {
	t.Parallel()

	name, err := aml.NewObjectNode(aml.Heap, aml.OpName)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := aml.Bytes(name); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("incomplete Name serialized: %v", err)
	}
}

func TestSerializeBuffer(t *testing.T) {
	t.Parallel()

	buf, err := aml.NewObjectNode(aml.Heap, aml.OpBuffer)
	if err != nil {
		t.Fatal(err)
	}

	if err := aml.VarListAddTail(buf, newRd(t, aml.Heap, aml.RdEndTag, 0)); err != nil {
		t.Fatal(err)
	}

	b, err := aml.Bytes(buf)
	if err != nil {
		t.Fatal(err)
	}

	// Buffer, PkgLength, BytePrefix 2, end tag.
	exp := []byte{0x11, 0x05, 0x0a, 0x02, 0x79, 0x00}
	if !bytes.Equal(b, exp) {
		t.Fatalf("byte not match. Have: % x, want: % x", b, exp)
	}
}
