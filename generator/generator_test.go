package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/platform"
)

// fake builds an empty table, or fails with err.
type fake struct {
	id  string
	err error
}

func (f fake) Info() generator.Info {
	return generator.Info{
		ID:          f.id,
		Description: "FAKE",
		Signature:   acpi.SigSSDT,
		Revision:    2,
		MinRevision: 1,
		CreatorID:   "TEST",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

func (f fake) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if f.err != nil {
		return nil, f.err
	}

	hdr, err := generator.Header(f.Info(), t, p)
	if err != nil {
		return nil, err
	}

	return acpi.NewTable(hdr, []byte{0x5b})
}

func (f fake) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}

func store() *platform.Store {
	return &platform.Store{
		Info: platform.ConfigurationManagerInfo{OEMID: "GOKVM"},
		Tables: []platform.AcpiTableInfo{
			{Signature: "SSDT", GeneratorID: "a", OEMTableID: "A"},
			{Signature: "SSDT", GeneratorID: "b", OEMTableID: "B"},
			{Signature: "SSDT", GeneratorID: "c", OEMTableID: "C"},
		},
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r, err := generator.NewRegistry(fake{id: "b"}, fake{id: "a"})
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Register(fake{id: "a"}); !errors.Is(err, acpi.ErrAlreadyStarted) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrAlreadyStarted, err)
	}

	if err := r.Register(fake{}); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
	}

	if err := r.Register(nil); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
	}

	list := r.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := r.Lookup("b"); err != nil {
		t.Fatal(err)
	}

	if err := r.Deregister("b"); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Lookup("b"); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}

	if err := r.Deregister("b"); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}

	if _, err := generator.NewRegistry(fake{id: "a"}, fake{id: "a"}); !errors.Is(err, acpi.ErrAlreadyStarted) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrAlreadyStarted, err)
	}
}

func TestBuildAll(t *testing.T) {
	t.Parallel()

	r, err := generator.NewRegistry(fake{id: "a"}, fake{id: "b", err: acpi.ErrOutOfResources})
	if err != nil {
		t.Fatal(err)
	}

	results, err := r.BuildAll(context.Background(), store())

	// "b" fails and no generator is registered for "c".
	if !errors.Is(err, acpi.ErrOutOfResources) || !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("result count: expected: %d, actual: %d", 3, len(results))
	}

	if results[0].Err != nil || results[0].Table == nil {
		t.Fatalf("table a: %+v", results[0])
	}

	if results[0].Table.Verify() != nil || string(results[0].Table.OEMTableID[:1]) != "A" {
		t.Fatalf("unexpected table a: %v", results[0].Table)
	}

	if results[1].Table != nil || !errors.Is(results[1].Err, acpi.ErrOutOfResources) {
		t.Fatalf("table b: %+v", results[1])
	}

	if !errors.Is(results[2].Err, acpi.ErrNotFound) {
		t.Fatalf("table c: %+v", results[2])
	}
}

func TestBuildAllSelect(t *testing.T) {
	t.Parallel()

	r, err := generator.NewRegistry(fake{id: "a"}, fake{id: "b"})
	if err != nil {
		t.Fatal(err)
	}

	results, err := r.BuildAll(context.Background(), store(), "b")
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 1 || results[0].Info.GeneratorID != "b" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if _, err := r.BuildAll(context.Background(), store(), "z"); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}

	if _, err := r.BuildAll(context.Background(), &platform.Store{}); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}
}

func TestBuildAllCanceled(t *testing.T) {
	t.Parallel()

	r, err := generator.NewRegistry(fake{id: "a"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.BuildAll(ctx, store(), "a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected: %v, actual: %v", context.Canceled, err)
	}
}

func TestHeader(t *testing.T) {
	t.Parallel()

	info := fake{id: "a"}.Info()
	p := store()

	for _, tt := range []struct {
		name     string
		table    platform.AcpiTableInfo
		revision uint8
		err      error
	}{
		{name: "DefaultRevision", table: platform.AcpiTableInfo{Signature: "SSDT", GeneratorID: "a"}, revision: 2},
		{name: "MinRevision", table: platform.AcpiTableInfo{Signature: "SSDT", GeneratorID: "a", Revision: 1}, revision: 1},
		{
			name:  "RevisionTooHigh",
			table: platform.AcpiTableInfo{Signature: "SSDT", GeneratorID: "a", Revision: 3},
			err:   acpi.ErrInvalidParameter,
		},
		{
			name:  "WrongGenerator",
			table: platform.AcpiTableInfo{Signature: "SSDT", GeneratorID: "b"},
			err:   acpi.ErrInvalidParameter,
		},
		{
			name:  "WrongSignature",
			table: platform.AcpiTableInfo{Signature: "DSDT", GeneratorID: "a"},
			err:   acpi.ErrInvalidParameter,
		},
		{
			name:  "BadSignature",
			table: platform.AcpiTableInfo{Signature: "SSD", GeneratorID: "a"},
			err:   acpi.ErrInvalidParameter,
		},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hdr, err := generator.Header(info, tt.table, p)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected: %v, actual: %v", tt.err, err)
			}

			if err != nil {
				return
			}

			if hdr.Revision != tt.revision || hdr.OEMID != "GOKVM" || hdr.CreatorID != "TEST" {
				t.Fatalf("unexpected header: %+v", hdr)
			}
		})
	}
}

func TestFree(t *testing.T) {
	t.Parallel()

	tbl, err := acpi.NewTable(acpi.HeaderInfo{Signature: acpi.SigSSDT}, []byte{0x5b})
	if err != nil {
		t.Fatal(err)
	}

	if err := generator.Free(tbl); err != nil {
		t.Fatal(err)
	}

	if err := generator.Free(tbl); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
	}

	if err := generator.Free(nil); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
	}
}
