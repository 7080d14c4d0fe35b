package platform_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/platform"
)

func loadTestdata(t *testing.T) *platform.Store {
	t.Helper()

	f, err := os.Open("testdata/platform.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s, err := platform.Load(f)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestLoad(t *testing.T) {
	t.Parallel()

	s := loadTestdata(t)

	info, err := s.ConfigurationManagerInfo()
	if err != nil {
		t.Fatal(err)
	}

	if info.OEMID != "GOKVM" {
		t.Fatalf("oem id: expected: %v, actual: %v", "GOKVM", info.OEMID)
	}

	tables, err := s.AcpiTableList()
	if err != nil {
		t.Fatal(err)
	}

	if len(tables) != 5 || tables[0].GeneratorID != "ssdt-cpu-topology" {
		t.Fatalf("unexpected table list: %+v", tables)
	}

	gicc, err := s.GicCInfo(platform.NullToken)
	if err != nil {
		t.Fatal(err)
	}

	if len(gicc) != 4 {
		t.Fatalf("gicc count: expected: %v, actual: %v", 4, len(gicc))
	}

	lpi, err := s.LpiInfo(0x401)
	if err != nil {
		t.Fatal(err)
	}

	if lpi[0].StateName != "WFI" || lpi[0].RegisterEntryMethod.Address != 0xffffffff {
		t.Fatalf("unexpected lpi state: %+v", lpi[0])
	}

	pci, err := s.PciConfigSpaceInfo(platform.NullToken)
	if err != nil {
		t.Fatal(err)
	}

	if pci[0].BaseAddress != 0x4010000000 {
		t.Fatalf("ecam base: expected: %#x, actual: %#x", 0x4010000000, pci[0].BaseAddress)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	s := loadTestdata(t)

	procs, err := s.ProcHierarchyInfo(0x21)
	if err != nil {
		t.Fatal(err)
	}

	if len(procs) != 1 || procs[0].GicCToken != 0x101 {
		t.Fatalf("unexpected proc: %+v", procs)
	}

	refs, err := s.CmRef(0x301)
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 || refs[0] != 0x401 || refs[1] != 0x402 {
		t.Fatalf("unexpected references: %v", refs)
	}

	if _, err := s.GicCInfo(0x999); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}

	empty := &platform.Store{}
	if _, err := empty.ProcHierarchyInfo(platform.NullToken); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}

	if _, err := empty.AcpiTableList(); !errors.Is(err, acpi.ErrNotFound) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrNotFound, err)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		doc  string
	}{
		{name: "Empty", doc: ""},
		{name: "UnknownField", doc: "gicc:\n  - {token: 1, color: red}\n"},
		{name: "DuplicateToken", doc: "gicc:\n  - {token: 1}\n  - {token: 1}\n"},
		{name: "NullToken", doc: "lpi:\n  - {token: 0}\n"},
		{name: "BadSignature", doc: "tables:\n  - {signature: SSDTX, generatorId: x}\n"},
		{name: "Malformed", doc: "gicc: [\n"},
	} {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := platform.Load(strings.NewReader(tt.doc)); !errors.Is(err, acpi.ErrInvalidParameter) {
				t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
			}
		})
	}
}
