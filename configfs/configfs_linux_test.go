//go:build linux

package configfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"golang.org/x/sys/unix"
)

// fakeLoader returns a loader on a temporary directory that passes for a
// configfs mount.
func fakeLoader(t *testing.T) *Loader {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, tableDir), 0o755); err != nil {
		t.Fatal(err)
	}

	l := New(root)
	l.statfs = func(_ string, st *unix.Statfs_t) error {
		st.Type = Magic

		return nil
	}

	return l
}

func TestCheck(t *testing.T) {
	t.Parallel()

	if err := New(t.TempDir()).Check(); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected: %v, actual: %v", ErrNotMounted, err)
	}

	if err := New(filepath.Join(t.TempDir(), "missing")).Check(); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected: %v, actual: %v", ErrNotMounted, err)
	}

	if err := fakeLoader(t).Check(); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	l := fakeLoader(t)

	table, err := acpi.NewTable(acpi.HeaderInfo{Signature: acpi.SigSSDT, OEMID: "GOKVM"}, []byte{0x10, 0x05})
	if err != nil {
		t.Fatal(err)
	}

	if err := l.Load("cpu", table); err != nil {
		t.Fatal(err)
	}

	actual, err := os.ReadFile(filepath.Join(l.root, tableDir, "cpu", "aml"))
	if err != nil {
		t.Fatal(err)
	}

	expected, err := table.ToBytes()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(actual, expected) {
		t.Fatalf("expected: % x, actual: % x", expected, actual)
	}

	if err := l.Load("cpu", table); err == nil {
		t.Fatal("loading a table twice under the same name succeeded")
	}

	// A real configfs removes the attribute with the directory.
	if err := os.Remove(filepath.Join(l.root, tableDir, "cpu", "aml")); err != nil {
		t.Fatal(err)
	}

	if err := l.Unload("cpu"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(l.root, tableDir, "cpu")); !os.IsNotExist(err) {
		t.Fatalf("entry still present: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	l := fakeLoader(t)

	for _, name := range []string{"", ".", "..", "a/b"} {
		if err := l.Load(name, &acpi.Table{}); !errors.Is(err, acpi.ErrInvalidParameter) {
			t.Fatalf("name %q: expected: %v, actual: %v", name, acpi.ErrInvalidParameter, err)
		}

		if err := l.Unload(name); !errors.Is(err, acpi.ErrInvalidParameter) {
			t.Fatalf("name %q: expected: %v, actual: %v", name, acpi.ErrInvalidParameter, err)
		}
	}

	if err := l.Load("cpu", nil); !errors.Is(err, acpi.ErrInvalidParameter) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInvalidParameter, err)
	}

	if err := New(t.TempDir()).Load("cpu", &acpi.Table{}); !errors.Is(err, ErrNotMounted) {
		t.Fatalf("expected: %v, actual: %v", ErrNotMounted, err)
	}
}
