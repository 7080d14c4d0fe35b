package topology

import (
	"errors"
	"testing"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
	"github.com/bobuhiro11/dyntables/platform"
)

func TestTokenTable(t *testing.T) {
	t.Parallel()

	tt, err := newTokenTable(2)
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []struct {
		token uint64
		index uint32
	}{
		{token: 0x301, index: 0},
		{token: 0x300, index: 1},
		{token: 0x301, index: 0},
		{token: 0x300, index: 1},
	} {
		i, err := tt.add(platform.Token(c.token))
		if err != nil {
			t.Fatal(err)
		}

		if i != c.index {
			t.Fatalf("index of %#x: expected: %d, actual: %d", c.token, c.index, i)
		}
	}

	if _, err := tt.add(0x302); !errors.Is(err, acpi.ErrInternal) {
		t.Fatalf("expected: %v, actual: %v", acpi.ErrInternal, err)
	}

	if tt.len() != 2 || tt.token(1) != 0x300 {
		t.Fatalf("unexpected table: %v", tt.tokens)
	}

	tt.free()
	tt.free()

	if tt.len() != 0 {
		t.Fatalf("len after free: %d", tt.len())
	}
}

func TestTokenTableCapacity(t *testing.T) {
	t.Parallel()

	for _, c := range []uint32{0, aml.MaxIndexName + 1} {
		if _, err := newTokenTable(c); !errors.Is(err, acpi.ErrInvalidParameter) {
			t.Fatalf("capacity %d: expected: %v, actual: %v", c, acpi.ErrInvalidParameter, err)
		}
	}

	if _, err := newTokenTable(aml.MaxIndexName); err != nil {
		t.Fatal(err)
	}
}
