// Package configfs loads ACPI tables into a running Linux kernel through
// the ACPI configfs interface (CONFIG_ACPI_CONFIGFS).
package configfs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bobuhiro11/dyntables/acpi"
)

const (
	// Root is where configfs is usually mounted.
	Root = "/sys/kernel/config"

	// Magic is the file system type of a configfs mount.
	Magic = 0x62656570

	tableDir = "acpi/table"
)

var (
	// ErrNotMounted is returned when the root is not a configfs mount.
	ErrNotMounted = errors.New("configfs is not mounted")

	// ErrUnsupported is returned on systems without configfs.
	ErrUnsupported = errors.New("configfs is not supported on this system")
)

// checkName rejects names that are not a single path element.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("configfs table name %q: %w", name, acpi.ErrInvalidParameter)
	}

	return nil
}
