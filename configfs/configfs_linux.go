//go:build linux

package configfs

import (
	"fmt"
	"path/filepath"

	"github.com/bobuhiro11/dyntables/acpi"
	"golang.org/x/sys/unix"
)

// Loader creates table entries under the ACPI directory of a configfs
// mount.
type Loader struct {
	root string

	// statfs is replaced by tests.
	statfs func(path string, buf *unix.Statfs_t) error
}

// New returns a loader for the configfs mounted at root. An empty root
// means Root.
func New(root string) *Loader {
	if root == "" {
		root = Root
	}

	return &Loader{root: root, statfs: unix.Statfs}
}

// Check returns ErrNotMounted when the root of l is not a configfs mount.
func (l *Loader) Check() error {
	var st unix.Statfs_t

	if err := l.statfs(l.root, &st); err != nil {
		return fmt.Errorf("statfs %s: %v: %w", l.root, err, ErrNotMounted)
	}

	if uint64(st.Type) != Magic {
		return fmt.Errorf("%s has type %#x: %w", l.root, st.Type, ErrNotMounted)
	}

	return nil
}

func (l *Loader) dir(name string) string {
	return filepath.Join(l.root, tableDir, name)
}

// Load creates the entry name and writes table to its aml attribute; the
// kernel loads the table when the attribute is written.
func (l *Loader) Load(name string, table *acpi.Table) error {
	if err := checkName(name); err != nil {
		return err
	}

	if table == nil {
		return fmt.Errorf("load %s: nil table: %w", name, acpi.ErrInvalidParameter)
	}

	if err := l.Check(); err != nil {
		return err
	}

	data, err := table.ToBytes()
	if err != nil {
		return err
	}

	dir := l.dir(name)

	if err := unix.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	if err := writeAttr(filepath.Join(dir, "aml"), data); err != nil {
		_ = unix.Rmdir(dir)

		return err
	}

	return nil
}

func writeAttr(path string, data []byte) error {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			_ = unix.Close(fd)

			return fmt.Errorf("write %s: %w", path, err)
		}

		data = data[n:]
	}

	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// Unload removes the entry name. The kernel cannot unload every table;
// the entry is then removed but the table stays.
func (l *Loader) Unload(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	if err := l.Check(); err != nil {
		return err
	}

	dir := l.dir(name)

	if err := unix.Rmdir(dir); err != nil {
		return fmt.Errorf("rmdir %s: %w", dir, err)
	}

	return nil
}
