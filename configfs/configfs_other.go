//go:build !linux

package configfs

import "github.com/bobuhiro11/dyntables/acpi"

type Loader struct{}

func New(string) *Loader {
	return &Loader{}
}

func (l *Loader) Check() error {
	return ErrUnsupported
}

func (l *Loader) Load(name string, _ *acpi.Table) error {
	if err := checkName(name); err != nil {
		return err
	}

	return ErrUnsupported
}

func (l *Loader) Unload(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	return ErrUnsupported
}
