package flag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/configfs"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/madt"
	"github.com/bobuhiro11/dyntables/pci"
	"github.com/bobuhiro11/dyntables/platform"
	"github.com/bobuhiro11/dyntables/serial"
	"github.com/bobuhiro11/dyntables/topology"
)

func Parse() error {
	c := CLI{}

	programName := "dyntables"
	programDesc := "dyntables generates ACPI tables (SSDT, MADT, MCFG) from a platform description"

	ctx := kong.Parse(&c,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	err := ctx.Run()

	return err
}

// Registry returns a registry holding every table generator.
func Registry() (*generator.Registry, error) {
	return generator.NewRegistry(
		topology.New(nil),
		pci.NewSSDT(nil),
		pci.NewMCFG(),
		madt.New(),
		serial.New(nil),
	)
}

func loadPlatform(path string) (*platform.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return platform.Load(f)
}

// build generates the tables of the platform description at path. The
// successful results are returned along with the joined errors of the
// failed ones.
func build(path string, ids []string) (*generator.Registry, []generator.Result, error) {
	p, err := loadPlatform(path)
	if err != nil {
		return nil, nil, err
	}

	reg, err := Registry()
	if err != nil {
		return nil, nil, err
	}

	results, err := reg.BuildAll(context.Background(), p, ids...)

	ok := results[:0]

	for _, res := range results {
		if res.Err == nil {
			ok = append(ok, res)
		}
	}

	return reg, ok, err
}

func free(reg *generator.Registry, res generator.Result) {
	g, err := reg.Lookup(res.Info.GeneratorID)
	if err == nil {
		err = g.Free(res.Info, res.Table)
	}

	if err != nil {
		log.Printf("free %s: %v", res.Info.GeneratorID, err)
	}
}

// FileName is the name of the file a table is written to.
func FileName(t platform.AcpiTableInfo) string {
	return fmt.Sprintf("%s-%s.aml", t.GeneratorID, t.OEMTableID)
}

func (g *GenerateCMD) Run() error {
	reg, results, buildErr := build(g.Platform, g.Tables)

	var errs []error

	for _, res := range results {
		data, err := res.Table.ToBytes()
		if err == nil {
			path := filepath.Join(g.Output, FileName(res.Info))
			if err = os.WriteFile(path, data, 0o644); err == nil {
				log.Printf("%s: %v", path, res.Table)
			}
		}

		if err != nil {
			errs = append(errs, err)
		}

		free(reg, res)
	}

	return errors.Join(append(errs, buildErr)...)
}

func (l *ListCMD) Run() error {
	reg, err := Registry()
	if err != nil {
		return err
	}

	for _, info := range reg.List() {
		fmt.Fprintf(l.writer(), "%-20s %s %s\n", info.ID, info.Signature, info.Description)
	}

	return nil
}

func (l *LoadCMD) Run() error {
	loader := configfs.New(l.Root)
	if err := loader.Check(); err != nil {
		return err
	}

	reg, results, buildErr := build(l.Platform, l.Tables)

	var errs []error

	for _, res := range results {
		// Only definition blocks can be loaded at runtime.
		if res.Table.Signature != acpi.SigSSDT.ToBytes() {
			log.Printf("%s: %s cannot be loaded, skipped", res.Info.GeneratorID, res.Info.Signature)
		} else if err := loader.Load(res.Info.GeneratorID, res.Table); err != nil {
			errs = append(errs, err)
		} else {
			log.Printf("loaded %v as %s", res.Table, res.Info.GeneratorID)
		}

		free(reg, res)
	}

	return errors.Join(append(errs, buildErr)...)
}

func (u *UnloadCMD) Run() error {
	loader := configfs.New(u.Root)

	var errs []error

	for _, id := range u.Tables {
		if err := loader.Unload(id); err != nil {
			errs = append(errs, err)

			continue
		}

		log.Printf("unloaded %s", id)
	}

	return errors.Join(errs...)
}

// checkFile reads the table in path and verifies its length and checksum.
func checkFile(path string) (*acpi.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	h, err := acpi.ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	t := &acpi.Table{Header: h, Body: data[acpi.HeaderSize:]}
	if err := t.Verify(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

func (c *CheckCMD) Run() error {
	var errs []error

	for _, path := range c.Files {
		t, err := checkFile(path)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		fmt.Fprintf(c.writer(), "%s: %v\n", path, t)
	}

	return errors.Join(errs...)
}
