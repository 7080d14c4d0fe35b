// Package generator defines the interface of ACPI table generators and
// a registry to look them up by ID.
package generator

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/platform"
)

// Info identifies a generator and the tables it builds.
type Info struct {
	ID          string
	Description string
	Signature   acpi.Signature

	// Revision is the table revision built by default, MinRevision the
	// lowest one the generator supports.
	Revision    uint8
	MinRevision uint8

	CreatorID  string
	CreatorRev uint32
}

// Generator builds one kind of ACPI table from the platform description.
// Build and Free may be called concurrently for different tables.
type Generator interface {
	Info() Info

	// Build generates the table described by t. No partial table is
	// returned on failure.
	Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error)

	// Free releases a table returned by Build.
	Free(t platform.AcpiTableInfo, table *acpi.Table) error
}

// Header checks that t can be built by a generator with the given info
// and returns the header of the table. The OEM ID comes from the
// platform description.
func Header(info Info, t platform.AcpiTableInfo, p platform.Provider) (acpi.HeaderInfo, error) {
	if t.GeneratorID != info.ID {
		return acpi.HeaderInfo{}, fmt.Errorf("%s: table for generator %q: %w",
			info.Description, t.GeneratorID, acpi.ErrInvalidParameter)
	}

	sig, err := acpi.ParseSignature(t.Signature)
	if err != nil {
		return acpi.HeaderInfo{}, err
	}

	if sig != info.Signature {
		return acpi.HeaderInfo{}, fmt.Errorf("%s: signature %s: %w", info.Description, sig, acpi.ErrInvalidParameter)
	}

	rev := t.Revision
	if rev == 0 {
		rev = info.Revision
	}

	if rev < info.MinRevision || rev > info.Revision {
		return acpi.HeaderInfo{}, fmt.Errorf("%s: revision %d not in [%d, %d]: %w",
			info.Description, rev, info.MinRevision, info.Revision, acpi.ErrInvalidParameter)
	}

	cm, err := p.ConfigurationManagerInfo()
	if err != nil {
		return acpi.HeaderInfo{}, err
	}

	return acpi.HeaderInfo{
		Signature:  sig,
		Revision:   rev,
		OEMID:      cm.OEMID,
		OEMTableID: t.OEMTableID,
		OEMRev:     t.OEMRevision,
		CreatorID:  info.CreatorID,
		CreatorRev: info.CreatorRev,
	}, nil
}

// Free is the Free implementation shared by generators whose tables hold
// no resource besides their bytes.
func Free(table *acpi.Table) error {
	if table == nil || (len(table.Body) == 0 && table.Length == 0) {
		return fmt.Errorf("free table: %w", acpi.ErrInvalidParameter)
	}

	table.Body = nil
	table.Length = 0

	return nil
}
