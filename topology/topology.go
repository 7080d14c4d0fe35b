// Package topology generates an SSDT describing the CPU topology of the
// platform: one ACPI0007 device per CPU, nested in ACPI0010 cluster
// devices, with their low power idle states.
package topology

import (
	"errors"
	"fmt"
	"log"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
	"github.com/bobuhiro11/dyntables/codegen"
	"github.com/bobuhiro11/dyntables/generator"
	"github.com/bobuhiro11/dyntables/platform"
)

const (
	ID = "ssdt-cpu-topology"

	DefaultOEMTableID  = "CPU-TOPO"
	DefaultOEMRevision = 1

	sbScope = "\\_SB"

	cpuHID     = "ACPI0007"
	clusterHID = "ACPI0010"

	// Flags a node must have once masked with nodeFlagsMask.
	nodeFlagsMask = platform.ProcNodePhysicalPackage | platform.ProcNodeIDValid | platform.ProcNodeLeaf
	cpuFlags      = platform.ProcNodeIDValid | platform.ProcNodeLeaf
	clusterFlags  = 0
)

// Generator builds the CPU topology SSDT. It keeps no state between
// builds and may be shared.
type Generator struct {
	alloc aml.Allocator
}

var _ generator.Generator = (*Generator)(nil)

// New returns a generator allocating its AML nodes through a. A nil a
// means aml.Heap.
func New(a aml.Allocator) *Generator {
	if a == nil {
		a = aml.Heap
	}

	return &Generator{alloc: a}
}

func (g *Generator) Info() generator.Info {
	return generator.Info{
		ID:          ID,
		Description: "ACPI.STD.SSDT.CPU.TOPOLOGY.GENERATOR",
		Signature:   acpi.SigSSDT,
		Revision:    2,
		MinRevision: 1,
		CreatorID:   "GACT",
		CreatorRev:  acpi.Revision(1, 0),
	}
}

// builder holds the state of one Build call.
type builder struct {
	cg    *codegen.CodeGen
	p     platform.Provider
	procs []platform.ProcHierarchyInfo
	lpi   *tokenTable
}

// Build generates:
//
//	DefinitionBlock ("SsdtCpuTopology.aml", "SSDT", 2, "GOKVM", "CPU-TOPO", 1) {
//	  Scope (\_SB) {
//	    Device (C000) { // Cluster
//	      Name (_UID, 0)
//	      Name (_HID, "ACPI0010")
//	      Device (C000) { // Cpu
//	        Name (_UID, 0)
//	        Name (_HID, "ACPI0007")
//	        Method (_LPI, 0, NotSerialized) { Return (\_SB.L001) }
//	      }
//	      ...
//	    }
//	    Name (L000, Package () { ... })
//	    ...
//	  }
//	}
//
// from the processor hierarchy of p, or one flat CPU device per GIC CPU
// interface when p has no processor hierarchy.
func (g *Generator) Build(t platform.AcpiTableInfo, p platform.Provider) (*acpi.Table, error) {
	if p == nil {
		return nil, fmt.Errorf("build %s: nil provider: %w", ID, acpi.ErrInvalidParameter)
	}

	if t.OEMTableID == "" {
		t.OEMTableID = DefaultOEMTableID
	}

	if t.OEMRevision == 0 {
		t.OEMRevision = DefaultOEMRevision
	}

	hdr, err := generator.Header(g.Info(), t, p)
	if err != nil {
		return nil, err
	}

	b := &builder{cg: codegen.New(g.alloc), p: p}

	root, err := b.cg.DefinitionBlock(hdr)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := aml.DeleteTree(root); err != nil {
			log.Printf("SSDT-CPU-TOPOLOGY: delete tree: %v", err)
		}
	}()

	scope, err := b.cg.Scope(sbScope, root)
	if err != nil {
		return nil, err
	}

	b.procs, err = p.ProcHierarchyInfo(platform.NullToken)

	switch {
	case errors.Is(err, acpi.ErrNotFound):
		err = b.fromGicC(scope)
	case err != nil:
	default:
		err = b.fromProcHierarchy(scope)
	}

	if err != nil {
		return nil, err
	}

	return aml.Serialize(root)
}

func (g *Generator) Free(_ platform.AcpiTableInfo, table *acpi.Table) error {
	return generator.Free(table)
}

// cpu generates the device of the CPU using the GIC CPU interface gicc.
func (b *builder) cpu(gicc platform.GicCInfo, index uint32, parent aml.Node) (*aml.ObjectNode, error) {
	name, err := aml.IndexName('C', index)
	if err != nil {
		return nil, err
	}

	dev, err := b.cg.Device(name.String(), parent)
	if err != nil {
		return nil, err
	}

	if _, err := b.cg.NameInteger("_UID", uint64(gicc.AcpiProcessorUID), dev); err != nil {
		return nil, err
	}

	if _, err := b.cg.NameString("_HID", cpuHID, dev); err != nil {
		return nil, err
	}

	return dev, nil
}

// lpiMethod adds to dev a _LPI method returning the states of lpiToken.
func (b *builder) lpiMethod(lpiToken platform.Token, dev *aml.ObjectNode) error {
	index, err := b.lpi.add(lpiToken)
	if err != nil {
		return err
	}

	name, err := aml.IndexName('L', index)
	if err != nil {
		return err
	}

	_, err = b.cg.MethodRetNameString("_LPI", sbScope+"."+name.String(), 0, false, 0, dev)

	return err
}

func (b *builder) cpuFromProcHierarchy(node platform.ProcHierarchyInfo, index uint32, parent aml.Node) error {
	gicc, err := b.p.GicCInfo(node.GicCToken)
	if err != nil {
		return err
	}

	if len(gicc) == 0 {
		return fmt.Errorf("cpu %#x: gicc %#x: %w", node.Token, node.GicCToken, acpi.ErrNotFound)
	}

	dev, err := b.cpu(gicc[0], index, parent)
	if err != nil {
		return err
	}

	if node.LpiToken == platform.NullToken {
		return nil
	}

	return b.lpiMethod(node.LpiToken, dev)
}

func (b *builder) cluster(node platform.ProcHierarchyInfo, index uint32, parent aml.Node) (*aml.ObjectNode, error) {
	name, err := aml.IndexName('C', index)
	if err != nil {
		return nil, err
	}

	dev, err := b.cg.Device(name.String(), parent)
	if err != nil {
		return nil, err
	}

	// No processor UID for a cluster: its index is used.
	if _, err := b.cg.NameInteger("_UID", uint64(index), dev); err != nil {
		return nil, err
	}

	if _, err := b.cg.NameString("_HID", clusterHID, dev); err != nil {
		return nil, err
	}

	if node.LpiToken != platform.NullToken {
		if err := b.lpiMethod(node.LpiToken, dev); err != nil {
			return nil, err
		}
	}

	return dev, nil
}

// tree generates the devices of the children of parentToken under
// parent, in the order of the processor hierarchy list.
func (b *builder) tree(parentToken platform.Token, parent aml.Node) error {
	var cpuIndex, clusterIndex uint32

	for _, node := range b.procs {
		if node.ParentToken != parentToken {
			continue
		}

		if node.GicCToken != platform.NullToken {
			if node.Flags&nodeFlagsMask != cpuFlags {
				log.Printf("SSDT-CPU-TOPOLOGY: invalid flags for cpu: 0x%x", node.Flags)

				return fmt.Errorf("cpu %#x: flags %#x: %w", node.Token, node.Flags, acpi.ErrInvalidParameter)
			}

			if err := b.cpuFromProcHierarchy(node, cpuIndex, parent); err != nil {
				return err
			}

			cpuIndex++

			continue
		}

		if node.Flags&nodeFlagsMask != clusterFlags {
			log.Printf("SSDT-CPU-TOPOLOGY: invalid flags for cluster: 0x%x", node.Flags)

			return fmt.Errorf("cluster %#x: flags %#x: %w", node.Token, node.Flags, acpi.ErrInvalidParameter)
		}

		dev, err := b.cluster(node, clusterIndex, parent)
		if err != nil {
			return err
		}

		clusterIndex++
		cpuIndex = 0

		if err := b.tree(node.Token, dev); err != nil {
			return err
		}
	}

	return nil
}

// lpiStates generates one package per entry of the LPI token table.
func (b *builder) lpiStates(scope aml.Node) error {
	for i := 0; i < b.lpi.len(); i++ {
		name, err := aml.IndexName('L', uint32(i))
		if err != nil {
			return err
		}

		// Level index is not supported and stays 0.
		lpi, err := b.cg.LpiNode(name.String(), codegen.LpiRevision, 0, scope)
		if err != nil {
			return err
		}

		refs, err := b.p.CmRef(b.lpi.token(i))
		if err != nil {
			return err
		}

		for _, ref := range refs {
			info, err := b.p.LpiInfo(ref)
			if err != nil {
				return err
			}

			if len(info) == 0 {
				return fmt.Errorf("lpi %#x: %w", ref, acpi.ErrNotFound)
			}

			if err := b.cg.AddLpiState(lpiState(info[0]), lpi); err != nil {
				return err
			}
		}
	}

	return nil
}

// topLevel returns the token of the only node with no parent.
func (b *builder) topLevel() (platform.Token, error) {
	top := -1

	for i, node := range b.procs {
		if node.ParentToken != platform.NullToken {
			continue
		}

		if top != -1 {
			log.Printf("SSDT-CPU-TOPOLOGY: Top level CM_ARM_PROC_HIERARCHY_INFO must be unique")

			return platform.NullToken, fmt.Errorf("top level nodes %#x and %#x: %w",
				b.procs[top].Token, node.Token, acpi.ErrInvalidParameter)
		}

		top = i
	}

	if top == -1 {
		return platform.NullToken, fmt.Errorf("no top level processor node: %w", acpi.ErrInvalidParameter)
	}

	if b.procs[top].Flags&platform.ProcNodePhysicalPackage == 0 {
		return platform.NullToken, fmt.Errorf("top level node %#x: flags %#x: %w",
			b.procs[top].Token, b.procs[top].Flags, acpi.ErrInvalidParameter)
	}

	return b.procs[top].Token, nil
}

func (b *builder) fromProcHierarchy(scope aml.Node) error {
	var err error

	// Each node references at most one LPI token.
	capacity := len(b.procs)
	if capacity > aml.MaxIndexName {
		capacity = aml.MaxIndexName
	}

	b.lpi, err = newTokenTable(uint32(capacity))
	if err != nil {
		return err
	}
	defer b.lpi.free()

	top, err := b.topLevel()
	if err != nil {
		return err
	}

	if err := b.tree(top, scope); err != nil {
		return err
	}

	return b.lpiStates(scope)
}

// fromGicC generates one CPU device per GIC CPU interface, without LPI.
func (b *builder) fromGicC(scope aml.Node) error {
	giccs, err := b.p.GicCInfo(platform.NullToken)
	if err != nil {
		return err
	}

	for i, gicc := range giccs {
		if _, err := b.cpu(gicc, uint32(i), scope); err != nil {
			return err
		}
	}

	return nil
}
