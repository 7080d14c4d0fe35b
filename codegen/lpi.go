package codegen

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

// LpiRevision is the revision of the _LPI package layout.
const LpiRevision = 0

// LpiState is one low power idle state of an _LPI package (ACPI 6.4,
// s8.4.4.3).
type LpiState struct {
	MinResidency         uint32
	WorstCaseWakeLatency uint32
	Flags                uint32
	ArchFlags            uint32
	ResCntFreq           uint32
	EnableParentState    uint32

	// RegisterEntryMethod is used when not nil, IntegerEntryMethod
	// otherwise.
	RegisterEntryMethod *Register
	IntegerEntryMethod  uint64

	// A nil counter register is encoded as an all-zero register.
	ResidencyCounterRegister *Register
	UsageCounterRegister     *Register

	// An empty name is encoded as Zero.
	StateName string
}

// LpiNode generates an empty _LPI-style package:
//
//	Name (name, Package() {
//	  revision, // Version
//	  levelID,  // Level Index
//	  0,        // Count
//	})
//
// and returns the Name object. States are added with AddLpiState.
func (g *CodeGen) LpiNode(name string, revision uint16, levelID uint64, parent aml.Node) (*aml.ObjectNode, error) {
	n, err := g.NamePackage(name, parent)
	if err != nil {
		return nil, err
	}

	pkg, _ := aml.FixedArgument(n, 1).(*aml.ObjectNode)

	for _, v := range []uint64{uint64(revision), levelID, 0} {
		if err := g.addInteger(pkg, v); err != nil {
			_ = aml.DeleteTree(n)

			return nil, err
		}
	}

	return n, nil
}

func (g *CodeGen) addInteger(pkg *aml.ObjectNode, v uint64) error {
	i, err := g.Integer(v)
	if err != nil {
		return err
	}

	return attach(pkg, i)
}

// lpiPackage returns the package of an LpiNode and its Count element.
func lpiPackage(lpi *aml.ObjectNode) (*aml.ObjectNode, *aml.ObjectNode, error) {
	if !aml.HasOpCode(lpi, aml.OpName) {
		return nil, nil, fmt.Errorf("lpi: not a Name object: %w", acpi.ErrInvalidParameter)
	}

	pkg, ok := aml.FixedArgument(lpi, 1).(*aml.ObjectNode)
	if !ok || !aml.HasOpCode(pkg, aml.OpPackage) {
		return nil, nil, fmt.Errorf("lpi: Name does not hold a Package: %w", acpi.ErrInvalidParameter)
	}

	vars := pkg.VarArgs()
	if len(vars) < 3 {
		return nil, nil, fmt.Errorf("lpi: package has %d elements: %w", len(vars), acpi.ErrInvalidParameter)
	}

	count, ok := vars[2].(*aml.ObjectNode)
	if !ok {
		return nil, nil, fmt.Errorf("lpi: count is not an object: %w", acpi.ErrInvalidParameter)
	}

	return pkg, count, nil
}

// registerTemplate generates a detached ResourceTemplate() { Register() }.
// A nil reg gives Register(SystemMemory, 0, 0, 0, 0).
func (g *CodeGen) registerTemplate(reg *Register) (*aml.ObjectNode, error) {
	if reg == nil {
		reg = &Register{}
	}

	rt, err := g.ResourceTemplate()
	if err != nil {
		return nil, err
	}

	rd, err := g.RdRegister(*reg, nil)
	if err != nil {
		_ = aml.DeleteTree(rt)

		return nil, err
	}

	if err := aml.AppendRdNode(rt, rd); err != nil {
		_ = aml.DeleteTree(rd)
		_ = aml.DeleteTree(rt)

		return nil, err
	}

	return rt, nil
}

// stateElement returns the detached node for element i of an LPI state
// package.
func (g *CodeGen) stateElement(s LpiState, i int) (aml.Node, error) {
	switch i {
	case 0:
		return g.Integer(uint64(s.MinResidency))
	case 1:
		return g.Integer(uint64(s.WorstCaseWakeLatency))
	case 2:
		return g.Integer(uint64(s.Flags))
	case 3:
		return g.Integer(uint64(s.ArchFlags))
	case 4:
		return g.Integer(uint64(s.ResCntFreq))
	case 5:
		return g.Integer(uint64(s.EnableParentState))
	case 6:
		if s.RegisterEntryMethod != nil {
			return g.registerTemplate(s.RegisterEntryMethod)
		}

		return g.Integer(s.IntegerEntryMethod)
	case 7:
		return g.registerTemplate(s.ResidencyCounterRegister)
	case 8:
		return g.registerTemplate(s.UsageCounterRegister)
	case 9:
		if s.StateName == "" {
			return g.Integer(0)
		}

		return g.String(s.StateName)
	}

	return nil, fmt.Errorf("lpi state element %d: %w", i, acpi.ErrInternal)
}

const lpiStateElements = 10

// AddLpiState appends a state to the package of lpi, an object returned
// by LpiNode, and increments its Count:
//
//	Package() {
//	  MinResidency, WorstCaseWakeLatency, Flags, ArchFlags,
//	  ResCntFreq, EnableParentState, EntryMethod,
//	  ResidencyCounterRegister, UsageCounterRegister, StateName
//	}
func (g *CodeGen) AddLpiState(s LpiState, lpi *aml.ObjectNode) error {
	pkg, count, err := lpiPackage(lpi)
	if err != nil {
		return err
	}

	n, err := aml.IntegerValue(count)
	if err != nil {
		return err
	}

	state, err := aml.NewObjectNode(g.alloc, aml.OpPackage)
	if err != nil {
		return err
	}

	for i := 0; i < lpiStateElements; i++ {
		e, err := g.stateElement(s, i)
		if err != nil {
			_ = aml.DeleteTree(state)

			return err
		}

		if err := attach(state, e); err != nil {
			_ = aml.DeleteTree(state)

			return err
		}
	}

	if err := attach(pkg, state); err != nil {
		return err
	}

	if err := aml.SetInteger(count, n+1); err != nil {
		_ = aml.DeleteTree(state)

		return err
	}

	return nil
}
