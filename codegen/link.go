package codegen

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
	"github.com/bobuhiro11/dyntables/aml"
)

// linkRdNode hands rd back to the caller when owner is nil. Otherwise
// owner must be a Name object holding a Buffer, and rd is added to the
// resource list of that Buffer just before its End Tag. rd is deleted if
// it cannot be linked.
func linkRdNode(rd *aml.DataNode, owner *aml.ObjectNode) (*aml.DataNode, error) {
	if owner == nil {
		return rd, nil
	}

	err := appendToNamedBuffer(rd, owner)
	if err != nil {
		_ = aml.DeleteTree(rd)

		return nil, err
	}

	return rd, nil
}

func appendToNamedBuffer(rd *aml.DataNode, owner *aml.ObjectNode) error {
	if !aml.HasOpCode(owner, aml.OpName) {
		return fmt.Errorf("link resource data: owner is %v, not Name: %w", owner.Op(), acpi.ErrInvalidParameter)
	}

	buf, ok := aml.FixedArgument(owner, 1).(*aml.ObjectNode)
	if !ok || !aml.HasOpCode(buf, aml.OpBuffer) {
		return fmt.Errorf("link resource data: Name does not hold a Buffer: %w", acpi.ErrInvalidParameter)
	}

	return aml.AppendRdNode(buf, rd)
}
