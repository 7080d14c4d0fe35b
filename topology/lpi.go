package topology

import (
	"github.com/bobuhiro11/dyntables/codegen"
	"github.com/bobuhiro11/dyntables/platform"
)

func register(a platform.GenericAddress) *codegen.Register {
	return &codegen.Register{
		AddressSpace: a.AddressSpaceID,
		BitWidth:     a.RegisterBitWidth,
		BitOffset:    a.RegisterBitOffset,
		Address:      a.Address,
		AccessSize:   a.AccessSize,
	}
}

// lpiState converts an LPI record to the state of an _LPI package. The
// entry method is an integer when info.IsInteger is set, a register
// otherwise.
func lpiState(info platform.LpiInfo) codegen.LpiState {
	s := codegen.LpiState{
		MinResidency:             info.MinResidency,
		WorstCaseWakeLatency:     info.WorstCaseWakeLatency,
		Flags:                    info.Flags,
		ArchFlags:                info.ArchFlags,
		ResCntFreq:               info.ResCntFreq,
		EnableParentState:        info.EnableParentState,
		ResidencyCounterRegister: register(info.ResidencyCounterRegister),
		UsageCounterRegister:     register(info.UsageCounterRegister),
		StateName:                info.StateName,
	}

	if info.IsInteger {
		s.IntegerEntryMethod = info.IntegerEntryMethod
	} else {
		s.RegisterEntryMethod = register(info.RegisterEntryMethod)
	}

	return s
}
