package codegen

import (
	"fmt"

	"github.com/bobuhiro11/dyntables/acpi"
)

// InvalidSpecificFlags is returned by the type specific flag composers on
// error. Encoders refuse it as a TypeSpecificFlags value.
const InvalidSpecificFlags = 0xFF

// Resource types of an address space descriptor.
const (
	AddressSpaceTypeMemory uint8 = 0
	AddressSpaceTypeIO     uint8 = 1
	AddressSpaceTypeBus    uint8 = 2
)

// ISA range classes of an IO range.
const (
	IsaRangesReserved uint8 = iota
	IsaRangesNonISAOnly
	IsaRangesISAOnly
	IsaRangesEntire
)

// Cacheability of a memory range.
const (
	MemoryNonCacheable uint8 = iota
	MemoryCacheable
	MemoryWriteCombining
	MemoryPrefetchable
)

// Memory range types.
const (
	AddressRangeMemory uint8 = iota
	AddressRangeReserved
	AddressRangeACPI
	AddressRangeNVS
)

func boolBit(b bool, shift uint) uint8 {
	if b {
		return 1 << shift
	}

	return 0
}

// IORangeSpecificFlags packs the type specific flags of an IO range.
//
//	bits 0-1: ISA ranges
//	bit  4:   translation type (set when not static)
//	bit  5:   translation density (set when sparse)
func IORangeSpecificFlags(isaRanges uint8, isDenseTranslation, isTypeStatic bool) (uint8, error) {
	if isaRanges > IsaRangesEntire {
		return InvalidSpecificFlags, fmt.Errorf("io range flags: isa ranges %d: %w", isaRanges, acpi.ErrInvalidParameter)
	}

	return isaRanges | boolBit(!isTypeStatic, 4) | boolBit(!isDenseTranslation, 5), nil
}

// MemoryRangeSpecificFlags packs the type specific flags of a memory
// range.
//
//	bit  0:   read/write
//	bits 1-2: cacheability
//	bits 3-4: memory range type
//	bit  5:   translation type (set when not static)
func MemoryRangeSpecificFlags(cacheable uint8, isReadWrite bool, rangeType uint8, isTypeStatic bool) (uint8, error) {
	if cacheable > MemoryPrefetchable || rangeType > AddressRangeNVS {
		return InvalidSpecificFlags, fmt.Errorf("memory range flags: cacheable %d, type %d: %w",
			cacheable, rangeType, acpi.ErrInvalidParameter)
	}

	return boolBit(isReadWrite, 0) | cacheable<<1 | rangeType<<3 | boolBit(!isTypeStatic, 5), nil
}

// AddressSpaceGeneralFlags packs the general flags of an address space
// descriptor. The consumer/producer bit is left clear.
func AddressSpaceGeneralFlags(isPosDecode, isMinFixed, isMaxFixed bool) uint8 {
	return boolBit(!isPosDecode, 1) | boolBit(isMinFixed, 2) | boolBit(isMaxFixed, 3)
}
