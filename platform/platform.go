// Package platform describes the hardware the ACPI tables are generated
// for. Generators read it through the Provider interface.
package platform

// Token is an opaque reference from one platform object to another.
type Token uint64

// NullToken refers to no object. Passed to a lookup, it matches every
// object of the requested kind.
const NullToken Token = 0

// Processor hierarchy flags (ACPI 6.4, PPTT table 5.158).
const (
	ProcNodePhysicalPackage = 1 << 0
	ProcNodeIDValid         = 1 << 1
	ProcNodeThread          = 1 << 2
	ProcNodeLeaf            = 1 << 3
	ProcNodeIdentical       = 1 << 4
)

type ConfigurationManagerInfo struct {
	Revision uint32 `yaml:"revision"`
	OEMID    string `yaml:"oemId"`
}

// AcpiTableInfo selects a table to generate and the generator that
// builds it.
type AcpiTableInfo struct {
	Signature     string `yaml:"signature"`
	Revision      uint8  `yaml:"revision"`
	GeneratorID   string `yaml:"generatorId"`
	OEMTableID    string `yaml:"oemTableId"`
	OEMRevision   uint32 `yaml:"oemRevision"`
	MinorRevision uint8  `yaml:"minorRevision"`
}

// GicCInfo is a GIC CPU interface, one per CPU.
type GicCInfo struct {
	Token                         Token  `yaml:"token"`
	CPUInterfaceNumber            uint32 `yaml:"cpuInterfaceNumber"`
	AcpiProcessorUID              uint32 `yaml:"acpiProcessorUid"`
	Flags                         uint32 `yaml:"flags"`
	ParkingProtocolVersion        uint32 `yaml:"parkingProtocolVersion"`
	PerformanceInterruptGSIV      uint32 `yaml:"performanceInterruptGsiv"`
	ParkedAddress                 uint64 `yaml:"parkedAddress"`
	PhysicalBaseAddress           uint64 `yaml:"physicalBaseAddress"`
	GICV                          uint64 `yaml:"gicv"`
	GICH                          uint64 `yaml:"gich"`
	VGICMaintenanceInterrupt      uint32 `yaml:"vgicMaintenanceInterrupt"`
	GICRBaseAddress               uint64 `yaml:"gicrBaseAddress"`
	MPIDR                         uint64 `yaml:"mpidr"`
	ProcessorPowerEfficiencyClass uint8  `yaml:"processorPowerEfficiencyClass"`
	SPEOverflowInterrupt          uint16 `yaml:"speOverflowInterrupt"`
}

// GicDInfo is the GIC distributor.
type GicDInfo struct {
	Token               Token  `yaml:"token"`
	PhysicalBaseAddress uint64 `yaml:"physicalBaseAddress"`
	SystemVectorBase    uint32 `yaml:"systemVectorBase"`
	GicVersion          uint8  `yaml:"gicVersion"`
}

// ProcHierarchyInfo is one node of the processor topology: a CPU when
// GicCToken is set, a cluster or package otherwise.
type ProcHierarchyInfo struct {
	Token                      Token  `yaml:"token"`
	Flags                      uint32 `yaml:"flags"`
	ParentToken                Token  `yaml:"parentToken"`
	GicCToken                  Token  `yaml:"giccToken"`
	NoOfPrivateResources       uint32 `yaml:"noOfPrivateResources"`
	PrivateResourcesArrayToken Token  `yaml:"privateResourcesArrayToken"`
	LpiToken                   Token  `yaml:"lpiToken"`
}

// CmRef is a list of references grouped under one token.
type CmRef struct {
	Token      Token   `yaml:"token"`
	References []Token `yaml:"references"`
}

// GenericAddress is an ACPI generic address structure.
type GenericAddress struct {
	AddressSpaceID    uint8  `yaml:"addressSpaceId"`
	RegisterBitWidth  uint8  `yaml:"registerBitWidth"`
	RegisterBitOffset uint8  `yaml:"registerBitOffset"`
	AccessSize        uint8  `yaml:"accessSize"`
	Address           uint64 `yaml:"address"`
}

// LpiInfo is a low power idle state.
type LpiInfo struct {
	Token                    Token          `yaml:"token"`
	MinResidency             uint32         `yaml:"minResidency"`
	WorstCaseWakeLatency     uint32         `yaml:"worstCaseWakeLatency"`
	Flags                    uint32         `yaml:"flags"`
	ArchFlags                uint32         `yaml:"archFlags"`
	ResCntFreq               uint32         `yaml:"resCntFreq"`
	EnableParentState        uint32         `yaml:"enableParentState"`
	IsInteger                bool           `yaml:"isInteger"`
	IntegerEntryMethod       uint64         `yaml:"integerEntryMethod"`
	RegisterEntryMethod      GenericAddress `yaml:"registerEntryMethod"`
	ResidencyCounterRegister GenericAddress `yaml:"residencyCounterRegister"`
	UsageCounterRegister     GenericAddress `yaml:"usageCounterRegister"`
	StateName                string         `yaml:"stateName"`
}

// PciConfigSpaceInfo is an ECAM region and the host bridge behind it.
type PciConfigSpaceInfo struct {
	Token                 Token  `yaml:"token"`
	BaseAddress           uint64 `yaml:"baseAddress"`
	PciSegmentGroupNumber uint16 `yaml:"pciSegmentGroupNumber"`
	StartBusNumber        uint8  `yaml:"startBusNumber"`
	EndBusNumber          uint8  `yaml:"endBusNumber"`
	AddressMapToken       Token  `yaml:"addressMapToken"`
}

// PCI address space codes of a PciAddressMapInfo.
const (
	PciSpaceConfig = 0
	PciSpaceIO     = 1
	PciSpaceMem32  = 2
	PciSpaceMem64  = 3
)

// PciAddressMapInfo is a window translating CPU addresses to PCI
// addresses.
type PciAddressMapInfo struct {
	Token       Token  `yaml:"token"`
	SpaceCode   uint8  `yaml:"spaceCode"`
	PciAddress  uint64 `yaml:"pciAddress"`
	CPUAddress  uint64 `yaml:"cpuAddress"`
	AddressSize uint64 `yaml:"addressSize"`
}

// SerialPortInfo is a memory mapped UART.
type SerialPortInfo struct {
	Token             Token  `yaml:"token"`
	BaseAddress       uint64 `yaml:"baseAddress"`
	BaseAddressLength uint64 `yaml:"baseAddressLength"`
	Interrupt         uint32 `yaml:"interrupt"`
	BaudRate          uint64 `yaml:"baudRate"`
	Clock             uint32 `yaml:"clock"`
	PortSubtype       uint16 `yaml:"portSubtype"`
}

// Provider gives generators access to the platform objects. Lookups
// taking a token return the objects with that token, or all of them for
// NullToken. They fail with acpi.ErrNotFound when nothing matches.
type Provider interface {
	ConfigurationManagerInfo() (ConfigurationManagerInfo, error)
	AcpiTableList() ([]AcpiTableInfo, error)

	GicCInfo(token Token) ([]GicCInfo, error)
	GicDInfo(token Token) ([]GicDInfo, error)
	ProcHierarchyInfo(token Token) ([]ProcHierarchyInfo, error)
	// CmRef returns the tokens referenced by the list token.
	CmRef(token Token) ([]Token, error)
	LpiInfo(token Token) ([]LpiInfo, error)

	PciConfigSpaceInfo(token Token) ([]PciConfigSpaceInfo, error)
	PciAddressMapInfo(token Token) ([]PciAddressMapInfo, error)
	SerialPortInfo(token Token) ([]SerialPortInfo, error)
}
