package platform

import (
	"errors"
	"fmt"
	"io"

	"github.com/bobuhiro11/dyntables/acpi"
	"gopkg.in/yaml.v3"
)

// Store is an in-memory Provider, usually loaded from a platform
// description file.
type Store struct {
	Info            ConfigurationManagerInfo `yaml:"info"`
	Tables          []AcpiTableInfo          `yaml:"tables"`
	GicC            []GicCInfo               `yaml:"gicc"`
	GicD            []GicDInfo               `yaml:"gicd"`
	ProcHierarchy   []ProcHierarchyInfo      `yaml:"procHierarchy"`
	CmRefs          []CmRef                  `yaml:"cmRefs"`
	Lpi             []LpiInfo                `yaml:"lpi"`
	PciConfigSpaces []PciConfigSpaceInfo     `yaml:"pciConfigSpaces"`
	PciAddressMaps  []PciAddressMapInfo      `yaml:"pciAddressMaps"`
	SerialPorts     []SerialPortInfo         `yaml:"serialPorts"`
}

var _ Provider = (*Store)(nil)

// Load decodes a YAML platform description and validates it.
func Load(r io.Reader) (*Store, error) {
	s := &Store{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("platform description is empty: %w", acpi.ErrInvalidParameter)
		}

		return nil, fmt.Errorf("platform description: %v: %w", err, acpi.ErrInvalidParameter)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func checkTokens[T any](kind string, list []T, token func(T) Token) error {
	seen := make(map[Token]struct{}, len(list))

	for i, v := range list {
		t := token(v)
		if t == NullToken {
			return fmt.Errorf("%s #%d: null token: %w", kind, i, acpi.ErrInvalidParameter)
		}

		if _, ok := seen[t]; ok {
			return fmt.Errorf("%s #%d: duplicate token %#x: %w", kind, i, t, acpi.ErrInvalidParameter)
		}

		seen[t] = struct{}{}
	}

	return nil
}

// Validate checks that every object has a unique non null token within
// its kind and that table signatures are well formed.
func (s *Store) Validate() error {
	for _, t := range s.Tables {
		if _, err := acpi.ParseSignature(t.Signature); err != nil {
			return fmt.Errorf("table %q: %w", t.GeneratorID, err)
		}
	}

	for _, err := range []error{
		checkTokens("gicc", s.GicC, func(v GicCInfo) Token { return v.Token }),
		checkTokens("gicd", s.GicD, func(v GicDInfo) Token { return v.Token }),
		checkTokens("procHierarchy", s.ProcHierarchy, func(v ProcHierarchyInfo) Token { return v.Token }),
		checkTokens("cmRefs", s.CmRefs, func(v CmRef) Token { return v.Token }),
		checkTokens("lpi", s.Lpi, func(v LpiInfo) Token { return v.Token }),
		checkTokens("pciConfigSpaces", s.PciConfigSpaces, func(v PciConfigSpaceInfo) Token { return v.Token }),
		checkTokens("pciAddressMaps", s.PciAddressMaps, func(v PciAddressMapInfo) Token { return v.Token }),
		checkTokens("serialPorts", s.SerialPorts, func(v SerialPortInfo) Token { return v.Token }),
	} {
		if err != nil {
			return err
		}
	}

	return nil
}

func lookup[T any](kind string, list []T, token Token, tokenOf func(T) Token) ([]T, error) {
	var out []T

	for _, v := range list {
		if token == NullToken || tokenOf(v) == token {
			out = append(out, v)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s %#x: %w", kind, token, acpi.ErrNotFound)
	}

	return out, nil
}

func (s *Store) ConfigurationManagerInfo() (ConfigurationManagerInfo, error) {
	return s.Info, nil
}

func (s *Store) AcpiTableList() ([]AcpiTableInfo, error) {
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("acpi table list: %w", acpi.ErrNotFound)
	}

	return s.Tables, nil
}

func (s *Store) GicCInfo(token Token) ([]GicCInfo, error) {
	return lookup("gicc", s.GicC, token, func(v GicCInfo) Token { return v.Token })
}

func (s *Store) GicDInfo(token Token) ([]GicDInfo, error) {
	return lookup("gicd", s.GicD, token, func(v GicDInfo) Token { return v.Token })
}

func (s *Store) ProcHierarchyInfo(token Token) ([]ProcHierarchyInfo, error) {
	return lookup("proc hierarchy", s.ProcHierarchy, token, func(v ProcHierarchyInfo) Token { return v.Token })
}

func (s *Store) CmRef(token Token) ([]Token, error) {
	refs, err := lookup("cm ref", s.CmRefs, token, func(v CmRef) Token { return v.Token })
	if err != nil {
		return nil, err
	}

	var out []Token
	for _, r := range refs {
		out = append(out, r.References...)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("cm ref %#x: empty reference list: %w", token, acpi.ErrNotFound)
	}

	return out, nil
}

func (s *Store) LpiInfo(token Token) ([]LpiInfo, error) {
	return lookup("lpi", s.Lpi, token, func(v LpiInfo) Token { return v.Token })
}

func (s *Store) PciConfigSpaceInfo(token Token) ([]PciConfigSpaceInfo, error) {
	return lookup("pci config space", s.PciConfigSpaces, token, func(v PciConfigSpaceInfo) Token { return v.Token })
}

func (s *Store) PciAddressMapInfo(token Token) ([]PciAddressMapInfo, error) {
	return lookup("pci address map", s.PciAddressMaps, token, func(v PciAddressMapInfo) Token { return v.Token })
}

func (s *Store) SerialPortInfo(token Token) ([]SerialPortInfo, error) {
	return lookup("serial port", s.SerialPorts, token, func(v SerialPortInfo) Token { return v.Token })
}
