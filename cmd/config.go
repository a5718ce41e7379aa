package cmd

import (
	"os"

	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// BindingConfig names a wire address.
type BindingConfig struct {
	Name    string `yaml:"name"`
	Address int    `yaml:"address"`
}

// PartyConfig declares one party and where to reach it.
type PartyConfig struct {
	Name    string   `yaml:"name"`
	Address string   `yaml:"address"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// SessionConfig is the YAML session file: the node's address, the circuit
// and its metadata, the party partition, and this party's own input values.
type SessionConfig struct {
	Address   string           `yaml:"address"`
	SessionID string           `yaml:"session"`
	Circuit   string           `yaml:"circuit"`
	Self      int              `yaml:"self"`
	Constants map[int]int64    `yaml:"constants"`
	Inputs    []BindingConfig  `yaml:"inputs"`
	Outputs   []BindingConfig  `yaml:"outputs"`
	Parties   []PartyConfig    `yaml:"parties"`
	Values    map[string]int64 `yaml:"values"`
}

// LoadSessionConfig reads and decodes a session file.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to read config %s: %w", path, err)
	}

	config := SessionConfig{}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, xerrors.Errorf("failed to decode config %s: %w", path, err)
	}
	return &config, nil
}

// Meta converts the config into circuit metadata.
func (c *SessionConfig) Meta() circuit.Meta {
	constants := make(map[int]types.Scalar, len(c.Constants))
	for addr, value := range c.Constants {
		constants[addr] = types.IntScalar(value)
	}

	meta := circuit.Meta{
		Constants: circuit.ParseConstants(constants),
	}
	for _, b := range c.Inputs {
		meta.Inputs = append(meta.Inputs, circuit.Binding{Name: b.Name, Address: b.Address})
	}
	for _, b := range c.Outputs {
		meta.Outputs = append(meta.Outputs, circuit.Binding{Name: b.Name, Address: b.Address})
	}
	for _, p := range c.Parties {
		meta.Parties = append(meta.Parties, circuit.Party{
			Name:    p.Name,
			Inputs:  p.Inputs,
			Outputs: p.Outputs,
		})
	}
	return meta
}

// Directory maps party identities to transport addresses.
func (c *SessionConfig) Directory() map[string]string {
	directory := make(map[string]string, len(c.Parties))
	for i, p := range c.Parties {
		party := circuit.Party{Name: p.Name}
		directory[party.Identity(i)] = p.Address
	}
	return directory
}
