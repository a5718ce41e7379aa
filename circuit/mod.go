// Package circuit describes fixed gate-level programs and evaluates them
// over a pluggable arithmetic strategy. A program is immutable once parsed:
// the evaluator allocates its own wire array per call and never mutates the
// program.
package circuit

import (
	"errors"
	"fmt"
	"strconv"

	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// MaxWires is the hard ceiling on the wire count of a program.
const MaxWires = 50_000_000

var (
	// ErrCircuitTooLarge indicates a wire count above MaxWires.
	ErrCircuitTooLarge = errors.New("circuit too large")
	// ErrUnknownOpcode indicates an unrecognized gate opcode tag.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrUnsupportedValue indicates a raw value the strategy cannot convert.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrDivisionByZero indicates a Div or Mod gate with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInputCountMismatch indicates missing or extra input names.
	ErrInputCountMismatch = errors.New("input count mismatch")
	// ErrUnboundInput indicates an input name with no declared address.
	ErrUnboundInput = errors.New("unbound input")
	// ErrGateArityMismatch indicates produced outputs not matching the
	// gate's declared output wires.
	ErrGateArityMismatch = errors.New("gate arity mismatch")
	// ErrHeaderMismatch indicates a header inconsistent with the body.
	ErrHeaderMismatch = errors.New("header mismatch")
)

// Gate is one operation of a program. Input and output wires are addresses
// into the wire array.
type Gate struct {
	Op      Op
	Inputs  []int
	Outputs []int
}

func (g Gate) String() string {
	return fmt.Sprintf("{%s %v -> %v}", g.Op, g.Inputs, g.Outputs)
}

// Constant binds a raw value to a wire address before any gate runs.
type Constant struct {
	Address int
	Value   types.Scalar
}

// Binding names a wire address, either as a program input or output.
type Binding struct {
	Name    string
	Address int
}

// Party declares one participant: the input names it owns and the output
// names it is entitled to receive. Name is optional; a party without a name
// is identified by its ordinal position rendered as decimal text.
type Party struct {
	Name    string   `yaml:"name"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// Identity returns the identity of the party at the given ordinal. Both the
// sending and the receiving side of a session derive identities through this
// function, so their views agree.
func (p Party) Identity(ordinal int) string {
	if p.Name != "" {
		return p.Name
	}
	return strconv.Itoa(ordinal)
}

// Program is an immutable gate-level circuit description.
type Program struct {
	WireCount int
	Gates     []Gate
	Constants []Constant
	Inputs    []Binding
	Outputs   []Binding
	Parties   []Party
}

// InputAddress returns the wire address bound to the named input.
func (p *Program) InputAddress(name string) (int, bool) {
	for _, b := range p.Inputs {
		if b.Name == name {
			return b.Address, true
		}
	}
	return 0, false
}

// OutputAddress returns the wire address bound to the named output.
func (p *Program) OutputAddress(name string) (int, bool) {
	for _, b := range p.Outputs {
		if b.Name == name {
			return b.Address, true
		}
	}
	return 0, false
}

// PartyByIdentity returns the ordinal of the party with the given identity.
func (p *Program) PartyByIdentity(identity string) (int, bool) {
	for i, party := range p.Parties {
		if party.Identity(i) == identity {
			return i, true
		}
	}
	return 0, false
}

// Validate checks the structural invariants of the program: every referenced
// address is below the wire count, binding names are unique, and party
// partitions only name declared bindings.
func (p *Program) Validate() error {
	check := func(addr int, what string) error {
		if addr < 0 || addr >= p.WireCount {
			return xerrors.Errorf("%s address %d out of range [0, %d)",
				what, addr, p.WireCount)
		}
		return nil
	}

	for _, c := range p.Constants {
		if err := check(c.Address, "constant"); err != nil {
			return err
		}
	}

	names := map[string]struct{}{}
	for _, b := range p.Inputs {
		if _, dup := names[b.Name]; dup {
			return xerrors.Errorf("duplicate input name %q", b.Name)
		}
		names[b.Name] = struct{}{}
		if err := check(b.Address, "input"); err != nil {
			return err
		}
	}

	names = map[string]struct{}{}
	for _, b := range p.Outputs {
		if _, dup := names[b.Name]; dup {
			return xerrors.Errorf("duplicate output name %q", b.Name)
		}
		names[b.Name] = struct{}{}
		if err := check(b.Address, "output"); err != nil {
			return err
		}
	}

	for i, g := range p.Gates {
		for _, w := range g.Inputs {
			if err := check(w, fmt.Sprintf("gate %d input", i)); err != nil {
				return err
			}
		}
		for _, w := range g.Outputs {
			if err := check(w, fmt.Sprintf("gate %d output", i)); err != nil {
				return err
			}
		}
	}

	for i, party := range p.Parties {
		for _, name := range party.Inputs {
			if _, ok := p.InputAddress(name); !ok {
				return xerrors.Errorf("party %s owns undeclared input %q",
					party.Identity(i), name)
			}
		}
		for _, name := range party.Outputs {
			if _, ok := p.OutputAddress(name); !ok {
				return xerrors.Errorf("party %s entitled to undeclared output %q",
					party.Identity(i), name)
			}
		}
	}

	return nil
}
