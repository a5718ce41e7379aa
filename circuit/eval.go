package circuit

import (
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// Evaluate runs the program over the given inputs with the arithmetic
// strategy. inputs must contain exactly the input names the program
// declares. The program is validated before any gate runs, so a hand-built
// program with out-of-range addresses errors instead of panicking. The wire
// array is local to the call: evaluation is a pure function of
// (program, inputs, strategy).
func Evaluate[T any](prog *Program, inputs map[string]types.Scalar,
	arith Arithmetic[T]) (map[string]T, error) {

	if prog.WireCount < 0 || prog.WireCount > MaxWires {
		return nil, xerrors.Errorf("%w: %d wires, ceiling is %d",
			ErrCircuitTooLarge, prog.WireCount, MaxWires)
	}

	err := prog.Validate()
	if err != nil {
		return nil, err
	}

	wires := make([]T, prog.WireCount)
	zero := arith.Zero()
	for i := range wires {
		wires[i] = zero
	}

	for _, c := range prog.Constants {
		value, err := arith.Init(c.Value)
		if err != nil {
			return nil, xerrors.Errorf("constant at wire %d: %w", c.Address, err)
		}
		wires[c.Address] = value
	}

	if len(inputs) != len(prog.Inputs) {
		return nil, xerrors.Errorf("%w: got %d values for %d declared inputs",
			ErrInputCountMismatch, len(inputs), len(prog.Inputs))
	}
	for name, raw := range inputs {
		addr, ok := prog.InputAddress(name)
		if !ok {
			return nil, xerrors.Errorf("%w: %q", ErrUnboundInput, name)
		}
		value, err := arith.Init(raw)
		if err != nil {
			return nil, xerrors.Errorf("input %q: %w", name, err)
		}
		wires[addr] = value
	}

	for i, gate := range prog.Gates {
		in := make([]T, len(gate.Inputs))
		for j, w := range gate.Inputs {
			in[j] = wires[w]
		}

		out, err := arith.Combine(gate.Op, in)
		if err != nil {
			return nil, xerrors.Errorf("gate %d (%s): %w", i, gate.Op, err)
		}
		if len(out) != len(gate.Outputs) {
			return nil, xerrors.Errorf("%w: gate %d (%s) produced %d values for %d wires",
				ErrGateArityMismatch, i, gate.Op, len(out), len(gate.Outputs))
		}

		for j, w := range gate.Outputs {
			wires[w] = out[j]
		}
	}

	results := make(map[string]T, len(prog.Outputs))
	for _, b := range prog.Outputs {
		results[b.Name] = wires[b.Address]
	}
	return results, nil
}
