package circuit

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

var reParts = regexp.MustCompilePOSIX("[[:space:]]+")

// Meta carries the structured data supplied alongside the circuit text:
// constant placements, named input/output bindings, and the party partition
// in ordinal order.
type Meta struct {
	Constants []Constant
	Inputs    []Binding
	Outputs   []Binding
	Parties   []Party
}

// Parse reads the line-oriented circuit format and combines it with the
// supplied metadata into a validated program.
//
// The format is: a header line `<gateCount> <wireCount>`, a metadata block
// running up to the first blank line (skipped), then one gate per line
// `<inArity> <outArity> <in>... <out>... <opcode>`, terminated by a blank
// line or EOF.
func Parse(r io.Reader, meta Meta) (*Program, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return nil, xerrors.Errorf("%w: missing header line", ErrHeaderMismatch)
	}
	header := reParts.Split(strings.TrimSpace(scanner.Text()), -1)
	if len(header) != 2 {
		return nil, xerrors.Errorf("%w: expected `<gateCount> <wireCount>`, got %q",
			ErrHeaderMismatch, scanner.Text())
	}
	gateCount, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, xerrors.Errorf("%w: bad gate count %q", ErrHeaderMismatch, header[0])
	}
	wireCount, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, xerrors.Errorf("%w: bad wire count %q", ErrHeaderMismatch, header[1])
	}

	// Skip the metadata block: everything up to the first blank line, then
	// any further blank lines.
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			break
		}
	}

	var gates []Gate
	started := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if started {
				break
			}
			continue
		}
		started = true

		gate, err := parseGate(line)
		if err != nil {
			return nil, err
		}
		gates = append(gates, gate)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(gates) != gateCount {
		return nil, xerrors.Errorf("%w: header declares %d gates, body has %d",
			ErrHeaderMismatch, gateCount, len(gates))
	}

	prog := &Program{
		WireCount: wireCount,
		Gates:     gates,
		Constants: meta.Constants,
		Inputs:    meta.Inputs,
		Outputs:   meta.Outputs,
		Parties:   meta.Parties,
	}

	err = prog.Validate()
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseFile parses a circuit file.
func ParseFile(path string, meta Meta) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, meta)
}

func parseGate(line string) (Gate, error) {
	parts := reParts.Split(line, -1)
	if len(parts) < 4 {
		return Gate{}, xerrors.Errorf("short gate line %q", line)
	}

	inArity, err := strconv.Atoi(parts[0])
	if err != nil {
		return Gate{}, xerrors.Errorf("bad input arity %q", parts[0])
	}
	outArity, err := strconv.Atoi(parts[1])
	if err != nil {
		return Gate{}, xerrors.Errorf("bad output arity %q", parts[1])
	}
	if len(parts) != 2+inArity+outArity+1 {
		return Gate{}, xerrors.Errorf("gate line %q has %d tokens, expected %d",
			line, len(parts), 2+inArity+outArity+1)
	}

	wires := make([]int, inArity+outArity)
	for i := range wires {
		wires[i], err = strconv.Atoi(parts[2+i])
		if err != nil {
			return Gate{}, xerrors.Errorf("bad wire index %q", parts[2+i])
		}
	}

	op, err := ParseOp(parts[len(parts)-1])
	if err != nil {
		return Gate{}, err
	}
	if op.InputArity() != inArity || op.OutputArity() != outArity {
		return Gate{}, xerrors.Errorf("%s expects arity (%d,%d), line %q declares (%d,%d)",
			op, op.InputArity(), op.OutputArity(), line, inArity, outArity)
	}

	return Gate{
		Op:      op,
		Inputs:  wires[:inArity],
		Outputs: wires[inArity:],
	}, nil
}

// ParseConstants converts (address, raw value) pairs into constants.
func ParseConstants(pairs map[int]types.Scalar) []Constant {
	constants := make([]Constant, 0, len(pairs))
	for addr, value := range pairs {
		constants = append(constants, Constant{Address: addr, Value: value})
	}
	return constants
}
