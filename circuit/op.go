package circuit

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Op identifies a gate operation. The set is closed: parsing an unknown tag
// fails, and strategies dispatch over the enum exhaustively.
type Op byte

const (
	// OpUnaryAdd is the identity.
	OpUnaryAdd Op = iota
	// OpUnarySub is the additive inverse.
	OpUnarySub
	// OpNot is logical negation: nonzero to 0, zero to 1.
	OpNot
	// OpBitNot is the bitwise complement.
	OpBitNot
	// OpAdd is the sum.
	OpAdd
	// OpSub is the difference.
	OpSub
	// OpMul is the product.
	OpMul
	// OpDiv is truncating integer division.
	OpDiv
	// OpMod is the remainder.
	OpMod
	// OpExp is exponentiation.
	OpExp
	// OpEq is the equality test.
	OpEq
	// OpNeq is the inequality test.
	OpNeq
	// OpBoolAnd is logical conjunction.
	OpBoolAnd
	// OpBoolOr is logical disjunction.
	OpBoolOr
	// OpLt is the less-than comparison.
	OpLt
	// OpLEq is the less-or-equal comparison.
	OpLEq
	// OpGt is the greater-than comparison.
	OpGt
	// OpGEq is the greater-or-equal comparison.
	OpGEq
	// OpBitAnd is the bitwise conjunction.
	OpBitAnd
	// OpBitOr is the bitwise disjunction.
	OpBitOr
	// OpXor is the bitwise exclusive or.
	OpXor
	// OpShiftL is the left shift.
	OpShiftL
	// OpShiftR is the right shift.
	OpShiftR
)

var opNames = map[Op]string{
	OpUnaryAdd: "UnaryAdd",
	OpUnarySub: "UnarySub",
	OpNot:      "Not",
	OpBitNot:   "BitNot",
	OpAdd:      "Add",
	OpSub:      "Sub",
	OpMul:      "Mul",
	OpDiv:      "Div",
	OpMod:      "Mod",
	OpExp:      "Exp",
	OpEq:       "Eq",
	OpNeq:      "Neq",
	OpBoolAnd:  "BoolAnd",
	OpBoolOr:   "BoolOr",
	OpLt:       "Lt",
	OpLEq:      "LEq",
	OpGt:       "Gt",
	OpGEq:      "GEq",
	OpBitAnd:   "BitAnd",
	OpBitOr:    "BitOr",
	OpXor:      "Xor",
	OpShiftL:   "ShiftL",
	OpShiftR:   "ShiftR",
}

var opsByName map[string]Op

// arities maps every op to its (input, output) wire counts.
var arities = map[Op][2]int{
	OpUnaryAdd: {1, 1},
	OpUnarySub: {1, 1},
	OpNot:      {1, 1},
	OpBitNot:   {1, 1},
	OpAdd:      {2, 1},
	OpSub:      {2, 1},
	OpMul:      {2, 1},
	OpDiv:      {2, 1},
	OpMod:      {2, 1},
	OpExp:      {2, 1},
	OpEq:       {2, 1},
	OpNeq:      {2, 1},
	OpBoolAnd:  {2, 1},
	OpBoolOr:   {2, 1},
	OpLt:       {2, 1},
	OpLEq:      {2, 1},
	OpGt:       {2, 1},
	OpGEq:      {2, 1},
	OpBitAnd:   {2, 1},
	OpBitOr:    {2, 1},
	OpXor:      {2, 1},
	OpShiftL:   {2, 1},
	OpShiftR:   {2, 1},
}

func init() {
	opsByName = make(map[string]Op, len(opNames))
	for op, name := range opNames {
		opsByName[name] = op
	}
}

func (op Op) String() string {
	name, ok := opNames[op]
	if !ok {
		return fmt.Sprintf("{Op %d}", byte(op))
	}
	return name
}

// InputArity returns the number of input wires the op consumes.
func (op Op) InputArity() int {
	return arities[op][0]
}

// OutputArity returns the number of output wires the op produces.
func (op Op) OutputArity() int {
	return arities[op][1]
}

// ParseOp resolves an opcode tag. An unrecognized tag returns
// ErrUnknownOpcode.
func ParseOp(tag string) (Op, error) {
	op, ok := opsByName[tag]
	if !ok {
		return 0, xerrors.Errorf("%w: %q", ErrUnknownOpcode, tag)
	}
	return op, nil
}
