package circuit

import (
	"strconv"

	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// Mod32 is the reference arithmetic strategy: fixed-width 32-bit unsigned
// modular arithmetic. All results are taken modulo 2^32; negative raw values
// fold back into range. Division or modulo by zero fails the evaluation with
// ErrDivisionByZero.
//
// - implements circuit.Arithmetic[uint32]
type Mod32 struct{}

// Zero implements circuit.Arithmetic
func (Mod32) Zero() uint32 {
	return 0
}

// Init implements circuit.Arithmetic
func (Mod32) Init(raw types.Scalar) (uint32, error) {
	switch raw.Kind {
	case types.ScalarBool:
		if raw.Bool {
			return 1, nil
		}
		return 0, nil
	case types.ScalarInt:
		return uint32(raw.Int), nil
	case types.ScalarText:
		n, err := strconv.ParseInt(raw.Text, 10, 64)
		if err != nil {
			return 0, xerrors.Errorf("%w: %q is not numeric text", ErrUnsupportedValue, raw.Text)
		}
		return uint32(n), nil
	default:
		return 0, xerrors.Errorf("%w: scalar kind %d", ErrUnsupportedValue, raw.Kind)
	}
}

// Export implements circuit.Arithmetic
func (Mod32) Export(value uint32) types.Scalar {
	return types.IntScalar(int64(value))
}

// Combine implements circuit.Arithmetic. Unsigned 32-bit arithmetic wraps,
// which is exactly arithmetic modulo 2^32.
func (Mod32) Combine(op Op, inputs []uint32) ([]uint32, error) {
	if len(inputs) != op.InputArity() {
		return nil, xerrors.Errorf("%s takes %d inputs, got %d",
			op, op.InputArity(), len(inputs))
	}

	var res uint32
	switch op {
	case OpUnaryAdd:
		res = inputs[0]
	case OpUnarySub:
		res = -inputs[0]
	case OpNot:
		res = boolBit(inputs[0] == 0)
	case OpBitNot:
		res = ^inputs[0]
	case OpAdd:
		res = inputs[0] + inputs[1]
	case OpSub:
		res = inputs[0] - inputs[1]
	case OpMul:
		res = inputs[0] * inputs[1]
	case OpDiv:
		if inputs[1] == 0 {
			return nil, xerrors.Errorf("%w: %d / 0", ErrDivisionByZero, inputs[0])
		}
		res = inputs[0] / inputs[1]
	case OpMod:
		if inputs[1] == 0 {
			return nil, xerrors.Errorf("%w: %d %% 0", ErrDivisionByZero, inputs[0])
		}
		res = inputs[0] % inputs[1]
	case OpExp:
		res = pow32(inputs[0], inputs[1])
	case OpEq:
		res = boolBit(inputs[0] == inputs[1])
	case OpNeq:
		res = boolBit(inputs[0] != inputs[1])
	case OpBoolAnd:
		res = boolBit(inputs[0] != 0 && inputs[1] != 0)
	case OpBoolOr:
		res = boolBit(inputs[0] != 0 || inputs[1] != 0)
	case OpLt:
		res = boolBit(inputs[0] < inputs[1])
	case OpLEq:
		res = boolBit(inputs[0] <= inputs[1])
	case OpGt:
		res = boolBit(inputs[0] > inputs[1])
	case OpGEq:
		res = boolBit(inputs[0] >= inputs[1])
	case OpBitAnd:
		res = inputs[0] & inputs[1]
	case OpBitOr:
		res = inputs[0] | inputs[1]
	case OpXor:
		res = inputs[0] ^ inputs[1]
	case OpShiftL:
		res = shiftL(inputs[0], inputs[1])
	case OpShiftR:
		res = shiftR(inputs[0], inputs[1])
	default:
		return nil, xerrors.Errorf("%w: %s", ErrUnknownOpcode, op)
	}

	return []uint32{res}, nil
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// pow32 computes base^exp by binary exponentiation. Wrapping multiplication
// keeps every step modulo 2^32.
func pow32(base, exp uint32) uint32 {
	var res uint32 = 1
	for exp > 0 {
		if exp&1 == 1 {
			res *= base
		}
		base *= base
		exp >>= 1
	}
	return res
}

// Shift counts of 32 and above drain the value to zero.
func shiftL(v, n uint32) uint32 {
	if n >= 32 {
		return 0
	}
	return v << n
}

func shiftR(v, n uint32) uint32 {
	if n >= 32 {
		return 0
	}
	return v >> n
}
