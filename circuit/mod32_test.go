package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcnet/types"
)

func combine1(t *testing.T, op Op, inputs ...uint32) uint32 {
	t.Helper()

	out, err := Mod32{}.Combine(op, inputs)
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

func Test_Mod32_Modular_Arithmetic(t *testing.T) {
	// results wrap modulo 2^32
	require.Equal(t, uint32(0), combine1(t, OpAdd, 0xFFFFFFFF, 1))
	require.Equal(t, uint32(4), combine1(t, OpAdd, 0xFFFFFFFF, 5))
	require.Equal(t, uint32(3), combine1(t, OpAdd, 1, 2))

	// a negative difference folds back into range
	require.Equal(t, uint32(0xFFFFFFFF), combine1(t, OpSub, 2, 3))
	require.Equal(t, uint32(7), combine1(t, OpSub, 10, 3))

	require.Equal(t, uint32(6), combine1(t, OpMul, 2, 3))
	require.Equal(t, uint32(0xFFFFFFFE), combine1(t, OpMul, 0xFFFFFFFF, 2))

	require.Equal(t, uint32(3), combine1(t, OpDiv, 7, 2))
	require.Equal(t, uint32(1), combine1(t, OpMod, 7, 2))

	require.Equal(t, uint32(1024), combine1(t, OpExp, 2, 10))
	// 3^20 = 3486784401 = 2^32 * 0 + ... folded modulo 2^32
	require.Equal(t, uint32(3486784401%(1<<32)), combine1(t, OpExp, 3, 20))
	require.Equal(t, uint32(1), combine1(t, OpExp, 123456, 0))
}

func Test_Mod32_Unary(t *testing.T) {
	require.Equal(t, uint32(42), combine1(t, OpUnaryAdd, 42))
	require.Equal(t, uint32(0xFFFFFFFF), combine1(t, OpUnarySub, 1))
	require.Equal(t, uint32(0), combine1(t, OpUnarySub, 0))
	require.Equal(t, uint32(0), combine1(t, OpNot, 17))
	require.Equal(t, uint32(1), combine1(t, OpNot, 0))
	require.Equal(t, uint32(0xFFFFFF00), combine1(t, OpBitNot, 0xFF))
}

func Test_Mod32_Comparisons_Return_Bits(t *testing.T) {
	ops := []Op{OpEq, OpNeq, OpBoolAnd, OpBoolOr, OpLt, OpLEq, OpGt, OpGEq}
	pairs := [][2]uint32{{0, 0}, {0, 1}, {1, 0}, {3, 5}, {5, 3}, {7, 7}, {0xFFFFFFFF, 1}}

	for _, op := range ops {
		for _, pair := range pairs {
			res := combine1(t, op, pair[0], pair[1])
			require.True(t, res == 0 || res == 1, "%s(%d, %d) = %d", op, pair[0], pair[1], res)
		}
	}

	require.Equal(t, uint32(1), combine1(t, OpLt, 3, 5))
	require.Equal(t, uint32(0), combine1(t, OpLt, 5, 3))
	require.Equal(t, uint32(1), combine1(t, OpGt, 5, 3))
	require.Equal(t, uint32(1), combine1(t, OpLEq, 7, 7))
	require.Equal(t, uint32(1), combine1(t, OpGEq, 7, 7))
	require.Equal(t, uint32(1), combine1(t, OpEq, 7, 7))
	require.Equal(t, uint32(0), combine1(t, OpNeq, 7, 7))
}

func Test_Mod32_Bitwise_And_Shifts(t *testing.T) {
	require.Equal(t, uint32(0b1000), combine1(t, OpBitAnd, 0b1100, 0b1010))
	require.Equal(t, uint32(0b1110), combine1(t, OpBitOr, 0b1100, 0b1010))
	require.Equal(t, uint32(0b0110), combine1(t, OpXor, 0b1100, 0b1010))

	// left shift results are taken modulo 2^32
	require.Equal(t, uint32(0x80000000), combine1(t, OpShiftL, 1, 31))
	require.Equal(t, uint32(0), combine1(t, OpShiftL, 1, 32))
	require.Equal(t, uint32(0xFFFFFFFE), combine1(t, OpShiftL, 0xFFFFFFFF, 1))

	require.Equal(t, uint32(1), combine1(t, OpShiftR, 0x80000000, 31))
	require.Equal(t, uint32(0), combine1(t, OpShiftR, 0x80000000, 32))
}

func Test_Mod32_Division_By_Zero(t *testing.T) {
	_, err := Mod32{}.Combine(OpDiv, []uint32{1, 0})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDivisionByZero))

	_, err = Mod32{}.Combine(OpMod, []uint32{1, 0})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDivisionByZero))
}

func Test_Mod32_Init(t *testing.T) {
	v, err := Mod32{}.Init(types.BoolScalar(true))
	require.NoError(t, err)
	require.Equal(t, uint32(1), v)

	v, err = Mod32{}.Init(types.BoolScalar(false))
	require.NoError(t, err)
	require.Equal(t, uint32(0), v)

	v, err = Mod32{}.Init(types.IntScalar(42))
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)

	// negative values fold into range
	v, err = Mod32{}.Init(types.IntScalar(-1))
	require.NoError(t, err)
	require.Equal(t, uint32(0xFFFFFFFF), v)

	v, err = Mod32{}.Init(types.TextScalar("123"))
	require.NoError(t, err)
	require.Equal(t, uint32(123), v)

	_, err = Mod32{}.Init(types.TextScalar("not a number"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupportedValue))
}

func Test_Mod32_Combine_Arity(t *testing.T) {
	_, err := Mod32{}.Combine(OpAdd, []uint32{1})
	require.Error(t, err)

	_, err = Mod32{}.Combine(OpNot, []uint32{1, 2})
	require.Error(t, err)
}
