package circuit

import (
	"go.dedis.ch/mpcnet/types"
)

// Arithmetic defines how gate operations transform values of the strategy's
// internal representation T. Implementations must be pure: Combine on the
// same arguments always yields the same outputs.
type Arithmetic[T any] interface {
	// Zero returns the value wires hold before anything is written to them.
	Zero() T

	// Init converts an externally supplied scalar into the internal
	// representation. It fails with ErrUnsupportedValue when the raw value
	// cannot be interpreted.
	Init(raw types.Scalar) (T, error)

	// Combine applies the op to the inputs. It fails with ErrUnknownOpcode
	// on an out-of-range op and must produce exactly the op's output arity.
	Combine(op Op, inputs []T) ([]T, error)

	// Export converts an internal value back into a raw scalar for
	// distribution to peers.
	Export(value T) types.Scalar
}

// Engine evaluates a program over raw scalars. The reference engine wraps
// Evaluate with an arithmetic strategy; privacy-preserving engines satisfy
// the same contract externally.
type Engine interface {
	Evaluate(prog *Program, inputs map[string]types.Scalar) (map[string]types.Scalar, error)
}

// NewEngine returns the reference engine for the given strategy. It computes
// in plaintext and offers no confidentiality: it exists to validate the
// protocol shape cryptographic engines must also implement.
func NewEngine[T any](arith Arithmetic[T]) Engine {
	return engine[T]{arith: arith}
}

type engine[T any] struct {
	arith Arithmetic[T]
}

// Evaluate implements Engine
func (e engine[T]) Evaluate(prog *Program,
	inputs map[string]types.Scalar) (map[string]types.Scalar, error) {

	values, err := Evaluate(prog, inputs, e.arith)
	if err != nil {
		return nil, err
	}

	out := make(map[string]types.Scalar, len(values))
	for name, value := range values {
		out[name] = e.arith.Export(value)
	}
	return out, nil
}
