package peer

import (
	"context"

	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/types"
)

// Sessions defines the session protocol functions of a node.
type Sessions interface {
	// NewSession constructs and starts a session for the program. self is
	// the ordinal of this node's party in the program's party list, and
	// directory maps party identities to transport addresses. The session's
	// own input values are read from the node's value store. An empty id
	// generates a fresh one; parties of one session must agree on the id
	// out of band.
	NewSession(id string, prog *circuit.Program, self int,
		directory map[string]string) (Session, error)

	// GetSession returns the session with the given id.
	GetSession(id string) (Session, bool)

	// SetOwnValue stores one of this party's named input values.
	SetOwnValue(name string, value types.Scalar) error
}

// Session is one run of the input-collection, evaluation and
// output-distribution protocol.
type Session interface {
	// ID returns the session identifier shared by all parties.
	ID() string

	// Output blocks until the session settles and returns the output
	// mapping this party is entitled to, or the failure that settled the
	// session.
	Output(ctx context.Context) (map[string]types.Scalar, error)
}
