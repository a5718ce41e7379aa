// Package session implements the per-session protocol: it gathers every
// party's inputs over the message layer, evaluates the circuit exactly once
// all inputs are present, and distributes to each party the outputs it is
// entitled to see.
//
// The evaluation engine is pluggable. The default engine computes in
// plaintext and exists to validate the protocol shape; it offers no
// confidentiality whatsoever.
package session

import (
	"errors"
	"time"

	"github.com/rs/xid"
	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/peer"
	"go.dedis.ch/mpcnet/peer/impl/message"
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// DefaultProbeInterval is the liveness probe period used when the
// configuration does not set one.
const DefaultProbeInterval = time.Millisecond * 250

var (
	// ErrDuplicatePeer indicates a second contribution from a peer that
	// already contributed.
	ErrDuplicatePeer = errors.New("duplicate peer contribution")
	// ErrUnknownPeer indicates a contribution from an identity that matches
	// no declared party.
	ErrUnknownPeer = errors.New("unknown peer")
	// ErrMissingInput indicates a contribution lacking an input name owned
	// by the sender.
	ErrMissingInput = errors.New("missing input")
	// ErrForeignInput indicates a contribution supplying an input name the
	// sender does not own.
	ErrForeignInput = errors.New("foreign input")
	// ErrMissingOwnValue indicates the node's value store lacks one of its
	// own declared inputs.
	ErrMissingOwnValue = errors.New("missing own input value")
)

// SessionModule implements the session protocol functions of a node.
//
// - implements peer.Sessions
type SessionModule struct {
	*message.MessageModule
	conf *peer.Configuration

	sessions *safeSessionStore
}

// NewSessionModule returns a module with the session message handlers
// registered.
func NewSessionModule(conf *peer.Configuration,
	messageModule *message.MessageModule) *SessionModule {

	m := SessionModule{
		MessageModule: messageModule,
		conf:          conf,
		sessions:      newSafeSessionStore(),
	}

	// message registery
	m.conf.MessageRegistry.RegisterMessageCallback(types.SessionPingMessage{}, m.ProcessSessionPingMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.SessionInputMessage{}, m.ProcessSessionInputMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.SessionOutputMessage{}, m.ProcessSessionOutputMsg)
	m.conf.MessageRegistry.RegisterMessageCallback(types.SessionErrorMessage{}, m.ProcessSessionErrorMsg)

	return &m
}

/** Feature Functions **/

// NewSession implements peer.Sessions
func (m *SessionModule) NewSession(id string, prog *circuit.Program, self int,
	directory map[string]string) (peer.Session, error) {

	err := prog.Validate()
	if err != nil {
		return nil, err
	}
	if self < 0 || self >= len(prog.Parties) {
		return nil, xerrors.Errorf("self ordinal %d out of range for %d parties",
			self, len(prog.Parties))
	}
	for i, party := range prog.Parties {
		if i == self {
			continue
		}
		identity := party.Identity(i)
		if _, ok := directory[identity]; !ok {
			return nil, xerrors.Errorf("no address for party %s", identity)
		}
	}

	own := make(map[string]types.Scalar)
	for _, name := range prog.Parties[self].Inputs {
		value, ok := m.conf.Storage.Get(name)
		if !ok {
			return nil, xerrors.Errorf("%w: %q", ErrMissingOwnValue, name)
		}
		own[name] = value
	}

	if id == "" {
		id = xid.New().String()
	}

	s := newSession(m, id, prog, self, directory, own)

	// Registering the session also drains the contributions that arrived
	// before it was constructed; replay them in arrival order.
	parked, ok := m.sessions.add(id, s)
	if !ok {
		return nil, xerrors.Errorf("session %s already exists", id)
	}
	for _, contribution := range parked {
		err := s.handleInput(contribution.Origin, contribution.Values)
		if err != nil {
			return s, err
		}
	}

	s.start()
	return s, nil
}

// GetSession implements peer.Sessions
func (m *SessionModule) GetSession(id string) (peer.Session, bool) {
	s, ok := m.sessions.get(id)
	return s, ok
}

// SetOwnValue implements peer.Sessions
func (m *SessionModule) SetOwnValue(name string, value types.Scalar) error {
	return m.conf.Storage.Put(name, value)
}

func (m *SessionModule) probeInterval() time.Duration {
	if m.conf.ProbeInterval == 0 {
		return DefaultProbeInterval
	}
	return m.conf.ProbeInterval
}

func (m *SessionModule) engine() circuit.Engine {
	return m.conf.Engine
}
