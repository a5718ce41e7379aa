package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/promise"
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// Session is one run of the protocol among the program's parties, seen from
// this node.
//
// - implements peer.Session
type Session struct {
	module    *SessionModule
	id        string
	prog      *circuit.Program
	self      int
	directory map[string]string
	own       map[string]types.Scalar

	// mu guards partialInputs and receivedFrom. Handlers run to completion
	// under it, so contributions are processed one at a time.
	mu            sync.Mutex
	partialInputs map[string]types.Scalar
	receivedFrom  map[string]struct{}

	combined *promise.Promise[map[string]types.Scalar]
	output   *promise.Promise[map[string]types.Scalar]

	probeCtx  context.Context
	stopProbe context.CancelFunc
}

func newSession(module *SessionModule, id string, prog *circuit.Program,
	self int, directory map[string]string, own map[string]types.Scalar) *Session {

	ctx, cancel := context.WithCancel(context.Background())

	s := Session{
		module:        module,
		id:            id,
		prog:          prog,
		self:          self,
		directory:     directory,
		own:           own,
		partialInputs: make(map[string]types.Scalar),
		receivedFrom:  make(map[string]struct{}),
		combined:      promise.New[map[string]types.Scalar](),
		output:        promise.New[map[string]types.Scalar](),
		probeCtx:      ctx,
		stopProbe:     cancel,
	}

	for name, value := range own {
		s.partialInputs[name] = value
	}

	return &s
}

// ID implements peer.Session
func (s *Session) ID() string {
	return s.id
}

// Output implements peer.Session
func (s *Session) Output(ctx context.Context) (map[string]types.Scalar, error) {
	return s.output.Await(ctx)
}

func (s *Session) identity() string {
	return s.prog.Parties[s.self].Identity(s.self)
}

// start launches the probe daemon and the evaluation continuation, then
// sends this party's own contribution to every peer.
func (s *Session) start() {
	go s.probeDaemon()
	go s.run()

	if s.output.State() != promise.Pending {
		return
	}

	for i, party := range s.prog.Parties {
		if i == s.self {
			continue
		}
		err := s.send(party.Identity(i), types.SessionInputMessage{
			SessionID: s.id,
			Origin:    s.identity(),
			Values:    s.own,
		})
		if err != nil {
			s.fail(xerrors.Errorf("failed to contribute to %s: %w",
				party.Identity(i), err), "")
			return
		}
	}

	// a single-party session has nothing to wait for
	s.checkComplete()
}

// probeDaemon sends a ping to every peer at the probe interval until the
// session leaves the collecting state.
func (s *Session) probeDaemon() {
	interval := s.module.probeInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.probeCtx.Done():
			return
		case <-ticker.C:
			for i, party := range s.prog.Parties {
				if i == s.self {
					continue
				}
				err := s.send(party.Identity(i), types.SessionPingMessage{
					SessionID: s.id,
					Marker:    types.PingMarker,
				})
				if err != nil {
					log.Debug().Msgf("%s: session %s: ping to %s failed: %v",
						s.identity(), s.id, party.Identity(i), err)
				}
			}
		}
	}
}

// run is the evaluation continuation: it waits for the combined inputs,
// evaluates the program, distributes each peer's output slice and settles
// this party's own output.
func (s *Session) run() {
	inputs, err := s.combined.Await(context.Background())
	if err != nil {
		// the failure path has already settled the session
		return
	}

	s.stopProbe()

	outputs, err := s.module.engine().Evaluate(s.prog, inputs)
	if err != nil {
		s.fail(xerrors.Errorf("evaluation failed: %w", err), "")
		s.notifyPeers(err)
		return
	}

	for i, party := range s.prog.Parties {
		if i == s.self {
			continue
		}
		slice := partition(outputs, party.Outputs)
		err := s.send(party.Identity(i), types.SessionOutputMessage{
			SessionID: s.id,
			Values:    slice,
		})
		if err != nil {
			log.Warn().Msgf("%s: session %s: output to %s failed: %v",
				s.identity(), s.id, party.Identity(i), err)
		}
	}

	own := partition(outputs, s.prog.Parties[s.self].Outputs)
	err = s.output.Resolve(own)
	if err != nil {
		log.Error().Msgf("%s: session %s settled twice: %v", s.identity(), s.id, err)
	}
}

// handleInput processes one peer contribution. It runs to completion under
// the session mutex: contributions are serialized.
func (s *Session) handleInput(origin string, values map[string]types.Scalar) error {
	s.mu.Lock()

	fail := func(err error) error {
		s.mu.Unlock()
		s.fail(err, origin)
		return err
	}

	ordinal, ok := s.prog.PartyByIdentity(origin)
	if !ok {
		return fail(xerrors.Errorf("%w: %q", ErrUnknownPeer, origin))
	}
	if ordinal == s.self {
		return fail(xerrors.Errorf("%w: %q is this party", ErrDuplicatePeer, origin))
	}
	if _, dup := s.receivedFrom[origin]; dup {
		return fail(xerrors.Errorf("%w: %q", ErrDuplicatePeer, origin))
	}

	// validate the full contribution before touching partialInputs
	owned := s.prog.Parties[ordinal].Inputs
	for _, name := range owned {
		if _, ok := values[name]; !ok {
			return fail(xerrors.Errorf("%w: %q owes input %q", ErrMissingInput, origin, name))
		}
	}
	for name := range values {
		if !contains(owned, name) {
			return fail(xerrors.Errorf("%w: %q does not own input %q",
				ErrForeignInput, origin, name))
		}
	}

	for name, value := range values {
		s.partialInputs[name] = value
	}
	s.receivedFrom[origin] = struct{}{}

	s.mu.Unlock()
	s.checkComplete()
	return nil
}

// checkComplete resolves the combined-inputs promise once every peer has
// contributed.
func (s *Session) checkComplete() {
	s.mu.Lock()

	if len(s.receivedFrom) != len(s.prog.Parties)-1 {
		s.mu.Unlock()
		return
	}
	snapshot := make(map[string]types.Scalar, len(s.partialInputs))
	for name, value := range s.partialInputs {
		snapshot[name] = value
	}
	s.mu.Unlock()

	err := s.combined.Resolve(snapshot)
	if err != nil {
		log.Error().Msgf("%s: session %s inputs resolved twice: %v",
			s.identity(), s.id, err)
	}
}

// handleRemoteError settles the session after a peer reported a failure.
func (s *Session) handleRemoteError(origin, description string) {
	s.fail(xerrors.Errorf("peer %s reported failure: %s", origin, description), "")
}

// handleOutput processes an output slice received from a peer. The reference
// engine evaluates locally, so its own result is authoritative; the message
// only confirms the peer completed.
func (s *Session) handleOutput(origin string, values map[string]types.Scalar) {
	log.Debug().Msgf("%s: session %s: output slice from %s (%d values)",
		s.identity(), s.id, origin, len(values))
}

// fail settles the session with the error. If an offender is given, it is
// sent a diagnostic error message, best effort.
func (s *Session) fail(err error, offender string) {
	settled := s.output.Reject(err)
	s.combined.Reject(err)
	s.stopProbe()

	if settled != nil {
		// already settled, nothing more to do
		return
	}

	log.Info().Msgf("%s: session %s failed: %v", s.identity(), s.id, err)

	if offender == "" {
		return
	}
	sendErr := s.send(offender, types.SessionErrorMessage{
		SessionID: s.id,
		Error:     err.Error(),
	})
	if sendErr != nil {
		log.Debug().Msgf("%s: session %s: error notice to %s failed: %v",
			s.identity(), s.id, offender, sendErr)
	}
}

// notifyPeers tells every peer the session can no longer complete.
func (s *Session) notifyPeers(err error) {
	for i, party := range s.prog.Parties {
		if i == s.self {
			continue
		}
		sendErr := s.send(party.Identity(i), types.SessionErrorMessage{
			SessionID: s.id,
			Error:     err.Error(),
		})
		if sendErr != nil {
			log.Debug().Msgf("%s: session %s: error notice to %s failed: %v",
				s.identity(), s.id, party.Identity(i), sendErr)
		}
	}
}

func (s *Session) send(identity string, payload types.Message) error {
	addr, ok := s.directory[identity]
	if !ok {
		return xerrors.Errorf("no address for party %s", identity)
	}
	msg, err := s.module.CreateMsg(payload)
	if err != nil {
		return err
	}
	return s.module.Unicast(addr, msg)
}

func partition(outputs map[string]types.Scalar, names []string) map[string]types.Scalar {
	slice := make(map[string]types.Scalar, len(names))
	for _, name := range names {
		value, ok := outputs[name]
		if ok {
			slice[name] = value
		}
	}
	return slice
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
