package session

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/types"
)

// ProcessSessionPingMsg is a callback function to handle a liveness probe.
// A probe signals the peer is alive; it changes no session state.
func (m *SessionModule) ProcessSessionPingMsg(msg types.Message, pkt transport.Packet) error {
	_, ok := msg.(*types.SessionPingMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}
	return nil
}

// ProcessSessionInputMsg is a callback function to handle a peer's input
// contribution. Contributions for a session not yet constructed locally are
// parked and replayed when it is.
func (m *SessionModule) ProcessSessionInputMsg(msg types.Message, pkt transport.Packet) error {
	inputMsg, ok := msg.(*types.SessionInputMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	s, ok := m.sessions.getOrPark(inputMsg.SessionID, *inputMsg)
	if !ok {
		log.Debug().Msgf("%s: parked contribution from %s for session %s",
			m.conf.Socket.GetAddress(), inputMsg.Origin, inputMsg.SessionID)
		return nil
	}

	return s.handleInput(inputMsg.Origin, inputMsg.Values)
}

// ProcessSessionOutputMsg is a callback function to handle an output slice
// distributed by a peer.
func (m *SessionModule) ProcessSessionOutputMsg(msg types.Message, pkt transport.Packet) error {
	outputMsg, ok := msg.(*types.SessionOutputMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	s, ok := m.sessions.get(outputMsg.SessionID)
	if !ok {
		return fmt.Errorf("invalid session ID: %s", outputMsg.SessionID)
	}

	s.handleOutput(pkt.Header.Source, outputMsg.Values)
	return nil
}

// ProcessSessionErrorMsg is a callback function to handle a failure notice
// from a peer. The session settles as failed so the caller is not left
// waiting on a session that can no longer complete.
func (m *SessionModule) ProcessSessionErrorMsg(msg types.Message, pkt transport.Packet) error {
	errMsg, ok := msg.(*types.SessionErrorMessage)
	if !ok {
		return fmt.Errorf("wrong type: %T", msg)
	}

	s, ok := m.sessions.get(errMsg.SessionID)
	if !ok {
		return fmt.Errorf("invalid session ID: %s", errMsg.SessionID)
	}

	s.handleRemoteError(pkt.Header.Source, errMsg.Error)
	return nil
}
