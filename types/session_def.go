package types

// PingMarker is the literal payload of a liveness probe.
const PingMarker = "ping"

// SessionPingMessage describes a liveness probe sent to peers while a
// session is still collecting their inputs. It carries no state.
type SessionPingMessage struct {
	SessionID string
	Marker    string
}

// SessionInputMessage describes a party's input contribution for a session.
// Values must contain every input name owned by the sending party.
type SessionInputMessage struct {
	SessionID string
	Origin    string // party identity of the sender
	Values    map[string]Scalar
}

// SessionOutputMessage describes the output slice a party is entitled to
// receive once the session has evaluated the circuit.
type SessionOutputMessage struct {
	SessionID string
	Values    map[string]Scalar
}

// SessionErrorMessage notifies a peer that the session failed and can no
// longer complete.
type SessionErrorMessage struct {
	SessionID string
	Error     string
}
