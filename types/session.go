package types

import "fmt"

// -----------------------------------------------------------------------------
// SessionPingMessage

// NewEmpty implements types.Message.
func (m SessionPingMessage) NewEmpty() Message {
	return &SessionPingMessage{}
}

// Name implements types.Message.
func (SessionPingMessage) Name() string {
	return "sessionping"
}

// String implements types.Message.
func (m SessionPingMessage) String() string {
	return fmt.Sprintf("{session ping for %s}", m.SessionID)
}

// -----------------------------------------------------------------------------
// SessionInputMessage

// NewEmpty implements types.Message.
func (m SessionInputMessage) NewEmpty() Message {
	return &SessionInputMessage{}
}

// Name implements types.Message.
func (SessionInputMessage) Name() string {
	return "sessioninput"
}

// String implements types.Message.
func (m SessionInputMessage) String() string {
	return fmt.Sprintf("{session input for %s from %s: %d values}",
		m.SessionID, m.Origin, len(m.Values))
}

// -----------------------------------------------------------------------------
// SessionOutputMessage

// NewEmpty implements types.Message.
func (m SessionOutputMessage) NewEmpty() Message {
	return &SessionOutputMessage{}
}

// Name implements types.Message.
func (SessionOutputMessage) Name() string {
	return "sessionoutput"
}

// String implements types.Message.
func (m SessionOutputMessage) String() string {
	return fmt.Sprintf("{session output for %s: %d values}",
		m.SessionID, len(m.Values))
}

// -----------------------------------------------------------------------------
// SessionErrorMessage

// NewEmpty implements types.Message.
func (m SessionErrorMessage) NewEmpty() Message {
	return &SessionErrorMessage{}
}

// Name implements types.Message.
func (SessionErrorMessage) Name() string {
	return "sessionerror"
}

// String implements types.Message.
func (m SessionErrorMessage) String() string {
	return fmt.Sprintf("{session error for %s: %s}", m.SessionID, m.Error)
}
