package types

// Message defines the type of message sent between peers. A message must be
// registered with the message registry before it can be processed.
type Message interface {
	// NewEmpty returns a new empty initialized message of the same type.
	// Needed to unmarshal a message payload.
	NewEmpty() Message

	// Name returns the unique name of the message.
	Name() string

	// String returns a string representation of the message.
	String() string
}
