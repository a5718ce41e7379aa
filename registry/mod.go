// Package registry defines the message registry contract. The registry knows
// every message type a peer can process and dispatches incoming packets to
// the callback registered for their type.
package registry

import (
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/types"
)

// Exec is the type of function executed on a message of the registered type.
type Exec func(types.Message, transport.Packet) error

// Registry defines the functions of a message registry.
type Registry interface {
	// RegisterMessageCallback sets the callback executed when a packet with
	// a message of this type is processed.
	RegisterMessageCallback(m types.Message, exec Exec)

	// ProcessPacket unmarshals the packet's message and calls the callback
	// registered for its type.
	ProcessPacket(pkt transport.Packet) error

	// MarshalMessage packs a message into a transport message.
	MarshalMessage(msg types.Message) (transport.Message, error)

	// UnmarshalMessage fills msg from the transport message payload.
	UnmarshalMessage(msg *transport.Message, out types.Message) error
}
