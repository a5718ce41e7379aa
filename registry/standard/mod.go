// Package standard implements the message registry with a map of callbacks.
package standard

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.dedis.ch/mpcnet/registry"
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// NewRegistry returns a new empty registry.
func NewRegistry() registry.Registry {
	return &Registry{
		callbacks: make(map[string]entry),
	}
}

type entry struct {
	message types.Message
	exec    registry.Exec
}

// Registry implements a message registry
//
// - implements registry.Registry
type Registry struct {
	sync.RWMutex
	callbacks map[string]entry
}

// RegisterMessageCallback implements registry.Registry
func (r *Registry) RegisterMessageCallback(m types.Message, exec registry.Exec) {
	r.Lock()
	defer r.Unlock()

	r.callbacks[m.Name()] = entry{message: m, exec: exec}
}

// ProcessPacket implements registry.Registry
func (r *Registry) ProcessPacket(pkt transport.Packet) error {
	if pkt.Msg == nil {
		return xerrors.Errorf("packet %s has no message", pkt.Header.PacketID)
	}

	r.RLock()
	e, found := r.callbacks[pkt.Msg.Type]
	r.RUnlock()

	if !found {
		return xerrors.Errorf("unknown message type: %s", pkt.Msg.Type)
	}

	msg := e.message.NewEmpty()
	err := msgpack.Unmarshal(pkt.Msg.Payload, msg)
	if err != nil {
		return xerrors.Errorf("failed to unmarshal %s message: %w", pkt.Msg.Type, err)
	}

	if e.exec == nil {
		return nil
	}
	return e.exec(msg, pkt)
}

// MarshalMessage implements registry.Registry
func (r *Registry) MarshalMessage(msg types.Message) (transport.Message, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return transport.Message{}, xerrors.Errorf("failed to marshal %s message: %w",
			msg.Name(), err)
	}

	return transport.Message{
		Type:    msg.Name(),
		Payload: payload,
	}, nil
}

// UnmarshalMessage implements registry.Registry
func (r *Registry) UnmarshalMessage(msg *transport.Message, out types.Message) error {
	return msgpack.Unmarshal(msg.Payload, out)
}
