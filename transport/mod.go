// Package transport defines the abstract transport contract used by peers to
// exchange packets. A packet is a small envelope that carries a typed,
// msgpack-encoded message payload.
package transport

import (
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/vmihailenco/msgpack/v5"
)

// Transport creates sockets bound to network addresses.
type Transport interface {
	CreateSocket(address string) (ClosableSocket, error)
}

// Socket describes the sending and receiving side of a transport endpoint.
type Socket interface {
	// Send sends a packet to the destination. A zero timeout blocks forever.
	// A reached timeout returns a TimeoutError.
	Send(dest string, pkt Packet, timeout time.Duration) error

	// Recv blocks until a packet is received or the timeout is reached, in
	// which case it returns a TimeoutError. A zero timeout blocks forever.
	Recv(timeout time.Duration) (Packet, error)

	// GetAddress returns the address assigned to the socket.
	GetAddress() string

	// GetIns returns all packets received so far.
	GetIns() []Packet

	// GetOuts returns all packets sent so far.
	GetOuts() []Packet
}

// ClosableSocket is a socket that can release its resources.
type ClosableSocket interface {
	Socket

	Close() error
}

// Packet is the envelope exchanged between sockets.
type Packet struct {
	Header *Header
	Msg    *Message
}

// Marshal packs the packet with msgpack.
func (p Packet) Marshal() ([]byte, error) {
	return msgpack.Marshal(&p)
}

// Unmarshal fills the packet from msgpack bytes.
func (p *Packet) Unmarshal(data []byte) error {
	return msgpack.Unmarshal(data, p)
}

// Copy returns a deep copy of the packet.
func (p Packet) Copy() Packet {
	h := p.Header.Copy()
	m := p.Msg.Copy()

	return Packet{
		Header: &h,
		Msg:    &m,
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("{packet %s: %s -> %s, %s}", p.Header.PacketID,
		p.Header.Source, p.Header.Destination, p.Msg.Type)
}

// NewHeader returns a header with a fresh packet ID and the current
// timestamp.
func NewHeader(source, relayedBy, destination string) Header {
	return Header{
		PacketID:    xid.New().String(),
		Timestamp:   time.Now().UnixNano(),
		Source:      source,
		RelayedBy:   relayedBy,
		Destination: destination,
	}
}

// Header describes the routing metadata of a packet.
type Header struct {
	PacketID    string
	Timestamp   int64
	Source      string
	RelayedBy   string
	Destination string
}

// Copy returns a copy of the header.
func (h Header) Copy() Header {
	return h
}

// Message is a typed payload. Type names the registered message kind used by
// the registry to unmarshal Payload.
type Message struct {
	Type    string
	Payload []byte
}

// Copy returns a copy of the message.
func (m Message) Copy() Message {
	payload := make([]byte, len(m.Payload))
	copy(payload, m.Payload)

	return Message{
		Type:    m.Type,
		Payload: payload,
	}
}

// TimeoutError is returned by Send and Recv when the operation did not
// complete within the given duration.
type TimeoutError time.Duration

// Error implements error.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("timeout reached after %s", time.Duration(e))
}

// Is reports true for any TimeoutError regardless of its duration, so
// callers can use errors.Is(err, transport.TimeoutError(0)).
func (e TimeoutError) Is(err error) bool {
	_, ok := err.(TimeoutError)
	return ok
}
