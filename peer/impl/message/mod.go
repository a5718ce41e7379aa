// Package message implements point-to-point messaging on top of the
// transport socket: a routing table of known peers and unicast sending.
package message

import (
	"time"

	"go.dedis.ch/mpcnet/peer"
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/types"
	"golang.org/x/xerrors"
)

// WriteTimeout bounds a blocking send on the socket.
const WriteTimeout = time.Millisecond * 100

// MessageModule provides messaging functions to the other modules.
type MessageModule struct {
	conf *peer.Configuration

	routingTable *SafeRoutingTable
}

// NewMessageModule returns a module bound to the node's configuration.
func NewMessageModule(conf *peer.Configuration) *MessageModule {
	m := MessageModule{
		conf:         conf,
		routingTable: NewSafeRoutingTable(conf.Socket.GetAddress()),
	}
	return &m
}

/** Feature Functions **/

// Unicast implements peer.Messaging
func (m *MessageModule) Unicast(dest string, msg transport.Message) error {
	header := transport.NewHeader(
		m.conf.Socket.GetAddress(),
		m.conf.Socket.GetAddress(),
		dest)
	pkt := transport.Packet{Header: &header, Msg: &msg}

	nextPeer, err := m.GetRoutingInfo(dest)
	if err != nil {
		return err
	}
	return m.conf.Socket.Send(nextPeer, pkt, WriteTimeout)
}

// AddPeer implements peer.Service
func (m *MessageModule) AddPeer(addr ...string) {
	for _, peerAddr := range addr {
		// adding self has no effect
		if peerAddr == m.conf.Socket.GetAddress() {
			continue
		}
		m.SetRoutingEntry(peerAddr, peerAddr)
	}
}

// GetRoutingTable implements peer.Service
func (m *MessageModule) GetRoutingTable() peer.RoutingTable {
	return m.routingTable.getAll()
}

// SetRoutingEntry implements peer.Service
func (m *MessageModule) SetRoutingEntry(origin, relayAddr string) {
	if relayAddr == "" {
		m.routingTable.remove(origin)
		return
	}
	m.routingTable.add(origin, relayAddr)
}

// GetRoutingInfo returns the next hop for the destination.
func (m *MessageModule) GetRoutingInfo(dst string) (string, error) {
	relay, ok := m.routingTable.get(dst)
	if !ok {
		return "", xerrors.Errorf("no routing entry for %s", dst)
	}
	return relay, nil
}

// CreateMsg packs a typed message into a transport message.
func (m *MessageModule) CreateMsg(payload types.Message) (transport.Message, error) {
	return m.conf.MessageRegistry.MarshalMessage(payload)
}
