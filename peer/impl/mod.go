// Package impl assembles the node: messaging, session protocol, and the
// listening daemon.
package impl

import (
	"context"
	"time"

	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/peer"
	"go.dedis.ch/mpcnet/peer/impl/message"
	"go.dedis.ch/mpcnet/peer/impl/session"
	"go.dedis.ch/mpcnet/storage"
)

// ReadTimeout bounds one blocking receive on the socket, so the daemon can
// observe its stop signal.
const ReadTimeout = time.Millisecond * 100

// WriteTimeout bounds one blocking send when relaying a packet.
const WriteTimeout = time.Millisecond * 100

// NewPeer creates a new peer.
//
// - implements peer.Factory
func NewPeer(conf peer.Configuration) peer.Peer {
	n := node{}
	n.conf = conf

	if n.conf.Engine == nil {
		n.conf.Engine = circuit.NewEngine[uint32](circuit.Mod32{})
	}
	if n.conf.Storage == nil {
		n.conf.Storage = storage.NewBasicStore()
	}
	if n.conf.ProbeInterval == 0 {
		n.conf.ProbeInterval = session.DefaultProbeInterval
	}

	n.MessageModule = message.NewMessageModule(&n.conf)
	n.SessionModule = session.NewSessionModule(&n.conf, n.MessageModule)

	return &n
}

// node implements a peer joining joint circuit evaluations
//
// - implements peer.Peer
type node struct {
	conf peer.Configuration

	stopSig context.CancelFunc

	*message.MessageModule
	*session.SessionModule
}

// Start implements peer.Service
func (n *node) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	n.stopSig = cancel

	return n.MessagingDaemon(ctx)
}

// Stop implements peer.Service
func (n *node) Stop() error {
	if n.stopSig != nil {
		n.stopSig()
	}
	return nil
}
