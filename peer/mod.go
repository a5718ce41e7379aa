// Package peer defines the interfaces of a node participating in joint
// circuit evaluations.
package peer

import (
	"time"

	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/registry"
	"go.dedis.ch/mpcnet/storage"
	"go.dedis.ch/mpcnet/transport"
)

// Peer defines the full functionality of a node.
type Peer interface {
	Service
	Messaging
	Sessions
}

// Factory is the type of function returning a peer from its configuration.
type Factory func(Configuration) Peer

// RoutingTable maps a destination address to its next-hop relay address.
type RoutingTable map[string]string

// Service defines the lifecycle functions of a node.
type Service interface {
	// Start starts the node's listening daemon.
	Start() error

	// Stop stops the node. Blocking operations in flight are cancelled.
	Stop() error

	// AddPeer makes the given addresses directly reachable.
	AddPeer(addr ...string)

	// GetRoutingTable returns a copy of the routing table.
	GetRoutingTable() RoutingTable

	// SetRoutingEntry sets the routing entry. An empty relayAddr removes it.
	SetRoutingEntry(origin, relayAddr string)
}

// Messaging defines point-to-point message sending.
type Messaging interface {
	// Unicast sends a message to the destination address.
	Unicast(dest string, msg transport.Message) error
}

// Configuration gathers everything a node needs to run.
type Configuration struct {
	Socket          transport.Socket
	MessageRegistry registry.Registry

	// Engine evaluates circuit programs over raw scalars. The default is the
	// plaintext reference engine over 32-bit modular arithmetic.
	Engine circuit.Engine

	// Storage holds this party's own named input values.
	Storage storage.ValueStore

	// ProbeInterval is the period of the liveness probe a collecting
	// session sends to its peers.
	ProbeInterval time.Duration
}
