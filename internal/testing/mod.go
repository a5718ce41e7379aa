// Package testing provides utilities to build and drive peers in tests and
// in the CLI.
package testing

import (
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcnet/circuit"
	"go.dedis.ch/mpcnet/peer"
	"go.dedis.ch/mpcnet/registry"
	"go.dedis.ch/mpcnet/registry/standard"
	"go.dedis.ch/mpcnet/storage"
	"go.dedis.ch/mpcnet/transport"
)

type configTemplate struct {
	messageRegistry registry.Registry
	engine          circuit.Engine
	storage         storage.ValueStore
	probeInterval   time.Duration
}

func newConfigTemplate() configTemplate {
	return configTemplate{
		messageRegistry: standard.NewRegistry(),
		engine:          circuit.NewEngine[uint32](circuit.Mod32{}),
		storage:         storage.NewBasicStore(),
		probeInterval:   time.Millisecond * 250,
	}
}

// Option is a function transforming the configuration template.
type Option func(*configTemplate)

// WithMessageRegistry sets a specific message registry.
func WithMessageRegistry(r registry.Registry) Option {
	return func(c *configTemplate) {
		c.messageRegistry = r
	}
}

// WithEngine sets a specific evaluation engine.
func WithEngine(e circuit.Engine) Option {
	return func(c *configTemplate) {
		c.engine = e
	}
}

// WithStorage sets a specific value store.
func WithStorage(s storage.ValueStore) Option {
	return func(c *configTemplate) {
		c.storage = s
	}
}

// WithProbeInterval sets the liveness probe period.
func WithProbeInterval(d time.Duration) Option {
	return func(c *configTemplate) {
		c.probeInterval = d
	}
}

// NewConfiguration returns a configuration for the socket with the options
// applied on the defaults.
func NewConfiguration(socket transport.Socket, opts ...Option) peer.Configuration {
	template := newConfigTemplate()
	for _, opt := range opts {
		opt(&template)
	}

	return peer.Configuration{
		Socket:          socket,
		MessageRegistry: template.messageRegistry,
		Engine:          template.engine,
		Storage:         template.storage,
		ProbeInterval:   template.probeInterval,
	}
}

// TestNode bundles a running peer with its socket.
type TestNode struct {
	peer.Peer

	t      require.TestingT
	config peer.Configuration
	socket transport.ClosableSocket
}

// NewTestNode creates a peer from the factory, binds it to a fresh socket on
// the transport, and starts it.
func NewTestNode(t require.TestingT, f peer.Factory, trans transport.Transport,
	addr string, opts ...Option) TestNode {

	socket, err := trans.CreateSocket(addr)
	require.NoError(t, err)

	config := NewConfiguration(socket, opts...)
	node := f(config)

	err = node.Start()
	require.NoError(t, err)

	return TestNode{
		Peer:   node,
		t:      t,
		config: config,
		socket: socket,
	}
}

// GetAddr returns the address assigned to the node's socket.
func (n *TestNode) GetAddr() string {
	return n.socket.GetAddress()
}

// GetIns returns all packets the node received.
func (n *TestNode) GetIns() []transport.Packet {
	return n.socket.GetIns()
}

// GetOuts returns all packets the node sent.
func (n *TestNode) GetOuts() []transport.Packet {
	return n.socket.GetOuts()
}

// Stop stops the node and closes its socket.
func (n *TestNode) Stop() {
	err := n.Peer.Stop()
	require.NoError(n.t, err)

	err = n.socket.Close()
	require.NoError(n.t, err)
}
