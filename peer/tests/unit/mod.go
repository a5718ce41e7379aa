package unit

import (
	"go.dedis.ch/mpcnet/peer"
	"go.dedis.ch/mpcnet/peer/impl"
	"go.dedis.ch/mpcnet/registry/standard"
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/transport/channel"
)

var peerFac peer.Factory = impl.NewPeer

var channelFac func() transport.Transport = channel.NewTransport

var defaultRegistry = standard.NewRegistry()
