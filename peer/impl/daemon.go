package impl

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.dedis.ch/mpcnet/transport"
)

// MessagingDaemon starts a new loop to listen to the message
func (n *node) MessagingDaemon(ctx context.Context) error {
	go func() {
	out:
		for {
			select {
			case <-ctx.Done():
				// use context to determine when to stop the goroutine
				break out
			default:
				pkt, err := n.conf.Socket.Recv(ReadTimeout)
				if err != nil {
					continue
				}
				err = n.processPkt(pkt)
				if err != nil {
					log.Info().Msgf("%s: packet %s dropped: %v",
						n.conf.Socket.GetAddress(), pkt.Header.PacketID, err)
					continue
				}
			}
		}
	}()

	return nil
}

// processPkt processes a packet addressed to this node and relays every
// other packet to its next hop.
func (n *node) processPkt(pkt transport.Packet) error {
	myAddr := n.conf.Socket.GetAddress()

	if pkt.Header.Destination == myAddr {
		return n.conf.MessageRegistry.ProcessPacket(pkt)
	}

	relay, err := n.GetRoutingInfo(pkt.Header.Destination)
	if err != nil {
		return err
	}

	newHeader := pkt.Header.Copy()
	newHeader.RelayedBy = myAddr
	newPkt := transport.Packet{Header: &newHeader, Msg: pkt.Msg}

	return n.conf.Socket.Send(relay, newPkt, WriteTimeout)
}
