// Package channel implements the transport contract with in-memory channels.
// It is used by tests and local demos to run several peers in one process
// without touching the network.
package channel

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.dedis.ch/mpcnet/transport"
	"golang.org/x/xerrors"
)

const bufferSize = 100

// NewTransport returns an in-memory transport. Sockets created from the same
// transport can reach each other by address.
func NewTransport() transport.Transport {
	return &Transport{
		incomings: make(map[string]chan transport.Packet),
	}
}

// Transport implements an in-memory transport
//
// - implements transport.Transport
type Transport struct {
	sync.RWMutex
	incomings map[string]chan transport.Packet
	port      int
}

// CreateSocket implements transport.Transport
func (t *Transport) CreateSocket(address string) (transport.ClosableSocket, error) {
	t.Lock()
	defer t.Unlock()

	if strings.HasSuffix(address, ":0") {
		t.port++
		address = fmt.Sprintf("%s:%d", strings.TrimSuffix(address, ":0"), t.port)
	}

	_, found := t.incomings[address]
	if found {
		return nil, xerrors.Errorf("address already in use: %s", address)
	}

	t.incomings[address] = make(chan transport.Packet, bufferSize)

	return &Socket{
		transport: t,
		myAddr:    address,
		ins:       packets{},
		outs:      packets{},
	}, nil
}

func (t *Transport) deliver(dest string, pkt transport.Packet, timeout time.Duration) error {
	t.RLock()
	incoming, found := t.incomings[dest]
	t.RUnlock()

	if !found {
		return xerrors.Errorf("unknown destination address: %s", dest)
	}

	if timeout == 0 {
		incoming <- pkt.Copy()
		return nil
	}

	select {
	case incoming <- pkt.Copy():
		return nil
	case <-time.After(timeout):
		return transport.TimeoutError(timeout)
	}
}

// Socket implements an in-memory socket
//
// - implements transport.Socket
// - implements transport.ClosableSocket
type Socket struct {
	transport *Transport
	myAddr    string
	ins       packets
	outs      packets
}

// Close implements transport.Socket
func (s *Socket) Close() error {
	s.transport.Lock()
	defer s.transport.Unlock()

	_, found := s.transport.incomings[s.myAddr]
	if !found {
		return xerrors.Errorf("socket already closed")
	}
	delete(s.transport.incomings, s.myAddr)
	return nil
}

// Send implements transport.Socket. A full destination buffer blocks until
// the timeout is reached, in which case it returns a TimeoutError.
func (s *Socket) Send(dest string, pkt transport.Packet, timeout time.Duration) error {
	err := s.transport.deliver(dest, pkt, timeout)
	if err != nil {
		return err
	}
	s.outs.add(pkt)
	return nil
}

// Recv implements transport.Socket. It blocks until a packet is received, or
// the timeout is reached. In the case the timeout is reached, return a
// TimeoutError.
func (s *Socket) Recv(timeout time.Duration) (transport.Packet, error) {
	s.transport.RLock()
	incoming := s.transport.incomings[s.myAddr]
	s.transport.RUnlock()

	if incoming == nil {
		return transport.Packet{}, xerrors.Errorf("socket is closed")
	}

	if timeout == 0 {
		pkt := <-incoming
		s.ins.add(pkt)
		return pkt, nil
	}

	select {
	case pkt := <-incoming:
		s.ins.add(pkt)
		return pkt, nil
	case <-time.After(timeout):
		return transport.Packet{}, transport.TimeoutError(timeout)
	}
}

// GetAddress implements transport.Socket
func (s *Socket) GetAddress() string {
	return s.myAddr
}

// GetIns implements transport.Socket
func (s *Socket) GetIns() []transport.Packet {
	return s.ins.getAll()
}

// GetOuts implements transport.Socket
func (s *Socket) GetOuts() []transport.Packet {
	return s.outs.getAll()
}

type packets struct {
	sync.Mutex
	data []transport.Packet
}

func (p *packets) add(pkt transport.Packet) {
	p.Lock()
	defer p.Unlock()

	p.data = append(p.data, pkt.Copy())
}

func (p *packets) getAll() []transport.Packet {
	p.Lock()
	defer p.Unlock()

	res := make([]transport.Packet, len(p.data))
	for i, pkt := range p.data {
		res[i] = pkt.Copy()
	}
	return res
}
