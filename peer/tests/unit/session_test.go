package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/mpcnet/circuit"
	z "go.dedis.ch/mpcnet/internal/testing"
	"go.dedis.ch/mpcnet/peer/impl/session"
	"go.dedis.ch/mpcnet/transport"
	"go.dedis.ch/mpcnet/types"
)

// helloCircuit selects the larger of the inputs a and b.
const helloCircuit = `5 7
hello circuit

2 1 0 1 2 Gt
2 1 2 0 3 Mul
1 1 2 4 Not
2 1 4 1 5 Mul
2 1 3 5 6 Add
`

// helloProgram returns the two-party "hello" program: alice owns a, bob
// owns b, both are entitled to the result.
func helloProgram(t *testing.T) *circuit.Program {
	t.Helper()

	meta := circuit.Meta{
		Inputs: []circuit.Binding{
			{Name: "a", Address: 0},
			{Name: "b", Address: 1},
		},
		Outputs: []circuit.Binding{
			{Name: "result", Address: 6},
		},
		Parties: []circuit.Party{
			{Name: "alice", Inputs: []string{"a"}, Outputs: []string{"result"}},
			{Name: "bob", Inputs: []string{"b"}, Outputs: []string{"result"}},
		},
	}

	prog, err := circuit.Parse(strings.NewReader(helloCircuit), meta)
	require.NoError(t, err)
	return prog
}

// splitProgram returns a two-party program with disjoint entitlements:
// alice receives big = a + b, bob receives diff = a - b.
func splitProgram(t *testing.T) *circuit.Program {
	t.Helper()

	circ := `2 4
split circuit

2 1 0 1 2 Add
2 1 0 1 3 Sub
`
	meta := circuit.Meta{
		Inputs: []circuit.Binding{
			{Name: "a", Address: 0},
			{Name: "b", Address: 1},
		},
		Outputs: []circuit.Binding{
			{Name: "big", Address: 2},
			{Name: "diff", Address: 3},
		},
		Parties: []circuit.Party{
			{Name: "alice", Inputs: []string{"a"}, Outputs: []string{"big"}},
			{Name: "bob", Inputs: []string{"b"}, Outputs: []string{"diff"}},
		},
	}

	prog, err := circuit.Parse(strings.NewReader(circ), meta)
	require.NoError(t, err)
	return prog
}

// triProgram returns a three-party program summing one input per party.
// Every party is entitled to the sum.
func triProgram(t *testing.T) *circuit.Program {
	t.Helper()

	circ := `2 5
tri circuit

2 1 0 1 3 Add
2 1 3 2 4 Add
`
	meta := circuit.Meta{
		Inputs: []circuit.Binding{
			{Name: "a", Address: 0},
			{Name: "b", Address: 1},
			{Name: "c", Address: 2},
		},
		Outputs: []circuit.Binding{
			{Name: "sum", Address: 4},
		},
		Parties: []circuit.Party{
			{Name: "alice", Inputs: []string{"a"}, Outputs: []string{"sum"}},
			{Name: "bob", Inputs: []string{"b"}, Outputs: []string{"sum"}},
			{Name: "carol", Inputs: []string{"c"}, Outputs: []string{"sum"}},
		},
	}

	prog, err := circuit.Parse(strings.NewReader(circ), meta)
	require.NoError(t, err)
	return prog
}

// Two parties run the hello program end to end. Both resolve the same
// output.
//
// alice (a=3) <--> bob (b=5), result = max(a, b) = 5
func Test_Session_TwoParty_Hello(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()
	bob := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer bob.Stop()

	alice.AddPeer(bob.GetAddr())
	bob.AddPeer(alice.GetAddr())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(3)))
	require.NoError(t, bob.SetOwnValue("b", types.IntScalar(5)))

	prog := helloProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   bob.GetAddr(),
	}

	sa, err := alice.NewSession("hello", prog, 0, directory)
	require.NoError(t, err)
	sb, err := bob.NewSession("hello", prog, 1, directory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	outA, err := sa.Output(ctx)
	require.NoError(t, err)
	outB, err := sb.Output(ctx)
	require.NoError(t, err)

	expected := map[string]types.Scalar{"result": types.IntScalar(5)}
	require.Equal(t, expected, outA)
	require.Equal(t, expected, outB)

	// asking again returns the settled result
	got, ok := alice.GetSession("hello")
	require.True(t, ok)
	outA2, err := got.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, expected, outA2)
}

// Each party receives only the outputs it is entitled to.
//
// alice gets big = a + b, bob gets diff = a - b.
func Test_Session_Output_Partition(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()
	bob := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer bob.Stop()

	alice.AddPeer(bob.GetAddr())
	bob.AddPeer(alice.GetAddr())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(10)))
	require.NoError(t, bob.SetOwnValue("b", types.IntScalar(4)))

	prog := splitProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   bob.GetAddr(),
	}

	sa, err := alice.NewSession("split", prog, 0, directory)
	require.NoError(t, err)
	sb, err := bob.NewSession("split", prog, 1, directory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	outA, err := sa.Output(ctx)
	require.NoError(t, err)
	outB, err := sb.Output(ctx)
	require.NoError(t, err)

	require.Equal(t, map[string]types.Scalar{"big": types.IntScalar(14)}, outA)
	require.Equal(t, map[string]types.Scalar{"diff": types.IntScalar(6)}, outB)
}

// A session does not settle before every other party has contributed.
func Test_Session_Completeness(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()
	bob := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer bob.Stop()
	carol := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer carol.Stop()

	for _, n := range []*z.TestNode{&alice, &bob, &carol} {
		n.AddPeer(alice.GetAddr())
		n.AddPeer(bob.GetAddr())
		n.AddPeer(carol.GetAddr())
	}

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))
	require.NoError(t, bob.SetOwnValue("b", types.IntScalar(2)))
	require.NoError(t, carol.SetOwnValue("c", types.IntScalar(4)))

	prog := triProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   bob.GetAddr(),
		"carol": carol.GetAddr(),
	}

	sa, err := alice.NewSession("tri", prog, 0, directory)
	require.NoError(t, err)
	_, err = bob.NewSession("tri", prog, 1, directory)
	require.NoError(t, err)

	// carol has not joined: alice must still be waiting
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*300)
	_, err = sa.Output(ctx)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	sc, err := carol.NewSession("tri", prog, 2, directory)
	require.NoError(t, err)

	ctx, cancel = context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	expected := map[string]types.Scalar{"sum": types.IntScalar(7)}

	outA, err := sa.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, expected, outA)

	outC, err := sc.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, expected, outC)
}

// Contributions that arrive before the local session is constructed are
// buffered and applied once it is.
func Test_Session_EarlyContribution(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()
	bob := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer bob.Stop()

	alice.AddPeer(bob.GetAddr())
	bob.AddPeer(alice.GetAddr())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(3)))
	require.NoError(t, bob.SetOwnValue("b", types.IntScalar(5)))

	prog := helloProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   bob.GetAddr(),
	}

	// bob starts first: his contribution reaches alice before she joins
	sb, err := bob.NewSession("early", prog, 1, directory)
	require.NoError(t, err)

	time.Sleep(time.Millisecond * 200)

	sa, err := alice.NewSession("early", prog, 0, directory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	expected := map[string]types.Scalar{"result": types.IntScalar(5)}

	outA, err := sa.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, expected, outA)

	outB, err := sb.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, expected, outB)
}

// A single-party program settles without any network exchange.
func Test_Session_SingleParty(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	prog := triProgram(t)
	prog.Parties = []circuit.Party{
		{Name: "alice", Inputs: []string{"a", "b", "c"}, Outputs: []string{"sum"}},
	}

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))
	require.NoError(t, alice.SetOwnValue("b", types.IntScalar(2)))
	require.NoError(t, alice.SetOwnValue("c", types.IntScalar(4)))

	sa, err := alice.NewSession("solo", prog, 0,
		map[string]string{"alice": alice.GetAddr()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	out, err := sa.Output(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]types.Scalar{"sum": types.IntScalar(7)}, out)
}

// A second contribution from the same party fails the session.
func Test_Session_Duplicate_Contribution(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	mallory, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer mallory.Close()

	alice.AddPeer(mallory.GetAddress())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))

	// three parties keep the session collecting after bob's first message
	prog := triProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   mallory.GetAddress(),
		"carol": mallory.GetAddress(),
	}

	sa, err := alice.NewSession("dup", prog, 0, directory)
	require.NoError(t, err)

	contribution := types.SessionInputMessage{
		SessionID: "dup",
		Origin:    "bob",
		Values:    map[string]types.Scalar{"b": types.IntScalar(2)},
	}

	sendToNode(t, mallory, alice.GetAddr(), &contribution)
	sendToNode(t, mallory, alice.GetAddr(), &contribution)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = sa.Output(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, session.ErrDuplicatePeer)

	// the offender is told the session failed
	notice := recvOfType(t, mallory, "sessionerror", time.Second*2)
	errMsg := types.SessionErrorMessage{}
	require.NoError(t, defaultRegistry.UnmarshalMessage(notice.Msg, &errMsg))
	require.Equal(t, "dup", errMsg.SessionID)
}

// A contribution from an identity outside the party list fails the session.
func Test_Session_Unknown_Peer(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	mallory, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer mallory.Close()

	alice.AddPeer(mallory.GetAddress())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))

	prog := triProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   mallory.GetAddress(),
		"carol": mallory.GetAddress(),
	}

	sa, err := alice.NewSession("eve", prog, 0, directory)
	require.NoError(t, err)

	sendToNode(t, mallory, alice.GetAddr(), &types.SessionInputMessage{
		SessionID: "eve",
		Origin:    "eve",
		Values:    map[string]types.Scalar{"b": types.IntScalar(2)},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = sa.Output(ctx)
	require.ErrorIs(t, err, session.ErrUnknownPeer)
}

// A contribution missing one of the sender's owned inputs, or carrying a
// name the sender does not own, fails the session.
func Test_Session_Bad_Contribution(t *testing.T) {
	run := func(t *testing.T, values map[string]types.Scalar, want error) {
		transp := channelFac()

		alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
		defer alice.Stop()

		mallory, err := transp.CreateSocket("127.0.0.1:0")
		require.NoError(t, err)
		defer mallory.Close()

		alice.AddPeer(mallory.GetAddress())

		require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))

		prog := triProgram(t)
		directory := map[string]string{
			"alice": alice.GetAddr(),
			"bob":   mallory.GetAddress(),
			"carol": mallory.GetAddress(),
		}

		sa, err := alice.NewSession("bad", prog, 0, directory)
		require.NoError(t, err)

		sendToNode(t, mallory, alice.GetAddr(), &types.SessionInputMessage{
			SessionID: "bad",
			Origin:    "bob",
			Values:    values,
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		_, err = sa.Output(ctx)
		require.ErrorIs(t, err, want)
	}

	t.Run("missing input", func(t *testing.T) {
		run(t, map[string]types.Scalar{}, session.ErrMissingInput)
	})

	t.Run("foreign input", func(t *testing.T) {
		run(t, map[string]types.Scalar{
			"b": types.IntScalar(2),
			"c": types.IntScalar(4),
		}, session.ErrForeignInput)
	})
}

// A remote error notice settles the local session as failed.
func Test_Session_Remote_Error(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	mallory, err := transp.CreateSocket("127.0.0.1:0")
	require.NoError(t, err)
	defer mallory.Close()

	alice.AddPeer(mallory.GetAddress())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))

	prog := triProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   mallory.GetAddress(),
		"carol": mallory.GetAddress(),
	}

	sa, err := alice.NewSession("remote", prog, 0, directory)
	require.NoError(t, err)

	sendToNode(t, mallory, alice.GetAddr(), &types.SessionErrorMessage{
		SessionID: "remote",
		Error:     "no such value",
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = sa.Output(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no such value")
}

// While collecting, a session probes its peers every probe interval. The
// probes stop once the session settles.
func Test_Session_Liveness_Probe(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0",
		z.WithProbeInterval(time.Millisecond*20))
	defer alice.Stop()
	bob := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0",
		z.WithProbeInterval(time.Millisecond*20))
	defer bob.Stop()

	alice.AddPeer(bob.GetAddr())
	bob.AddPeer(alice.GetAddr())

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(3)))
	require.NoError(t, bob.SetOwnValue("b", types.IntScalar(5)))

	prog := helloProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   bob.GetAddr(),
	}

	sa, err := alice.NewSession("probe", prog, 0, directory)
	require.NoError(t, err)

	time.Sleep(time.Millisecond * 200)

	pings := countOfType(bob.GetIns(), "sessionping")
	require.Greater(t, pings, 1)

	ping := firstOfType(t, bob.GetIns(), "sessionping")
	pingMsg := types.SessionPingMessage{}
	require.NoError(t, defaultRegistry.UnmarshalMessage(ping.Msg, &pingMsg))
	require.Equal(t, "probe", pingMsg.SessionID)
	require.Equal(t, types.PingMarker, pingMsg.Marker)

	sb, err := bob.NewSession("probe", prog, 1, directory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err = sa.Output(ctx)
	require.NoError(t, err)
	_, err = sb.Output(ctx)
	require.NoError(t, err)

	// settled sessions probe no more
	time.Sleep(time.Millisecond * 100)
	settled := countOfType(bob.GetIns(), "sessionping")
	time.Sleep(time.Millisecond * 200)
	require.Equal(t, settled, countOfType(bob.GetIns(), "sessionping"))
}

// Joining the same session id twice is rejected.
func Test_Session_Duplicate_ID(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	prog := triProgram(t)
	prog.Parties = []circuit.Party{
		{Name: "alice", Inputs: []string{"a", "b", "c"}, Outputs: []string{"sum"}},
	}

	require.NoError(t, alice.SetOwnValue("a", types.IntScalar(1)))
	require.NoError(t, alice.SetOwnValue("b", types.IntScalar(2)))
	require.NoError(t, alice.SetOwnValue("c", types.IntScalar(4)))

	directory := map[string]string{"alice": alice.GetAddr()}

	_, err := alice.NewSession("twice", prog, 0, directory)
	require.NoError(t, err)

	_, err = alice.NewSession("twice", prog, 0, directory)
	require.Error(t, err)
}

// A session cannot start without this party's own input values.
func Test_Session_Missing_Own_Value(t *testing.T) {
	transp := channelFac()

	alice := z.NewTestNode(t, peerFac, transp, "127.0.0.1:0")
	defer alice.Stop()

	prog := helloProgram(t)
	directory := map[string]string{
		"alice": alice.GetAddr(),
		"bob":   alice.GetAddr(),
	}

	_, err := alice.NewSession("novalue", prog, 0, directory)
	require.Error(t, err)
	require.ErrorIs(t, err, session.ErrMissingOwnValue)
}

// sendToNode marshals the message with a fresh registry and sends it from
// the socket to the node's address.
func sendToNode(t *testing.T, sock transport.ClosableSocket, dest string,
	msg types.Message) {

	m, err := defaultRegistry.MarshalMessage(msg)
	require.NoError(t, err)

	header := transport.NewHeader(sock.GetAddress(), sock.GetAddress(), dest)
	pkt := transport.Packet{Header: &header, Msg: &m}

	require.NoError(t, sock.Send(dest, pkt, time.Second))
}

// recvOfType reads from the socket until a packet of the given message type
// arrives or the deadline passes.
func recvOfType(t *testing.T, sock transport.ClosableSocket, msgType string,
	timeout time.Duration) transport.Packet {

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pkt, err := sock.Recv(time.Millisecond * 100)
		if errors.Is(err, transport.TimeoutError(0)) {
			continue
		}
		require.NoError(t, err)

		if pkt.Msg.Type == msgType {
			return pkt
		}
	}

	t.Fatalf("no %s packet received within %s", msgType, timeout)
	return transport.Packet{}
}

func countOfType(pkts []transport.Packet, msgType string) int {
	n := 0
	for _, pkt := range pkts {
		if pkt.Msg.Type == msgType {
			n++
		}
	}
	return n
}

func firstOfType(t *testing.T, pkts []transport.Packet,
	msgType string) transport.Packet {

	for _, pkt := range pkts {
		if pkt.Msg.Type == msgType {
			return pkt
		}
	}

	t.Fatalf("no %s packet found", msgType)
	return transport.Packet{}
}
