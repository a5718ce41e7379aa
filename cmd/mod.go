// Package cmd drives a node from a session configuration file, with an
// interactive prompt to run sessions and inspect the node.
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	z "go.dedis.ch/mpcnet/internal/testing"
	"go.dedis.ch/mpcnet/peer/impl"
	"go.dedis.ch/mpcnet/storage"
	"go.dedis.ch/mpcnet/transport/udp"
	"go.dedis.ch/mpcnet/types"
)

var t = cliReporter{}

// cliReporter adapts the testing harness to CLI use: assertion failures
// abort the process.
type cliReporter struct{}

func (cliReporter) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (cliReporter) FailNow() {
	os.Exit(1)
}

// StartCMD starts a node from the session file and, unless daemon is set,
// enters the interactive prompt.
func StartCMD(configPath string, daemon bool) {
	config, err := LoadSessionConfig(configPath)
	if err != nil {
		fmt.Println(err)
		return
	}

	transp := udp.NewUDP()
	peerFac := impl.NewPeer
	store := storage.NewBasicStore()

	node := z.NewTestNode(t, peerFac, transp, config.Address, z.WithStorage(store))

	for name, value := range config.Values {
		err := node.SetOwnValue(name, types.IntScalar(value))
		if err != nil {
			fmt.Println(err)
			return
		}
	}

	for _, party := range config.Parties {
		if party.Address != config.Address {
			node.AddPeer(party.Address)
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		node.Stop()
		os.Exit(1)
	}()

	printBanner(&node, config)

	if daemon {
		runSession(&node, config, store)
		select {}
	}

	performActions(&node, config, store)
}

func printBanner(node *z.TestNode, config *SessionConfig) {
	fmt.Println("##########################################")
	fmt.Println("######      Starting a node         ######")
	fmt.Println("##########################################")
	fmt.Println("Node running on address: ", node.GetAddr())
	fmt.Println("Session: ", config.SessionID)
	fmt.Println("Circuit: ", config.Circuit)
	fmt.Println()
}
