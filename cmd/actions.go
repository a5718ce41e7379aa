package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"go.dedis.ch/mpcnet/circuit"
	z "go.dedis.ch/mpcnet/internal/testing"
	"go.dedis.ch/mpcnet/storage"
	"go.dedis.ch/mpcnet/types"
)

// -----------------------------------------------------------------------------
// Node CMD Prompt

var actionOpts = []string{
	"🦑 Run session",
	"🐙 Set input value",
	"🐚 Show input values",
	"🦈 Add peer",
	"🐋 Show routing table",
	"🍃 Exit",
}

// -----------------------------------------------------------------------------
// Perform actions

func performActions(node *z.TestNode, config *SessionConfig, store storage.ValueStore) {
	actions := map[string]func(*z.TestNode, *SessionConfig, storage.ValueStore) error{
		actionOpts[0]: runSession,
		actionOpts[1]: setValue,
		actionOpts[2]: showValues,
		actionOpts[3]: addPeer,
		actionOpts[4]: showRouting,
		actionOpts[5]: exitNode,
	}

	prompt := &survey.Select{
		Message: "What do you want to do ?",
		Options: actionOpts,
	}

	var action string
	for {
		err := survey.AskOne(prompt, &action)
		if err != nil {
			fmt.Println(err)
			return
		}

		method := actions[action]
		err = method(node, config, store)
		if err != nil {
			fmt.Println(err)
		}
	}
}

// -----------------------------------------------------------------------------
// CMD Actions

func runSession(node *z.TestNode, config *SessionConfig, _ storage.ValueStore) error {
	prog, err := circuit.ParseFile(config.Circuit, config.Meta())
	if err != nil {
		return err
	}

	session, err := node.NewSession(config.SessionID, prog, config.Self,
		config.Directory())
	if err != nil {
		return err
	}

	fmt.Println("Waiting for peer inputs...")
	outputs, err := session.Output(context.Background())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = %s\n", name, outputs[name])
	}
	return nil
}

func setValue(node *z.TestNode, _ *SessionConfig, _ storage.ValueStore) error {
	name := ""
	prompt := &survey.Input{Message: "Input name:"}
	err := survey.AskOne(prompt, &name)
	if err != nil {
		return err
	}

	text := ""
	prompt = &survey.Input{Message: "Value:"}
	err = survey.AskOne(prompt, &text)
	if err != nil {
		return err
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return err
	}

	return node.SetOwnValue(name, types.IntScalar(value))
}

func showValues(_ *z.TestNode, _ *SessionConfig, store storage.ValueStore) error {
	names := make([]string, 0, store.Len())
	values := map[string]types.Scalar{}
	err := store.For(func(key string, value types.Scalar) error {
		names = append(names, key)
		values[key] = value
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = %s\n", name, values[name])
	}
	return nil
}

func addPeer(node *z.TestNode, _ *SessionConfig, _ storage.ValueStore) error {
	addr := ""
	prompt := &survey.Input{Message: "Peer address:"}
	err := survey.AskOne(prompt, &addr)
	if err != nil {
		return err
	}
	node.AddPeer(addr)
	return nil
}

func showRouting(node *z.TestNode, _ *SessionConfig, _ storage.ValueStore) error {
	for origin, relay := range node.GetRoutingTable() {
		fmt.Printf("%s -> %s\n", origin, relay)
	}
	return nil
}

func exitNode(node *z.TestNode, _ *SessionConfig, _ storage.ValueStore) error {
	node.Stop()
	fmt.Println("Bye 🐾")
	os.Exit(0)
	return nil
}
