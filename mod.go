package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cli "go.dedis.ch/mpcnet/cmd"
)

func main() {
	command := &cobra.Command{
		Use: "mpcnet",
	}
	addStartCmd(command)

	err := command.Execute()
	if err != nil {
		panic(err)
	}
}

// addStartCmd starts a node from a session configuration file
func addStartCmd(command *cobra.Command) {
	var configPath string
	var daemon bool

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a node",
		Long:  "Start a node, join the declared parties and run sessions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
			cli.StartCMD(configPath, daemon)
		},
	}
	startCmd.Flags().StringVarP(&configPath, "config", "c", "session.yaml",
		"path to the session configuration file")
	startCmd.Flags().BoolVarP(&daemon, "daemon", "d", false,
		"run without the interactive prompt")

	command.AddCommand(startCmd)
}
