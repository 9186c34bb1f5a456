package cli

import (
	"fmt"
	"os"

	cliinspectdump "github.com/Ethernal-Tech/bridge-relayer/cli/inspectdump"
	clirelayer "github.com/Ethernal-Tech/bridge-relayer/cli/relayer"
	cliversion "github.com/Ethernal-Tech/bridge-relayer/cli/version"
	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/spf13/cobra"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Short:         "cli commands for bridge relayer",
			SilenceErrors: true,
		},
	}

	rootCommand.baseCmd.PersistentFlags().Bool(common.JSONOutputFlag, false, "get all outputs in json format")

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		clirelayer.GetRunRelayerCommand(),
		cliinspectdump.GetInspectDumpCommand(),
		cliversion.GetVersionCommand(),
	)
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
