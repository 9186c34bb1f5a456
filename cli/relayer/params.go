package clirelayer

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	configFlag = "config"
	runAPIFlag = "run-api"

	configFlagDesc = "path to config json or yaml file (default relayer_config.json next to the executable)"
	runAPIFlagDesc = "specifies whether the api should be run"
)

type initParams struct {
	config string
	runAPI bool
}

func (ip *initParams) validateFlags() error {
	if ip.config == "" {
		return nil
	}

	if _, err := os.Stat(ip.config); err != nil {
		return fmt.Errorf("invalid --%s: %w", configFlag, err)
	}

	return nil
}

func (ip *initParams) setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&ip.config,
		configFlag,
		"",
		configFlagDesc,
	)

	cmd.Flags().BoolVar(
		&ip.runAPI,
		runAPIFlag,
		false,
		runAPIFlagDesc,
	)
}
