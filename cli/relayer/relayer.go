package clirelayer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ethernal-Tech/bridge-relayer/api"
	"github.com/Ethernal-Tech/bridge-relayer/api/controllers"
	apiCore "github.com/Ethernal-Tech/bridge-relayer/api/core"
	apiUtils "github.com/Ethernal-Tech/bridge-relayer/api/utils"
	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/relayer_manager"
	"github.com/Ethernal-Tech/bridge-relayer/telemetry"
	loggerInfra "github.com/Ethernal-Tech/cardano-infrastructure/logger"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var initParamsData = &initParams{}

func GetRunRelayerCommand() *cobra.Command {
	runRelayerCmd := &cobra.Command{
		Use:          "run-relayer",
		Short:        "runs relayer component",
		PreRunE:      runPreRun,
		RunE:         runCommand,
		SilenceUsage: true,
	}

	initParamsData.setFlags(runRelayerCmd)

	return runRelayerCmd
}

func runPreRun(_ *cobra.Command, _ []string) error {
	return initParamsData.validateFlags()
}

// runCommand returns an error only when the relayer could not run or every relay pair faulted
func runCommand(cmd *cobra.Command, _ []string) error {
	outputter := common.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	config, err := relayer_manager.LoadConfig(initParamsData.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := loggerInfra.NewLogger(config.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	tel := telemetry.NewTelemetry(config.Telemetry, logger.Named("telemetry"))
	if err := tel.Start(); err != nil {
		logger.Error("telemetry start failed", "err", err)

		return err
	}

	defer func() {
		if err := tel.Close(context.Background()); err != nil {
			logger.Error("telemetry close failed", "err", err)
		}
	}()

	relayerManager, err := relayer_manager.NewRelayerManager(config, logger)
	if err != nil {
		logger.Error("relayer manager creation failed", "err", err)

		return err
	}

	if err := relayerManager.Start(); err != nil {
		logger.Error("relayer manager start failed", "err", err)

		return stopAndReturn(relayerManager, logger, err)
	}

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	if initParamsData.runAPI && config.APIConfig.IsEnabled() {
		apiObj, err := startAPI(ctx, config.APIConfig, config.Logger, relayerManager)
		if err != nil {
			logger.Error("api creation failed", "err", err)

			return stopAndReturn(relayerManager, logger, err)
		}

		defer func() {
			if err := apiObj.Dispose(); err != nil {
				logger.Error("api dispose failed", "err", err)
			}
		}()
	}

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	defer signal.Stop(signalChannel)

	var runErr error

	select {
	case sig := <-signalChannel:
		logger.Info("Shutdown requested", "signal", sig)
	case runErr = <-relayerManager.ErrorCh():
		logger.Error("Relayer failed", "err", runErr)
	}

	cancelCtx()

	if err := relayerManager.Stop(); err != nil {
		logger.Error("relayer manager stop failed", "err", err)
	}

	if runErr != nil {
		return runErr
	}

	outputter.SetCommandResult(&CmdResult{
		Pairs:   relayerManager.GetPairs(),
		DumpDir: config.DumpDir,
	})

	return nil
}

func startAPI(
	ctx context.Context, apiConfig apiCore.APIConfig, loggerConfig loggerInfra.LoggerConfig,
	relayerManager *relayer_manager.RelayerManagerImpl,
) (*api.APIImpl, error) {
	apiLogger, err := apiUtils.NewAPILogger(loggerConfig)
	if err != nil {
		return nil, err
	}

	apiObj, err := api.NewAPI(ctx, apiConfig, []apiCore.APIController{
		controllers.NewRelayerStateController(relayerManager, apiLogger.Named("relayer_state_controller")),
	}, apiLogger)
	if err != nil {
		return nil, err
	}

	go apiObj.Start()

	return apiObj, nil
}

func stopAndReturn(relayerManager *relayer_manager.RelayerManagerImpl, logger hclog.Logger, err error) error {
	if stopErr := relayerManager.Stop(); stopErr != nil {
		logger.Error("relayer manager stop failed", "err", stopErr)
	}

	return err
}
