package relayer_manager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/Ethernal-Tech/bridge-relayer/eth"
	ethcontracts "github.com/Ethernal-Tech/bridge-relayer/eth/contracts"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	crashdump "github.com/Ethernal-Tech/bridge-relayer/relayer/crash_dump"
	databaseaccess "github.com/Ethernal-Tech/bridge-relayer/relayer/database_access"
	"github.com/Ethernal-Tech/bridge-relayer/relayer/relayer"
	"github.com/Ethernal-Tech/bridge-relayer/telemetry"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

const (
	dialTimeout = 30 * time.Second
	stopTimeout = 30 * time.Second
)

type relayerInstance struct {
	pair    string
	relayer core.Relayer
	db      core.Database
	healthy bool
}

type RelayerManagerImpl struct {
	config     *core.RelayerManagerConfiguration
	instances  []*relayerInstance
	connectors map[core.Direction]core.ChainConnector
	logger     hclog.Logger

	lock      sync.Mutex
	dumpLock  sync.Mutex
	cancelCtx context.CancelFunc
	healthy   int

	errorCh    *common.SafeCh[error]
	closeCh    chan struct{}
	handlersWg sync.WaitGroup
	stopOnce   sync.Once
}

var _ core.RelayerManager = (*RelayerManagerImpl)(nil)

// NewRelayerManager creates one relayer per configured pair. Pairs that cannot be created are skipped.
func NewRelayerManager(
	config *core.RelayerManagerConfiguration, logger hclog.Logger,
) (*RelayerManagerImpl, error) {
	connectors := make(map[core.Direction]core.ChainConnector, len(core.Directions))

	for _, direction := range core.Directions {
		chainConfig := config.Chain(direction)

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		connector, err := eth.NewChainConnector(ctx, chainConfig, logger.Named(strings.ToUpper(chainConfig.ChainID)))

		cancel()

		if err != nil {
			closeConnectors(connectors)

			return nil, fmt.Errorf("failed to create %s chain connector: %w", direction, err)
		}

		connectors[direction] = connector
	}

	instances := make([]*relayerInstance, 0, len(config.Pairs))

	for _, pairName := range config.PairNames() {
		instance, err := newRelayerInstance(config, pairName, connectors, logger.Named(pairName))
		if err != nil {
			logger.Error("Failed to create relayer", "pair", pairName, "err", err)

			continue
		}

		instances = append(instances, instance)
	}

	if len(instances) == 0 {
		closeConnectors(connectors)

		return nil, errors.New("none of the configured relayers could be created")
	}

	return newRelayerManager(config, instances, connectors, logger), nil
}

func newRelayerManager(
	config *core.RelayerManagerConfiguration, instances []*relayerInstance,
	connectors map[core.Direction]core.ChainConnector, logger hclog.Logger,
) *RelayerManagerImpl {
	return &RelayerManagerImpl{
		config:     config,
		instances:  instances,
		connectors: connectors,
		logger:     logger,
		errorCh:    common.MakeSafeCh[error](1),
		closeCh:    make(chan struct{}),
	}
}

func newRelayerInstance(
	config *core.RelayerManagerConfiguration, pairName string,
	connectors map[core.Direction]core.ChainConnector, logger hclog.Logger,
) (*relayerInstance, error) {
	relayerConfig := config.RelayerConfiguration(pairName)

	if err := validateContracts(config, relayerConfig.Pair); err != nil {
		return nil, err
	}

	executor, err := relayer.GetBatchExecutor(relayerConfig.Pair, logger)
	if err != nil {
		return nil, err
	}

	db, err := databaseaccess.NewDatabase(filepath.Join(config.DbsPath, pairName+".db"))
	if err != nil {
		return nil, err
	}

	r, err := relayer.NewRelayer(relayerConfig, connectors, executor, db, logger)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &relayerInstance{
		pair:    pairName,
		relayer: r,
		db:      db,
	}, nil
}

// validateContracts checks evm contract addresses and artifacts before anything is subscribed
func validateContracts(config *core.RelayerManagerConfiguration, pair core.RelayPairConfig) error {
	for _, direction := range core.Directions {
		contract := pair.Contract(direction)

		if len(contract.EventsToWatch) == 0 ||
			!strings.EqualFold(config.Chain(direction).ChainType, core.ChainTypeEVM) {
			continue
		}

		if !common.IsValidHexAddress(contract.Address) {
			return fmt.Errorf("invalid %s contract address: %s", direction, contract.Address)
		}

		if _, err := ethcontracts.LoadArtifactFromFile(contract.PathToArtifact); err != nil {
			return fmt.Errorf("invalid %s contract artifact: %w", direction, err)
		}
	}

	return nil
}

func (rm *RelayerManagerImpl) Start() error {
	rm.logger.Debug("Starting relayers", "count", len(rm.instances))

	ctx, cancelCtx := context.WithCancel(context.Background())

	rm.lock.Lock()
	rm.cancelCtx = cancelCtx
	rm.lock.Unlock()

	started := 0

	for _, instance := range rm.instances {
		if err := rm.startInstance(ctx, instance); err != nil {
			rm.logger.Error("Failed to start relayer", "pair", instance.pair, "err", err)

			continue
		}

		rm.lock.Lock()
		instance.healthy = true
		rm.healthy++
		rm.lock.Unlock()

		started++

		rm.handlersWg.Add(1)

		go rm.faultHandler(instance)
	}

	telemetry.UpdateRegistryRelayersRunning(started)

	if started == 0 {
		return errors.New("none of the relayers started")
	}

	rm.logger.Info("Relayers started", "started", started, "configured", len(rm.instances))

	return nil
}

// Stop cancels every relayer, waits for them, dumps their state and releases resources. Safe to call twice.
func (rm *RelayerManagerImpl) Stop() error {
	var errs []error

	rm.stopOnce.Do(func() {
		rm.logger.Debug("Stopping relayers")

		rm.lock.Lock()
		if rm.cancelCtx != nil {
			rm.cancelCtx()
		}
		rm.lock.Unlock()

		close(rm.closeCh)

		var eg errgroup.Group

		for _, instance := range rm.instances {
			instance := instance

			eg.Go(func() error {
				return waitForRelayer(instance)
			})
		}

		if err := eg.Wait(); err != nil {
			errs = append(errs, err)
		}

		rm.handlersWg.Wait()

		if !rm.Dump() {
			errs = append(errs, errors.New("failed to dump relayers state"))
		}

		for _, instance := range rm.instances {
			if err := instance.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close database for %s: %w", instance.pair, err))
			}
		}

		closeConnectors(rm.connectors)

		_ = rm.errorCh.Close()

		telemetry.UpdateRegistryRelayersRunning(0)

		rm.logger.Debug("Stopped relayers")
	})

	return errors.Join(errs...)
}

// Dump writes the state of every relayer into the dump directory
func (rm *RelayerManagerImpl) Dump() bool {
	rm.dumpLock.Lock()
	defer rm.dumpLock.Unlock()

	relayers := make([]core.Relayer, len(rm.instances))
	for i, instance := range rm.instances {
		relayers[i] = instance.relayer
	}

	success := crashdump.DumpToFiles(rm.config.DumpDir, relayers, rm.logger)

	telemetry.UpdateRegistryDumps(success)

	if success {
		rm.logger.Info("Relayers state dumped", "dir", rm.config.DumpDir, "count", len(relayers))
	} else {
		rm.logger.Error("Relayers state dump failed", "dir", rm.config.DumpDir)
	}

	return success
}

// ErrorCh reports a fault once no relayer is healthy anymore
func (rm *RelayerManagerImpl) ErrorCh() <-chan error {
	return rm.errorCh.ReadCh()
}

func (rm *RelayerManagerImpl) GetPairs() []string {
	pairs := make([]string, len(rm.instances))
	for i, instance := range rm.instances {
		pairs[i] = instance.pair
	}

	return pairs
}

func (rm *RelayerManagerImpl) GetRelayer(pair string) (core.Relayer, bool) {
	for _, instance := range rm.instances {
		if instance.pair == pair {
			return instance.relayer, true
		}
	}

	return nil, false
}

func (rm *RelayerManagerImpl) startInstance(ctx context.Context, instance *relayerInstance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during setup: %v", r)

			rm.logger.Error("Relayer setup fault", "pair", instance.pair, "err", err, "stack", string(debug.Stack()))
			rm.Dump()
		}
	}()

	return instance.relayer.Start(ctx)
}

func (rm *RelayerManagerImpl) faultHandler(instance *relayerInstance) {
	defer rm.handlersWg.Done()

	errCh := instance.relayer.ErrorCh()

	for {
		select {
		case <-rm.closeCh:
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}

			rm.handleFault(instance, err)
		}
	}
}

func (rm *RelayerManagerImpl) handleFault(instance *relayerInstance, err error) {
	rm.lock.Lock()

	firstFault := instance.healthy
	if firstFault {
		instance.healthy = false
		rm.healthy--
	}

	healthy := rm.healthy

	rm.lock.Unlock()

	telemetry.UpdateRegistryFaults(instance.pair)

	rm.logger.Error("Relayer fault", "pair", instance.pair, "healthy relayers", healthy, "err", err)

	rm.Dump()

	if firstFault && healthy == 0 {
		rm.errorCh.TryWrite(fmt.Errorf("all relayers faulted, last fault in %s: %w", instance.pair, err))
	}
}

func waitForRelayer(instance *relayerInstance) error {
	doneCh := make(chan struct{})

	go func() {
		instance.relayer.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		return nil
	case <-time.After(stopTimeout):
		return fmt.Errorf("relayer %s did not stop within %v", instance.pair, stopTimeout)
	}
}

func closeConnectors(connectors map[core.Direction]core.ChainConnector) {
	// both directions may share one connector
	closed := map[core.ChainConnector]bool{}

	for _, connector := range connectors {
		if !closed[connector] {
			closed[connector] = true

			connector.Close()
		}
	}
}

// LoadConfig reads the configuration document, applies defaults and validates it
func LoadConfig(path string) (*core.RelayerManagerConfiguration, error) {
	config, err := common.LoadConfig[core.RelayerManagerConfiguration](path, "relayer")
	if err != nil {
		return nil, err
	}

	config.FillDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid relayer configuration: %w", err)
	}

	return config, nil
}
