package eth

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Ethernal-Tech/bridge-relayer/relayer/core"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// decodeLog converts a contract log into a ChainEvent with arguments in abi declaration order
func decodeLog(contractABI *abi.ABI, direction core.Direction, log *types.Log) (*core.ChainEvent, error) {
	if len(log.Topics) == 0 {
		return nil, errors.New("anonymous logs are not supported")
	}

	abiEvent, err := contractABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(abiEvent.Inputs))

	if len(log.Data) > 0 {
		if err := contractABI.UnpackIntoMap(values, abiEvent.Name, log.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack %s data: %w", abiEvent.Name, err)
		}
	}

	var indexed abi.Arguments

	for _, input := range abiEvent.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}

	if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s topics: %w", abiEvent.Name, err)
	}

	args := make([]core.EventArg, 0, len(abiEvent.Inputs))
	for _, input := range abiEvent.Inputs {
		args = append(args, core.EventArg{Name: input.Name, Value: formatValue(values[input.Name])})
	}

	return &core.ChainEvent{
		Direction:   direction,
		EventName:   abiEvent.Name,
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		Args:        args,
		Raw:         log,
	}, nil
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case common.Address:
		return v.Hex()
	case common.Hash:
		return v.Hex()
	case *big.Int:
		return v.String()
	case []byte:
		return hexutil.Encode(v)
	case [32]byte:
		return hexutil.Encode(v[:])
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
