package ethcontracts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ethernal-Tech/bridge-relayer/common"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

type HexArtifact struct {
	Abi              *abi.ABI `json:"abi"`
	Bytecode         string   `json:"bytecode"`
	DeployedBytecode string   `json:"deployedBytecode"`
}

type Artifact struct {
	Abi              *abi.ABI
	Bytecode         []byte
	DeployedBytecode []byte
}

// DecodeArtifact unmarshals provided raw json content into an Artifact instance.
// A bare abi array (as produced by solc --abi) is accepted too.
func DecodeArtifact(data []byte) (*Artifact, error) {
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "[") {
		contractABI, err := abi.JSON(strings.NewReader(trimmed))
		if err != nil {
			return nil, fmt.Errorf("abi found but with incorrect format: %w", err)
		}

		return &Artifact{Abi: &contractABI}, nil
	}

	var hexRes HexArtifact

	if err := json.Unmarshal(data, &hexRes); err != nil {
		return nil, fmt.Errorf("artifact found but with incorrect format: %w", err)
	}

	if hexRes.Abi == nil {
		return nil, fmt.Errorf("artifact does not contain abi")
	}

	bytecode, err := common.DecodeHex(hexRes.Bytecode)
	if err != nil {
		return nil, err
	}

	deployedBytecode, err := common.DecodeHex(hexRes.DeployedBytecode)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Abi:              hexRes.Abi,
		Bytecode:         bytecode,
		DeployedBytecode: deployedBytecode,
	}, nil
}

// LoadArtifactFromFile reads SC artifact file content and decodes it into an Artifact instance
func LoadArtifactFromFile(fileName string) (*Artifact, error) {
	jsonRaw, err := os.ReadFile(filepath.Clean(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact from file '%s': %w", fileName, err)
	}

	return DecodeArtifact(jsonRaw)
}
