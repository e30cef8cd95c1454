// Package contracts loads compiled contract artifacts and encodes the calls
// lpdeploy makes against them.
package contracts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
)

// Artifact is a compiled Solidity contract as written by Hardhat or Foundry.
type Artifact struct {
	ABI              json.RawMessage `json:"abi"`
	Bytecode         Bytecode        `json:"bytecode"`
	DeployedBytecode Bytecode        `json:"deployedBytecode,omitempty"`
	ContractName     string          `json:"contractName,omitempty"`
}

// Bytecode accepts both artifact layouts:
//   - Hardhat: "0x608060..."
//   - Foundry: {"object": "0x608060..."}
type Bytecode struct {
	hex string
}

// UnmarshalJSON handles both string and object bytecode formats.
func (b *Bytecode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.hex = s
		return nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		b.hex = obj.Object
		return nil
	}

	return fmt.Errorf("bytecode must be a string or object with 'object' field")
}

// MarshalJSON marshals the bytecode as a string.
func (b Bytecode) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.hex)
}

// String returns the bytecode hex string.
func (b Bytecode) String() string {
	return b.hex
}

// Bytes decodes the bytecode. Unlinked library placeholders are rejected.
func (b Bytecode) Bytes() ([]byte, error) {
	h := b.hex
	if h == "" || h == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(h, "0x") {
		h = "0x" + h
	}
	if strings.Contains(h, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library references")
	}
	return hexutil.Decode(h)
}

// LoadArtifact reads and parses an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lperrors.Configuration("load artifact", err)
	}
	return ParseArtifact(data)
}

// ParseArtifact parses artifact JSON.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, lperrors.Configuration("parse artifact", err)
	}
	if len(bytes.TrimSpace(a.ABI)) == 0 {
		return nil, lperrors.New(lperrors.ErrConfiguration, "parse artifact", "artifact has no abi")
	}
	return &a, nil
}

// ParsedABI parses the artifact's ABI.
func (a *Artifact) ParsedABI() (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return abi.ABI{}, lperrors.Configuration("parse abi", err)
	}
	return parsed, nil
}
