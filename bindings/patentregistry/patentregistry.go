// Package patentregistry binds the PatentRegistry contract, the fixed
// on-chain program that records patent attestations. Only the methods the
// pipeline invokes are bound.
package patentregistry

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PatentRegistryABI is the input ABI of the registration method.
const PatentRegistryABI = `[{"inputs":[{"internalType":"string","name":"createdBy","type":"string"},{"internalType":"string","name":"applicationNumber","type":"string"},{"internalType":"string","name":"title","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"ipfsHash","type":"string"},{"internalType":"uint256","name":"status","type":"uint256"}],"name":"registerPatent","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// PatentRegistry wraps a deployed PatentRegistry contract.
type PatentRegistry struct {
	contract *bind.BoundContract
	address  common.Address
}

// NewPatentRegistry binds the contract at the given address.
func NewPatentRegistry(address common.Address, backend bind.ContractBackend) (*PatentRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(PatentRegistryABI))
	if err != nil {
		return nil, err
	}
	return &PatentRegistry{
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		address:  address,
	}, nil
}

// Address returns the bound contract address.
func (r *PatentRegistry) Address() common.Address {
	return r.address
}

// RegisterPatent invokes registerPatent(createdBy, applicationNumber, title,
// description, ipfsHash, status) on the contract.
func (r *PatentRegistry) RegisterPatent(opts *bind.TransactOpts, createdBy, applicationNumber, title, description, ipfsHash string, status *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "registerPatent", createdBy, applicationNumber, title, description, ipfsHash, status)
}
