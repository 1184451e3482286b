package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"

	"github.com/gsignip/patent-attestation/bindings/patentregistry"
	"github.com/gsignip/patent-attestation/interfaces"
)

// DefaultGasPriceGwei and DefaultGasLimit are the fixed fee settings. They
// are configuration values, never estimated from the network.
const (
	DefaultGasPriceGwei = 15
	DefaultGasLimit     = 6_000_000
)

// Client implements interfaces.Ledger against an Ethereum JSON-RPC endpoint.
// The connection is established fresh per submission; signing contexts are
// never shared across signer identities.
type Client struct {
	rpcURL       string
	contractAddr common.Address
	chainID      *big.Int
	gasPrice     *big.Int
	gasLimit     uint64
	log          *slog.Logger
}

// NewClient creates a ledger client for the registry contract at
// contractAddr, reached through rpcURL. A zero chainID is resolved from the
// node on first submission.
func NewClient(rpcURL, contractAddr string, chainID int64, log *slog.Logger) (*Client, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddr)
	}

	c := &Client{
		rpcURL:       rpcURL,
		contractAddr: common.HexToAddress(contractAddr),
		gasPrice:     new(big.Int).Mul(big.NewInt(DefaultGasPriceGwei), big.NewInt(params.GWei)),
		gasLimit:     DefaultGasLimit,
		log:          log,
	}
	if chainID != 0 {
		c.chainID = big.NewInt(chainID)
	}
	return c, nil
}

// WithGas overrides the fixed gas price (in gwei) and gas limit.
func (c *Client) WithGas(gasPriceGwei int64, gasLimit uint64) *Client {
	c.gasPrice = new(big.Int).Mul(big.NewInt(gasPriceGwei), big.NewInt(params.GWei))
	c.gasLimit = gasLimit
	return c
}

// ContractAddress returns the hex address of the bound registry contract.
func (c *Client) ContractAddress() string {
	return c.contractAddr.Hex()
}

// Submit signs and sends the registration transaction and blocks until it is
// mined. Any network, signing or revert error is reported as
// ErrTransactionFailed; the outcome is ambiguous once the broadcast has been
// dispatched.
func (c *Client) Submit(ctx context.Context, signer *interfaces.Identity, applicationNo, title, description, cid string, status interfaces.StatusCode) (string, error) {
	if !signer.Complete() {
		return "", fmt.Errorf("%w: incomplete signer identity", interfaces.ErrTransactionFailed)
	}

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return "", fmt.Errorf("%w: dial %s: %w", interfaces.ErrTransactionFailed, c.rpcURL, err)
	}
	defer client.Close()

	key, err := crypto.HexToECDSA(signer.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("%w: parse signer key: %w", interfaces.ErrTransactionFailed, err)
	}

	chainID := c.chainID
	if chainID == nil {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: resolve chain id: %w", interfaces.ErrTransactionFailed, err)
		}
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return "", fmt.Errorf("%w: build transactor: %w", interfaces.ErrTransactionFailed, err)
	}
	auth.Context = ctx
	auth.GasPrice = c.gasPrice
	auth.GasLimit = c.gasLimit

	registry, err := patentregistry.NewPatentRegistry(c.contractAddr, client)
	if err != nil {
		return "", fmt.Errorf("%w: bind contract: %w", interfaces.ErrTransactionFailed, err)
	}

	start := time.Now()
	tx, err := registry.RegisterPatent(auth, signer.Address, applicationNo, title, description, cid, big.NewInt(int64(status)))
	if err != nil {
		return "", fmt.Errorf("%w: send transaction: %w", interfaces.ErrTransactionFailed, err)
	}

	c.log.Info("Registration transaction broadcast",
		slog.String("tx", tx.Hash().Hex()),
		slog.String("application", applicationNo),
		slog.String("signer", signer.Address))

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return "", fmt.Errorf("%w: wait for receipt of %s: %w", interfaces.ErrTransactionFailed, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", fmt.Errorf("%w: transaction %s reverted", interfaces.ErrTransactionFailed, tx.Hash().Hex())
	}

	c.log.Info("Registration transaction mined",
		slog.String("tx", receipt.TxHash.Hex()),
		slog.String("application", applicationNo),
		slog.Duration("duration", time.Since(start)))

	return receipt.TxHash.Hex(), nil
}
