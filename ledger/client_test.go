package ledger_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsignip/patent-attestation/bindings/patentregistry"
	"github.com/gsignip/patent-attestation/interfaces"
	"github.com/gsignip/patent-attestation/ledger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const contractAddr = "0x00000000000000000000000000000000000000cc"

func TestRegisterPatentSelector(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(patentregistry.PatentRegistryABI))
	require.NoError(t, err)

	method, ok := parsed.Methods["registerPatent"]
	require.True(t, ok)

	want := crypto.Keccak256([]byte("registerPatent(string,string,string,string,string,uint256)"))[:4]
	assert.Equal(t, want, method.ID)
	assert.Len(t, method.Inputs, 6)
}

func TestNewClientValidatesContractAddress(t *testing.T) {
	_, err := ledger.NewClient("http://127.0.0.1:8545", "not-an-address", 0, discardLogger())
	assert.Error(t, err)

	client, err := ledger.NewClient("http://127.0.0.1:8545", contractAddr, 11155111, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, contractAddr, strings.ToLower(client.ContractAddress()))
}

func TestSubmitRejectsIncompleteSigner(t *testing.T) {
	client, err := ledger.NewClient("http://127.0.0.1:8545", contractAddr, 1, discardLogger())
	require.NoError(t, err)

	// Missing private key: rejected before any network traffic.
	signer := &interfaces.Identity{Email: "a@x.com", Address: "0xabc", PublicKey: "pub"}
	_, err = client.Submit(context.Background(), signer, "PT1", "t", "d", "cid", interfaces.StatusRegistered)
	assert.ErrorIs(t, err, interfaces.ErrTransactionFailed)
}
