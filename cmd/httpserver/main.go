// The attestation server exposes the patent registration pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gsignip/patent-attestation/anchor"
	"github.com/gsignip/patent-attestation/attestor"
	"github.com/gsignip/patent-attestation/cmd/flags"
	"github.com/gsignip/patent-attestation/httpserver"
	"github.com/gsignip/patent-attestation/interfaces"
	"github.com/gsignip/patent-attestation/keyvault"
	"github.com/gsignip/patent-attestation/ledger"
	"github.com/gsignip/patent-attestation/store"
)

var serverFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "listen-addr",
		Value: "127.0.0.1:8080",
		Usage: "address to listen on for API",
	},
	&cli.StringFlag{
		Name:  "metrics-addr",
		Value: "127.0.0.1:8090",
		Usage: "address to listen on for Prometheus metrics",
	},
	&cli.StringFlag{
		Name:    "rpc-addr",
		Value:   "http://127.0.0.1:8545",
		Usage:   "Ethereum JSON-RPC endpoint",
		EnvVars: []string{"ETH_RPC_URL"},
	},
	&cli.StringFlag{
		Name:     "contract-address",
		Usage:    "address of the deployed PatentRegistry contract",
		Required: true,
	},
	&cli.Int64Flag{
		Name:  "chain-id",
		Value: 0,
		Usage: "chain id for transaction signing (0 resolves it from the node)",
	},
	&cli.Int64Flag{
		Name:  "gas-price-gwei",
		Value: ledger.DefaultGasPriceGwei,
		Usage: "fixed gas price in gwei (never estimated)",
	},
	&cli.Uint64Flag{
		Name:  "gas-limit",
		Value: ledger.DefaultGasLimit,
		Usage: "fixed gas limit",
	},
	&cli.StringFlag{
		Name:  "anchor-backend",
		Value: "pinata",
		Usage: "content anchor backend: 'pinata' or 'ipfs'",
	},
	&cli.StringFlag{
		Name:    "pinata-api-key",
		Value:   "",
		Usage:   "Pinata API key",
		EnvVars: []string{"PINATA_API_KEY"},
	},
	&cli.StringFlag{
		Name:    "pinata-api-secret",
		Value:   "",
		Usage:   "Pinata API secret",
		EnvVars: []string{"PINATA_API_SECRET"},
	},
	&cli.StringFlag{
		Name:  "ipfs-addr",
		Value: "127.0.0.1:5001",
		Usage: "IPFS node API address for the ipfs anchor backend",
	},
	&cli.StringFlag{
		Name:  "ipfs-gateway",
		Value: "https://ipfs.io/ipfs",
		Usage: "gateway base URL for links to pinned documents",
	},
	&cli.Int64Flag{
		Name:  "anchor-timeout-seconds",
		Value: 300,
		Usage: "timeout for document pinning",
	},
	&cli.Int64Flag{
		Name:  "ledger-timeout-seconds",
		Value: 180,
		Usage: "timeout for ledger submission and confirmation",
	},
	&cli.BoolFlag{
		Name:  "pprof",
		Value: false,
		Usage: "enable pprof debug endpoint",
	},
	&cli.Int64Flag{
		Name:  "drain-seconds",
		Value: 45,
		Usage: "seconds to wait in drain HTTP request",
	},
}

func main() {
	app := &cli.App{
		Name:  "attestation-server",
		Usage: "Serve the patent attestation pipeline API",
		Flags: append(append(serverFlags, flags.IdentityStoreFlags()...), flags.LoggingFlags()...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	ctx := context.Background()

	// Attestation store. Always Postgres; the wallet mapping may live in
	// Vault instead.
	pool, err := store.NewPool(ctx, cCtx.String(flags.DBDSNFlag.Name))
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", "err", err)
		return err
	}
	defer pool.Close()

	if err := store.RunMigrations(ctx, pool); err != nil {
		logger.Error("Failed to run migrations", "err", err)
		return err
	}
	attStore := store.NewPostgresStore(pool)

	var identityStore interfaces.IdentityStore = attStore
	if cCtx.String(flags.IdentityStoreFlag.Name) == "vault" {
		identityStore, err = flags.BuildVaultIdentityStore(cCtx, logger)
		if err != nil {
			logger.Error("Failed to create Vault identity store", "err", err)
			return err
		}
		logger.Info("Custodial key material stored in Vault")
	}
	vault := keyvault.New(identityStore, logger)

	// Content anchor.
	var contentAnchor interfaces.ContentAnchor
	anchorTimeout := time.Duration(cCtx.Int64("anchor-timeout-seconds")) * time.Second
	switch backend := cCtx.String("anchor-backend"); backend {
	case "pinata":
		contentAnchor = anchor.NewPinataClient(
			cCtx.String("pinata-api-key"),
			cCtx.String("pinata-api-secret"),
			logger,
		).WithTimeout(anchorTimeout)
	case "ipfs":
		contentAnchor = anchor.NewIPFSBackend(
			cCtx.String("ipfs-addr"),
			cCtx.String("ipfs-gateway"),
			logger,
		)
	default:
		return fmt.Errorf("invalid anchor-backend: %s", backend)
	}

	// Ledger client.
	ledgerClient, err := ledger.NewClient(
		cCtx.String("rpc-addr"),
		cCtx.String("contract-address"),
		cCtx.Int64("chain-id"),
		logger,
	)
	if err != nil {
		logger.Error("Failed to create ledger client", "err", err)
		return err
	}
	ledgerClient.WithGas(cCtx.Int64("gas-price-gwei"), cCtx.Uint64("gas-limit"))

	registrar := attestor.New(vault, contentAnchor, ledgerClient, attStore, attestor.Timeouts{
		Anchor: anchorTimeout,
		Ledger: time.Duration(cCtx.Int64("ledger-timeout-seconds")) * time.Second,
	}, logger)

	handler := httpserver.NewHandler(registrar, vault, logger)
	server, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String("listen-addr"),
		MetricsAddr:              cCtx.String("metrics-addr"),
		Log:                      logger,
		EnablePprof:              cCtx.Bool("pprof"),
		DrainDuration:            time.Duration(cCtx.Int64("drain-seconds")) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             anchorTimeout + 60*time.Second,
	}, handler)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")

	return nil
}
