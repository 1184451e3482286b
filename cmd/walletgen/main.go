// Walletgen pre-provisions custodial wallets for registrants without running
// a registration. It is idempotent: re-running for an already-provisioned
// email prints the existing address.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gsignip/patent-attestation/cmd/flags"
	"github.com/gsignip/patent-attestation/interfaces"
	"github.com/gsignip/patent-attestation/keyvault"
	"github.com/gsignip/patent-attestation/store"
)

func main() {
	app := &cli.App{
		Name:  "walletgen",
		Usage: "Pre-provision a custodial wallet for a registrant",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Usage:    "registrant email to provision a wallet for",
				Required: true,
			},
		}, append(flags.IdentityStoreFlags(), flags.LoggingFlags()...)...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)
	ctx := context.Background()

	var identityStore interfaces.IdentityStore
	if cCtx.String(flags.IdentityStoreFlag.Name) == "vault" {
		vaultStore, err := flags.BuildVaultIdentityStore(cCtx, logger)
		if err != nil {
			return err
		}
		identityStore = vaultStore
	} else {
		pool, err := store.NewPool(ctx, cCtx.String(flags.DBDSNFlag.Name))
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := store.RunMigrations(ctx, pool); err != nil {
			return err
		}
		identityStore = store.NewPostgresStore(pool)
	}

	vault := keyvault.New(identityStore, logger)
	identity, err := vault.ResolveOrCreate(ctx, cCtx.String("email"))
	if err != nil {
		return err
	}

	fmt.Printf("email:   %s\naddress: %s\n", identity.Email, identity.Address)
	return nil
}
