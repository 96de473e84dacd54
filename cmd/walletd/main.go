// Copyright 2026 Helix Wallet
// This file is part of the Helix Wallet backend.
//
// This software is provided "as is", without warranty of any kind,
// express or implied, including but not limited to the warranties
// of merchantability, fitness for a particular purpose and
// noninfringement. In no event shall the authors or copyright
// holders be liable for any claim, damages, or other liability,
// whether in an action of contract, tort or otherwise, arising
// from, out of or in connection with the software or the use or
// other dealings in the software.

// walletd indexes configured chains and delivers wallet notifications.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/helix-wallet/walletd/chain/registry"
	"github.com/helix-wallet/walletd/config"
	"github.com/helix-wallet/walletd/daemon"
	"github.com/helix-wallet/walletd/pusher"
	"github.com/helix-wallet/walletd/store"
	"github.com/helix-wallet/walletd/stream"
	"github.com/helix-wallet/walletd/types"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
)

func main() {
	app := &cli.App{
		Name:  "walletd",
		Usage: "multi-chain wallet indexing and notification daemon",
		Flags: []cli.Flag{configFlag, verbosityFlag},
		Before: func(ctx *cli.Context) error {
			handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)), false)
			log.SetDefault(log.NewLogger(handler))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "setup",
				Usage:  "Create the database schema and seed static data",
				Action: runSetup,
			},
			{
				Name:   "daemon",
				Usage:  "Run the parsers and consumers",
				Action: runDaemon,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(ctx *cli.Context) (config.Config, error) {
	return config.Load(ctx.String(configFlag.Name))
}

func runSetup(cliCtx *cli.Context) error {
	cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	ctx := cliCtx.Context

	st, err := store.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Setup(ctx); err != nil {
		return err
	}
	log.Info("Database schema ready")

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return err
	}
	chains := make([]types.Chain, 0, len(endpoints))
	for c := range endpoints {
		chains = append(chains, c)
	}
	sc, err := stream.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	defer sc.Close()
	if err := sc.Setup(chains); err != nil {
		return err
	}
	log.Info("Queue topology ready", "chains", len(chains))
	return nil
}

func runDaemon(cliCtx *cli.Context) error {
	cfg, err := loadConfig(cliCtx)
	if err != nil {
		return err
	}
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return err
	}
	providers, err := registry.Build(endpoints)
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		return fmt.Errorf("no supported chains configured")
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer st.Close()
	st.BatchSize = cfg.Parser.BatchSize

	sc, err := stream.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	defer sc.Close()

	d := daemon.New(cfg, st, sc, providers, pusher.New(cfg.Pusher.URL))
	if err := d.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	log.Info("Shutdown complete")
	return nil
}
