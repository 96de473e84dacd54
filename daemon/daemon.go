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

// Package daemon wires the whole pipeline and supervises its tasks: one
// parser per configured chain, one ordered consumer per chain's block queue
// and shared consumers for associations, assets and notifications.
package daemon

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/config"
	"github.com/helix-wallet/walletd/consumer"
	"github.com/helix-wallet/walletd/parser"
	"github.com/helix-wallet/walletd/pusher"
	"github.com/helix-wallet/walletd/store"
	"github.com/helix-wallet/walletd/stream"
	"github.com/helix-wallet/walletd/types"
)

const (
	// restartBackoffCap bounds the exponential restart delay of a crashed
	// task.
	restartBackoffCap = 30 * time.Second

	// drainTimeout is how long shutdown waits for in-flight work.
	drainTimeout = 30 * time.Second
)

type Daemon struct {
	cfg       config.Config
	store     *store.Store
	stream    *stream.Client
	providers map[types.Chain]chain.Provider
	push      *pusher.Client

	parsers []*parser.Parser
}

func New(cfg config.Config, st *store.Store, sc *stream.Client, providers map[types.Chain]chain.Provider, push *pusher.Client) *Daemon {
	return &Daemon{cfg: cfg, store: st, stream: sc, providers: providers, push: push}
}

// Run starts every task and blocks until ctx is cancelled and the tasks have
// drained, or a task fails permanently.
func (d *Daemon) Run(ctx context.Context) error {
	chains := make([]types.Chain, 0, len(d.providers))
	for c := range d.providers {
		chains = append(chains, c)
	}
	if err := d.stream.Setup(chains); err != nil {
		return err
	}
	log.Info("Daemon starting", "chains", len(chains))

	runCtx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(runCtx)

	d.startParsers(groupCtx, group)
	d.startTransactionConsumers(groupCtx, group)
	d.startSharedConsumers(groupCtx, group)

	reporter := NewReporter(d.parsers)
	group.Go(func() error {
		return reporter.Run(groupCtx)
	})

	// Shutdown: cancel the tasks when the outer context ends, then give
	// in-flight deliveries a bounded drain.
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		cancel()
		return err
	case <-ctx.Done():
	}
	log.Info("Daemon draining", "timeout", drainTimeout)
	cancel()
	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	case <-time.After(drainTimeout):
		log.Warn("Drain timeout exceeded, exiting")
		return nil
	}
}

func (d *Daemon) startParsers(ctx context.Context, group *errgroup.Group) {
	for _, provider := range d.providers {
		provider := provider
		chainID := provider.Chain()
		poll, await, budget, start, txTypes := d.cfg.ParserFor(chainID)
		p := parser.New(provider, d.store, d.stream, parser.Config{
			PollInterval:     poll,
			AwaitBlocks:      await,
			RetryBudget:      budget,
			StartBlock:       start,
			TransactionTypes: txTypes,
		})
		d.parsers = append(d.parsers, p)
		group.Go(func() error {
			return supervise(ctx, "parser/"+chainID.String(), p.Run)
		})
	}
}

func (d *Daemon) startTransactionConsumers(ctx context.Context, group *errgroup.Group) {
	txs := consumer.NewTransactions(d.store, d.stream, d.cfg.OutdatedFor)
	for chainID := range d.providers {
		queue := stream.FetchBlockTransactions.ChainQueue(chainID)
		group.Go(func() error {
			return supervise(ctx, "consumer/"+queue, func(ctx context.Context) error {
				// Prefetch 1 keeps block order within the chain.
				return stream.Consume(ctx, d.stream, queue, stream.ConsumerOptions{Prefetch: 1}, txs.Handle)
			})
		})
	}
	// FetchTransactions carries batches produced outside the parsers, for
	// example by the API layer; payloads arrive already tagged with their
	// chain.
	group.Go(func() error {
		return supervise(ctx, "consumer/"+stream.FetchTransactions.String(), func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchTransactions.String(), d.sharedOptions(), txs.Handle)
		})
	})
}

func (d *Daemon) startSharedConsumers(ctx context.Context, group *errgroup.Group) {
	associations := consumer.NewAssociations(d.providers, d.store, d.stream)
	assets := consumer.NewFetchAssets(d.providers, d.store)
	notifications := consumer.NewNotifications(d.store, d.push)

	type task struct {
		queue stream.Queue
		start func(context.Context) error
	}
	tasks := []task{
		{stream.FetchTokenAddressesAssociations, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchTokenAddressesAssociations.String(), d.sharedOptions(), associations.HandleTokens)
		}},
		{stream.FetchCoinAddressesAssociations, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchCoinAddressesAssociations.String(), d.sharedOptions(), associations.HandleCoins)
		}},
		{stream.FetchNftAssetsAddressesAssociations, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchNftAssetsAddressesAssociations.String(), d.sharedOptions(), associations.HandleNFTs)
		}},
		{stream.FetchAddressTransactions, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchAddressTransactions.String(), d.sharedOptions(), associations.HandleAddressTransactions)
		}},
		{stream.FetchAssets, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.FetchAssets.String(), d.sharedOptions(), assets.Handle)
		}},
		{stream.NotificationsTransactions, func(ctx context.Context) error {
			return stream.Consume(ctx, d.stream, stream.NotificationsTransactions.String(), d.sharedOptions(), notifications.Handle)
		}},
	}
	for _, t := range tasks {
		t := t
		group.Go(func() error {
			return supervise(ctx, "consumer/"+t.queue.String(), t.start)
		})
	}
}

func (d *Daemon) sharedOptions() stream.ConsumerOptions {
	return stream.ConsumerOptions{Prefetch: d.cfg.RabbitMQ.Prefetch}
}

// supervise restarts a task with capped exponential backoff until the context
// ends. A run longer than the current backoff resets the penalty.
func supervise(ctx context.Context, name string, run func(context.Context) error) error {
	backoff := time.Second
	for {
		started := time.Now()
		err := run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) > backoff {
			backoff = time.Second
		}
		log.Warn("Task crashed, restarting", "task", name, "backoff", backoff, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > restartBackoffCap {
			backoff = restartBackoffCap
		}
	}
}
