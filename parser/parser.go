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

// Package parser drives one chain's block cursor: it polls the tip, fetches
// each new block's transfers, publishes them to the stream and only then
// commits the cursor. Publishing before committing makes delivery at least
// once; the consumers are idempotent.
package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/store"
	"github.com/helix-wallet/walletd/types"
)

// StateStore is the persisted cursor surface the parser needs.
type StateStore interface {
	GetParserState(ctx context.Context, chain types.Chain) (store.ParserState, error)
	EnsureParserState(ctx context.Context, chain types.Chain, startBlock uint64) error
	SetCurrentBlock(ctx context.Context, chain types.Chain, block uint64) error
	SetLatestBlock(ctx context.Context, chain types.Chain, block uint64) error
	AddParserDeadLetter(ctx context.Context, chain types.Chain, block uint64, reason string) error
}

// Publisher hands parsed blocks to the stream.
type Publisher interface {
	PublishBlockTransactions(ctx context.Context, payload types.TransactionsPayload) error
}

// StatusEvent is emitted after every poll round for the status reporter.
type StatusEvent struct {
	Chain        types.Chain
	CurrentBlock uint64
	LatestBlock  uint64
}

// Config tunes one chain's parser.
type Config struct {
	// PollInterval is the tip polling period.
	PollInterval time.Duration
	// AwaitBlocks is how many blocks behind the tip the cursor stays, as a
	// cheap reorg guard.
	AwaitBlocks uint64
	// RetryBudget is how many consecutive rounds a failing block is retried
	// before it is dead-lettered and skipped.
	RetryBudget int
	// StartBlock seeds the cursor for a chain never parsed before.
	StartBlock uint64
	// TransactionTypes, when non-empty, restricts published transactions to
	// the listed kinds.
	TransactionTypes []types.TransactionType
}

// DefaultConfig mirrors production settings.
var DefaultConfig = Config{
	PollInterval: 2 * time.Second,
	AwaitBlocks:  2,
	RetryBudget:  3,
}

// Parser owns the cursor of one chain.
type Parser struct {
	provider chain.Provider
	state    StateStore
	pub      Publisher
	config   Config

	log log.Logger

	statusFeed event.Feed
	scope      event.SubscriptionScope

	blocksMeter metrics.Meter
	txsMeter    metrics.Meter
	errorsMeter metrics.Meter
	lagGauge    metrics.Gauge

	// failures counts consecutive failed rounds for the block at the cursor.
	failures int
}

func New(provider chain.Provider, state StateStore, pub Publisher, config Config) *Parser {
	// GetOrRegister keeps supervisor restarts from colliding on the
	// per-chain metric names.
	name := provider.Chain().String()
	return &Parser{
		provider:    provider,
		state:       state,
		pub:         pub,
		config:      config,
		log:         log.New("chain", name),
		blocksMeter: metrics.GetOrRegisterMeter("parser/"+name+"/blocks", nil),
		txsMeter:    metrics.GetOrRegisterMeter("parser/"+name+"/txs", nil),
		errorsMeter: metrics.GetOrRegisterMeter("parser/"+name+"/errors", nil),
		lagGauge:    metrics.GetOrRegisterGauge("parser/"+name+"/lag", nil),
	}
}

func (p *Parser) Chain() types.Chain {
	return p.provider.Chain()
}

// SubscribeStatus registers a status sink. The subscription is released when
// the parser stops.
func (p *Parser) SubscribeStatus(ch chan<- StatusEvent) event.Subscription {
	return p.scope.Track(p.statusFeed.Subscribe(ch))
}

// Run polls until ctx is cancelled. Every round refreshes the tip and then
// processes as many pending blocks as the await window allows.
func (p *Parser) Run(ctx context.Context) error {
	defer p.scope.Close()

	chainID := p.Chain()
	if err := p.state.EnsureParserState(ctx, chainID, p.config.StartBlock); err != nil {
		return err
	}
	p.log.Info("Parser started", "poll", p.config.PollInterval, "await", p.config.AwaitBlocks)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stopped")
			return ctx.Err()
		case <-timer.C:
		}
		if err := p.round(ctx); err != nil && ctx.Err() == nil {
			p.errorsMeter.Mark(1)
			p.log.Warn("Parser round failed", "err", err)
		}
		timer.Reset(p.config.PollInterval)
	}
}

func (p *Parser) round(ctx context.Context) error {
	chainID := p.Chain()

	latest, err := p.provider.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}
	if err := p.state.SetLatestBlock(ctx, chainID, latest); err != nil {
		return err
	}
	state, err := p.state.GetParserState(ctx, chainID)
	if err != nil {
		return err
	}

	for state.CurrentBlock+p.config.AwaitBlocks < state.LatestBlock {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		next := state.CurrentBlock + 1
		if err := p.processBlock(ctx, next); err != nil {
			p.failures++
			if p.failures < p.config.RetryBudget {
				p.emitStatus(state)
				return fmt.Errorf("block %d: %w", next, err)
			}
			// The block exhausted its budget. Record it and move on so one
			// poison block cannot stall the whole chain.
			p.log.Error("Dead-lettering block", "block", next, "err", err)
			if dlErr := p.state.AddParserDeadLetter(ctx, chainID, next, err.Error()); dlErr != nil {
				p.emitStatus(state)
				return dlErr
			}
		}
		p.failures = 0
		if err := p.state.SetCurrentBlock(ctx, chainID, next); err != nil {
			p.emitStatus(state)
			return err
		}
		state.CurrentBlock = next
	}
	p.emitStatus(state)
	return nil
}

func (p *Parser) processBlock(ctx context.Context, block uint64) error {
	txs, err := p.provider.GetTransactions(ctx, block)
	if err != nil {
		return err
	}
	txs = p.filter(txs)
	p.blocksMeter.Mark(1)
	p.txsMeter.Mark(int64(len(txs)))
	if len(txs) == 0 {
		return nil
	}
	return p.pub.PublishBlockTransactions(ctx, types.TransactionsPayload{
		Chain:        p.Chain(),
		Block:        block,
		Transactions: txs,
	})
}

func (p *Parser) filter(txs []types.Transaction) []types.Transaction {
	if len(p.config.TransactionTypes) == 0 {
		return txs
	}
	allowed := make(map[types.TransactionType]struct{}, len(p.config.TransactionTypes))
	for _, t := range p.config.TransactionTypes {
		allowed[t] = struct{}{}
	}
	var out []types.Transaction
	for _, tx := range txs {
		if _, ok := allowed[tx.Type]; ok {
			out = append(out, tx)
		}
	}
	return out
}

func (p *Parser) emitStatus(state store.ParserState) {
	lag := int64(state.LatestBlock) - int64(state.CurrentBlock)
	p.lagGauge.Update(lag)
	p.statusFeed.Send(StatusEvent{
		Chain:        p.Chain(),
		CurrentBlock: state.CurrentBlock,
		LatestBlock:  state.LatestBlock,
	})
}
