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

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/helix-wallet/walletd/types"
)

// ParserState is the persisted cursor of one chain's parser. CurrentBlock is
// the last fully processed height; LatestBlock the last observed tip.
type ParserState struct {
	Chain        types.Chain
	CurrentBlock uint64
	LatestBlock  uint64
	AwaitBlocks  uint64
	UpdatedAt    time.Time
}

// GetParserState loads the cursor row for a chain.
func (s *Store) GetParserState(ctx context.Context, chain types.Chain) (ParserState, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var state ParserState
	state.Chain = chain
	err := s.pool.QueryRow(ctx,
		`SELECT current_block, latest_block, await_blocks, updated_at
		 FROM chains WHERE chain = $1`, chain.String(),
	).Scan(&state.CurrentBlock, &state.LatestBlock, &state.AwaitBlocks, &state.UpdatedAt)
	if err != nil {
		return ParserState{}, fmt.Errorf("get parser state %s: %w", chain, err)
	}
	return state, nil
}

// EnsureParserState creates the cursor row if missing. A fresh row starts at
// the given height so a new chain does not backfill from genesis.
func (s *Store) EnsureParserState(ctx context.Context, chain types.Chain, startBlock uint64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO chains (chain, current_block, latest_block)
		 VALUES ($1, $2, $2)
		 ON CONFLICT (chain) DO NOTHING`, chain.String(), startBlock)
	if err != nil {
		return fmt.Errorf("ensure parser state %s: %w", chain, err)
	}
	return nil
}

// SetCurrentBlock advances the processed cursor. The guard keeps the cursor
// monotonic and never ahead of the observed tip.
func (s *Store) SetCurrentBlock(ctx context.Context, chain types.Chain, block uint64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE chains
		 SET current_block = $2, updated_at = now()
		 WHERE chain = $1 AND current_block <= $2 AND latest_block >= $2`,
		chain.String(), block)
	if err != nil {
		return fmt.Errorf("set current block %s=%d: %w", chain, block, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set current block %s=%d: cursor rejected", chain, block)
	}
	return nil
}

// SetLatestBlock records the observed chain tip. Tips only move forward.
func (s *Store) SetLatestBlock(ctx context.Context, chain types.Chain, block uint64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`UPDATE chains
		 SET latest_block = $2, updated_at = now()
		 WHERE chain = $1 AND latest_block < $2`,
		chain.String(), block)
	if err != nil {
		return fmt.Errorf("set latest block %s=%d: %w", chain, block, err)
	}
	return nil
}
