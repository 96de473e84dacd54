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

	"github.com/helix-wallet/walletd/types"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chains (
		chain TEXT PRIMARY KEY,
		current_block BIGINT NOT NULL DEFAULT 0,
		latest_block BIGINT NOT NULL DEFAULT 0,
		await_blocks BIGINT NOT NULL DEFAULT 0 CHECK (await_blocks >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id BIGSERIAL PRIMARY KEY,
		device_id TEXT NOT NULL UNIQUE,
		platform TEXT NOT NULL,
		token TEXT NOT NULL DEFAULT '',
		public_key TEXT,
		locale TEXT NOT NULL DEFAULT 'en',
		currency TEXT NOT NULL DEFAULT 'USD',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		device_id BIGINT NOT NULL REFERENCES devices (id) ON DELETE CASCADE,
		wallet_index INTEGER NOT NULL,
		chain TEXT NOT NULL,
		address TEXT NOT NULL,
		PRIMARY KEY (device_id, wallet_index, chain, address)
	)`,
	`CREATE INDEX IF NOT EXISTS subscriptions_chain_address_idx
		ON subscriptions (chain, address)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		chain TEXT NOT NULL,
		token_id TEXT,
		name TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL DEFAULT '',
		decimals INTEGER NOT NULL DEFAULT 0,
		asset_type TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS assets_addresses (
		asset_id TEXT NOT NULL,
		address TEXT NOT NULL,
		chain TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (asset_id, address)
	)`,
	`CREATE INDEX IF NOT EXISTS assets_addresses_address_idx
		ON assets_addresses (address)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		chain TEXT NOT NULL,
		asset_id TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		state TEXT NOT NULL,
		block_number BIGINT NOT NULL,
		sequence BIGINT NOT NULL DEFAULT 0,
		fee TEXT NOT NULL DEFAULT '0',
		fee_asset_id TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '0',
		utxo_inputs JSONB,
		utxo_outputs JSONB,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions_addresses (
		transaction_id TEXT NOT NULL REFERENCES transactions (id) ON DELETE CASCADE,
		chain TEXT NOT NULL,
		address TEXT NOT NULL,
		PRIMARY KEY (transaction_id, address)
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_addresses_chain_address_idx
		ON transactions_addresses (chain, address)`,
	`CREATE TABLE IF NOT EXISTS parser_deadletter (
		chain TEXT NOT NULL,
		block BIGINT NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (chain, block)
	)`,
}

// Setup creates the schema and seeds static rows: one parser-state row and
// one native asset per known chain.
func (s *Store) Setup(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	for _, c := range types.AllChains() {
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO chains (chain) VALUES ($1) ON CONFLICT (chain) DO NOTHING`, c.String()); err != nil {
			return fmt.Errorf("seed chain %s: %w", c, err)
		}
	}
	natives := make([]types.Asset, 0, len(types.AllChains()))
	for _, c := range types.AllChains() {
		natives = append(natives, c.NativeAsset())
	}
	if err := s.AddAssets(ctx, natives); err != nil {
		return fmt.Errorf("seed native assets: %w", err)
	}
	return nil
}
