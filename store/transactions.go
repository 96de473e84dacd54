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
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/helix-wallet/walletd/types"
)

// AddTransactions upserts transactions and their address join rows in chunks.
// Transactions referencing assets that are not in the assets table yet are
// skipped; the caller resolves them via MissingAssets first and retries on the
// next delivery.
func (s *Store) AddTransactions(ctx context.Context, txs []types.Transaction) error {
	for _, part := range chunk(txs, s.BatchSize) {
		if err := s.addTransactionsChunk(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) addTransactionsChunk(ctx context.Context, txs []types.Transaction) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range txs {
		inputs, err := json.Marshal(t.UTXOInputs)
		if err != nil {
			return fmt.Errorf("marshal utxo inputs %s: %w", t.ID, err)
		}
		outputs, err := json.Marshal(t.UTXOOutputs)
		if err != nil {
			return fmt.Errorf("marshal utxo outputs %s: %w", t.ID, err)
		}
		metadata, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata %s: %w", t.ID, err)
		}
		chain := t.AssetID.Chain
		batch.Queue(
			`INSERT INTO transactions
				(id, hash, chain, asset_id, from_address, to_address, memo, kind,
				 state, block_number, sequence, fee, fee_asset_id, value,
				 utxo_inputs, utxo_outputs, metadata, created_at)
			 SELECT $1, $2, $3, $4, $5, $6, $7, $8,
			        $9, $10, $11, $12, $13, $14,
			        $15, $16, $17, $18
			 WHERE EXISTS (SELECT 1 FROM assets WHERE id = $4)
			 ON CONFLICT (id) DO UPDATE SET
				state = EXCLUDED.state,
				block_number = EXCLUDED.block_number,
				fee = EXCLUDED.fee,
				metadata = EXCLUDED.metadata`,
			t.ID, t.Hash, chain.String(), t.AssetID.String(), t.From, t.To, t.Memo, string(t.Type),
			string(t.State), t.BlockNumber, t.Sequence, t.Fee, t.FeeAssetID.String(), t.Value,
			inputs, outputs, metadata, t.CreatedAt,
		)
		for _, addr := range t.Addresses() {
			batch.Queue(
				`INSERT INTO transactions_addresses (transaction_id, chain, address)
				 SELECT $1, $2, $3
				 WHERE EXISTS (SELECT 1 FROM transactions WHERE id = $1)
				 ON CONFLICT (transaction_id, address) DO NOTHING`,
				t.ID, chain.String(), addr,
			)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return tx.Commit(ctx)
}

// GetTransactionsByAddresses returns the stored transactions touching any of
// the addresses on a chain, newest first.
func (s *Store) GetTransactionsByAddresses(ctx context.Context, chain types.Chain, addresses []string, limit int) ([]types.Transaction, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT t.id, t.hash, t.asset_id, t.from_address, t.to_address,
		        t.memo, t.kind, t.state, t.block_number, t.sequence, t.fee,
		        t.fee_asset_id, t.value, t.utxo_inputs, t.utxo_outputs,
		        t.metadata, t.created_at
		 FROM transactions t
		 JOIN transactions_addresses ta ON ta.transaction_id = t.id
		 WHERE ta.chain = $1 AND ta.address = ANY($2)
		 ORDER BY t.created_at DESC
		 LIMIT $3`,
		chain.String(), addresses, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []types.Transaction
	for rows.Next() {
		var (
			t                         types.Transaction
			assetID, feeAssetID, kind string
			state                     string
			inputs, outputs, metadata []byte
		)
		err := rows.Scan(&t.ID, &t.Hash, &assetID, &t.From, &t.To,
			&t.Memo, &kind, &state, &t.BlockNumber, &t.Sequence, &t.Fee,
			&feeAssetID, &t.Value, &inputs, &outputs, &metadata, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.AssetID, err = types.ParseAssetID(assetID); err != nil {
			return nil, fmt.Errorf("stored asset id %q: %w", assetID, err)
		}
		if t.FeeAssetID, err = types.ParseAssetID(feeAssetID); err != nil {
			return nil, fmt.Errorf("stored fee asset id %q: %w", feeAssetID, err)
		}
		t.Type = types.TransactionType(kind)
		t.State = types.TransactionState(state)
		if len(inputs) > 0 {
			if err := json.Unmarshal(inputs, &t.UTXOInputs); err != nil {
				return nil, fmt.Errorf("stored utxo inputs %s: %w", t.ID, err)
			}
		}
		if len(outputs) > 0 {
			if err := json.Unmarshal(outputs, &t.UTXOOutputs); err != nil {
				return nil, fmt.Errorf("stored utxo outputs %s: %w", t.ID, err)
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				return nil, fmt.Errorf("stored metadata %s: %w", t.ID, err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
