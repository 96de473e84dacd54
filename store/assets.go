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

	"github.com/jackc/pgx/v5"

	"github.com/helix-wallet/walletd/types"
)

// AddAssets upserts asset metadata rows.
func (s *Store) AddAssets(ctx context.Context, assets []types.Asset) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, a := range assets {
		batch.Queue(
			`INSERT INTO assets (id, chain, token_id, name, symbol, decimals, asset_type)
			 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
			 ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				asset_type = EXCLUDED.asset_type,
				updated_at = now()`,
			a.ID.String(), a.ID.Chain.String(), a.ID.TokenID,
			a.Name, a.Symbol, a.Decimals, a.Type)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("add assets: %w", err)
	}
	return nil
}

// GetAssets loads asset metadata by id. Unknown ids are absent from the
// result, not errors.
func (s *Store) GetAssets(ctx context.Context, ids []types.AssetID) ([]types.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, symbol, decimals, asset_type
		 FROM assets WHERE id = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var out []types.Asset
	for rows.Next() {
		var (
			a  types.Asset
			id string
		)
		if err := rows.Scan(&id, &a.Name, &a.Symbol, &a.Decimals, &a.Type); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.ID, err = types.ParseAssetID(id); err != nil {
			return nil, fmt.Errorf("stored asset id %q: %w", id, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// MissingAssets returns the subset of ids that have no metadata row yet.
func (s *Store) MissingAssets(ctx context.Context, ids []types.AssetID) ([]types.AssetID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	known, err := s.GetAssets(ctx, ids)
	if err != nil {
		return nil, err
	}
	present := make(map[types.AssetID]struct{}, len(known))
	for _, a := range known {
		present[a.ID] = struct{}{}
	}
	var missing []types.AssetID
	seen := make(map[types.AssetID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing, nil
}

// AddAssetsAddresses records discovered address-to-asset associations.
func (s *Store) AddAssetsAddresses(ctx context.Context, associations []types.AssetAddress) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, aa := range associations {
		batch.Queue(
			`INSERT INTO assets_addresses (asset_id, address, chain)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (asset_id, address) DO NOTHING`,
			aa.AssetID.String(), aa.Address, aa.Chain.String())
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("add assets addresses: %w", err)
	}
	return nil
}

// GetAssetsByAddresses returns the distinct asset ids associated with the
// addresses. With from set, only associations created after it are returned;
// activeOnly restricts the result to assets with resolved metadata.
func (s *Store) GetAssetsByAddresses(ctx context.Context, addresses []string, from time.Time, activeOnly bool) ([]types.AssetID, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT DISTINCT aa.asset_id FROM assets_addresses aa
		 WHERE aa.address = ANY($1) AND aa.created_at >= $2`
	if activeOnly {
		query += ` AND EXISTS (SELECT 1 FROM assets a WHERE a.id = aa.asset_id AND a.symbol <> '')`
	}
	rows, err := s.pool.Query(ctx, query, addresses, from)
	if err != nil {
		return nil, fmt.Errorf("query assets by addresses: %w", err)
	}
	defer rows.Close()

	var out []types.AssetID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan asset id: %w", err)
		}
		id, err := types.ParseAssetID(raw)
		if err != nil {
			return nil, fmt.Errorf("stored asset id %q: %w", raw, err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
