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

	"github.com/jackc/pgx/v5"

	"github.com/helix-wallet/walletd/types"
)

// GetSubscriptions returns the subscriptions on a chain matching any of the
// given addresses. This is the hot path of the transactions consumer.
func (s *Store) GetSubscriptions(ctx context.Context, chain types.Chain, addresses []string) ([]types.Subscription, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT device_id, wallet_index, chain, address
		 FROM subscriptions
		 WHERE chain = $1 AND address = ANY($2)`,
		chain.String(), addresses)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

// GetSubscriptionsByDevice returns a wallet's subscriptions on a device.
func (s *Store) GetSubscriptionsByDevice(ctx context.Context, deviceID int64, walletIndex int32) ([]types.Subscription, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT device_id, wallet_index, chain, address
		 FROM subscriptions WHERE device_id = $1 AND wallet_index = $2`,
		deviceID, walletIndex)
	if err != nil {
		return nil, fmt.Errorf("query device subscriptions: %w", err)
	}
	defer rows.Close()
	return scanSubscriptions(rows)
}

func scanSubscriptions(rows pgx.Rows) ([]types.Subscription, error) {
	var out []types.Subscription
	for rows.Next() {
		var (
			sub   types.Subscription
			chain string
		)
		if err := rows.Scan(&sub.DeviceID, &sub.WalletIndex, &chain, &sub.Address); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		sub.Chain = types.Chain(chain)
		out = append(out, sub)
	}
	return out, rows.Err()
}

// AddSubscriptions registers subscriptions, ignoring duplicates.
func (s *Store) AddSubscriptions(ctx context.Context, subs []types.Subscription) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, sub := range subs {
		batch.Queue(
			`INSERT INTO subscriptions (device_id, wallet_index, chain, address)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT DO NOTHING`,
			sub.DeviceID, sub.WalletIndex, sub.Chain.String(), sub.Address)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("add subscriptions: %w", err)
	}
	return nil
}

// RemoveSubscriptions deletes subscriptions by their full key.
func (s *Store) RemoveSubscriptions(ctx context.Context, subs []types.Subscription) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, sub := range subs {
		batch.Queue(
			`DELETE FROM subscriptions
			 WHERE device_id = $1 AND wallet_index = $2 AND chain = $3 AND address = $4`,
			sub.DeviceID, sub.WalletIndex, sub.Chain.String(), sub.Address)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("remove subscriptions: %w", err)
	}
	return nil
}

// GetDevice loads a device by its internal id.
func (s *Store) GetDevice(ctx context.Context, id int64) (types.Device, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var d types.Device
	err := s.pool.QueryRow(ctx,
		`SELECT id, device_id, platform, token, COALESCE(public_key, ''),
		        locale, currency, updated_at
		 FROM devices WHERE id = $1`, id,
	).Scan(&d.ID, &d.DeviceID, &d.Platform, &d.Token, &d.PublicKey,
		&d.Locale, &d.Currency, &d.UpdatedAt)
	if err != nil {
		return types.Device{}, fmt.Errorf("get device %d: %w", id, err)
	}
	return d, nil
}

// UpsertDevice registers a device or refreshes its push token and settings,
// returning the internal id.
func (s *Store) UpsertDevice(ctx context.Context, d types.Device) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO devices (device_id, platform, token, public_key, locale, currency)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		 ON CONFLICT (device_id) DO UPDATE SET
			platform = EXCLUDED.platform,
			token = EXCLUDED.token,
			public_key = EXCLUDED.public_key,
			locale = EXCLUDED.locale,
			currency = EXCLUDED.currency,
			updated_at = now()
		 RETURNING id`,
		d.DeviceID, d.Platform, d.Token, d.PublicKey, d.Locale, d.Currency,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert device %s: %w", d.DeviceID, err)
	}
	return id, nil
}
