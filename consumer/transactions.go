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

// Package consumer implements the stream consumers: transactions matching and
// persistence, address association fan-out, asset resolution and push
// delivery.
package consumer

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/helix-wallet/walletd/types"
)

var (
	matchedTxsMeter   = metrics.NewRegisteredMeter("consumer/transactions/matched", nil)
	storedTxsMeter    = metrics.NewRegisteredMeter("consumer/transactions/stored", nil)
	outdatedTxsMeter  = metrics.NewRegisteredMeter("consumer/transactions/outdated", nil)
	missingAssetMeter = metrics.NewRegisteredMeter("consumer/transactions/missing_assets", nil)
)

// TransactionStore is the persistence surface of the transactions consumer.
type TransactionStore interface {
	GetSubscriptions(ctx context.Context, chain types.Chain, addresses []string) ([]types.Subscription, error)
	AddTransactions(ctx context.Context, txs []types.Transaction) error
	MissingAssets(ctx context.Context, ids []types.AssetID) ([]types.AssetID, error)
	GetAssets(ctx context.Context, ids []types.AssetID) ([]types.Asset, error)
}

// TransactionsPublisher is the stream surface of the transactions consumer.
type TransactionsPublisher interface {
	PublishFetchAssets(ctx context.Context, payload types.FetchAssetsPayload) error
	PublishNotifications(ctx context.Context, payload types.NotificationsPayload) error
}

// Transactions matches parsed blocks against subscriptions, persists the hits
// and fans out notifications.
type Transactions struct {
	store TransactionStore
	pub   TransactionsPublisher

	// outdated returns the chain's maximum transaction age that still
	// produces a push. Older transactions are persisted silently so
	// backfills do not spam devices.
	outdated func(types.Chain) time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

func NewTransactions(store TransactionStore, pub TransactionsPublisher, outdated func(types.Chain) time.Duration) *Transactions {
	if outdated == nil {
		outdated = func(types.Chain) time.Duration { return time.Hour }
	}
	return &Transactions{store: store, pub: pub, outdated: outdated, now: time.Now}
}

// Handle processes one transactions batch. It is idempotent: re-delivery
// upserts the same rows and re-sends at most the same notifications.
func (c *Transactions) Handle(ctx context.Context, payload types.TransactionsPayload) error {
	addresses := mapset.NewThreadUnsafeSet[string]()
	for _, tx := range payload.Transactions {
		addresses.Append(tx.Addresses()...)
	}
	if addresses.Cardinality() == 0 {
		return nil
	}

	subs, err := c.store.GetSubscriptions(ctx, payload.Chain, addresses.ToSlice())
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	subscribed := mapset.NewThreadUnsafeSet[string]()
	for _, sub := range subs {
		subscribed.Add(sub.Address)
	}
	matched := make([]types.Transaction, 0, len(payload.Transactions))
	for _, tx := range payload.Transactions {
		if subscribed.ContainsAny(tx.Addresses()...) {
			matched = append(matched, tx)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	matchedTxsMeter.Mark(int64(len(matched)))

	// Unknown assets block the insert's foreign guard, so resolution is
	// requested before storing. The batch is redelivered until the assets
	// exist.
	if err := c.requestMissingAssets(ctx, matched); err != nil {
		return err
	}
	if err := c.store.AddTransactions(ctx, matched); err != nil {
		return err
	}
	storedTxsMeter.Mark(int64(len(matched)))

	notifications, err := c.buildNotifications(ctx, payload.Chain, subs, matched)
	if err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}
	log.Debug("Dispatching notifications", "chain", payload.Chain, "block", payload.Block, "count", len(notifications))
	return c.pub.PublishNotifications(ctx, types.NotificationsPayload{Notifications: notifications})
}

func (c *Transactions) requestMissingAssets(ctx context.Context, txs []types.Transaction) error {
	var ids []types.AssetID
	for _, tx := range txs {
		ids = append(ids, tx.AssetIDs()...)
	}
	missing, err := c.store.MissingAssets(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	missingAssetMeter.Mark(int64(len(missing)))
	keys := make([]string, len(missing))
	for i, id := range missing {
		keys[i] = id.String()
	}
	return c.pub.PublishFetchAssets(ctx, types.FetchAssetsPayload{AssetIDs: keys})
}

// buildNotifications projects each matched transaction onto each subscriber,
// fixing the direction per observer and formatting the amount from asset
// metadata.
func (c *Transactions) buildNotifications(ctx context.Context, chain types.Chain, subs []types.Subscription, txs []types.Transaction) ([]types.PushMessage, error) {
	assetIDs := mapset.NewThreadUnsafeSet[types.AssetID]()
	for _, tx := range txs {
		assetIDs.Add(tx.AssetID)
	}
	assets, err := c.store.GetAssets(ctx, assetIDs.ToSlice())
	if err != nil {
		return nil, err
	}
	byID := make(map[types.AssetID]types.Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}

	// One observer is one (device, wallet) pair; its address set decides
	// the transaction's direction.
	type observerKey struct {
		deviceID    int64
		walletIndex int32
	}
	observers := make(map[observerKey][]string)
	var order []observerKey
	for _, sub := range subs {
		key := observerKey{sub.DeviceID, sub.WalletIndex}
		if _, ok := observers[key]; !ok {
			order = append(order, key)
		}
		observers[key] = append(observers[key], sub.Address)
	}

	cutoff := c.now().Add(-c.outdated(chain))
	var out []types.PushMessage
	for _, tx := range txs {
		if tx.CreatedAt.Before(cutoff) {
			outdatedTxsMeter.Mark(1)
			continue
		}
		for _, key := range order {
			addrs := observers[key]
			if !touchesAny(tx, addrs) {
				continue
			}
			projected := tx.Finalize(addrs)
			title, message := formatPush(projected, byID[tx.AssetID])
			out = append(out, types.PushMessage{
				DeviceID:    key.deviceID,
				WalletIndex: key.walletIndex,
				Title:       title,
				Message:     message,
				Data: map[string]string{
					"transactionId": tx.ID,
					"assetId":       tx.AssetID.String(),
					"direction":     string(projected.Direction),
				},
			})
		}
	}
	return out, nil
}

func touchesAny(tx types.Transaction, addrs []string) bool {
	touched := mapset.NewThreadUnsafeSet(tx.Addresses()...)
	return touched.ContainsAny(addrs...)
}

func formatPush(tx types.Transaction, asset types.Asset) (title, message string) {
	symbol := asset.Symbol
	if symbol == "" {
		symbol = tx.AssetID.String()
	}
	amount := FormatAmount(tx.Value, asset.Decimals)
	switch tx.Direction {
	case types.DirectionOutgoing:
		return "Transfer sent", fmt.Sprintf("-%s %s", amount, symbol)
	case types.DirectionSelf:
		return "Transfer", fmt.Sprintf("%s %s", amount, symbol)
	default:
		return "Transfer received", fmt.Sprintf("+%s %s", amount, symbol)
	}
}
