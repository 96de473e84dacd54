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

package consumer

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

// AssociationStore is the persistence surface of the association consumers.
type AssociationStore interface {
	AddAssetsAddresses(ctx context.Context, associations []types.AssetAddress) error
	MissingAssets(ctx context.Context, ids []types.AssetID) ([]types.AssetID, error)
}

// AssociationsPublisher is the stream surface of the association consumers.
type AssociationsPublisher interface {
	PublishFetchAssets(ctx context.Context, payload types.FetchAssetsPayload) error
	PublishBlockTransactions(ctx context.Context, payload types.TransactionsPayload) error
}

// Associations bootstraps newly subscribed addresses: it discovers which
// assets an address holds and republishes its recent history. A chain missing
// from providers, or a provider missing a capability, is a silent no-op.
type Associations struct {
	providers map[types.Chain]chain.Provider
	store     AssociationStore
	pub       AssociationsPublisher
}

func NewAssociations(providers map[types.Chain]chain.Provider, store AssociationStore, pub AssociationsPublisher) *Associations {
	return &Associations{providers: providers, store: store, pub: pub}
}

// HandleTokens records every token the address holds a balance of and
// requests metadata for the unknown ones.
func (c *Associations) HandleTokens(ctx context.Context, payload types.ChainAddressPayload) error {
	provider, ok := c.providers[payload.Chain].(chain.BalanceProvider)
	if !ok {
		return nil
	}
	balances, err := provider.GetAssetsBalances(ctx, payload.Address)
	if err != nil {
		return err
	}

	var associations []types.AssetAddress
	var ids []types.AssetID
	for _, b := range balances {
		if b.AssetID.IsNative() || b.Balance == "" || b.Balance == "0" {
			continue
		}
		associations = append(associations, types.AssetAddress{
			AssetID: b.AssetID,
			Address: payload.Address,
			Chain:   payload.Chain,
		})
		ids = append(ids, b.AssetID)
	}
	if len(associations) == 0 {
		return nil
	}
	if err := c.store.AddAssetsAddresses(ctx, associations); err != nil {
		return err
	}
	return c.requestMissing(ctx, ids)
}

// HandleCoins records the native-coin association for the address.
func (c *Associations) HandleCoins(ctx context.Context, payload types.ChainAddressPayload) error {
	return c.store.AddAssetsAddresses(ctx, []types.AssetAddress{{
		AssetID: types.NewAssetID(payload.Chain),
		Address: payload.Address,
		Chain:   payload.Chain,
	}})
}

// HandleNFTs records NFT holdings when an NFT source is configured for the
// chain.
func (c *Associations) HandleNFTs(ctx context.Context, payload types.ChainAddressPayload) error {
	provider, ok := c.providers[payload.Chain].(chain.NFTProvider)
	if !ok {
		return nil
	}
	assets, err := provider.GetNFTAssets(ctx, payload.Chain, payload.Address)
	if err != nil {
		return err
	}
	associations := make([]types.AssetAddress, 0, len(assets))
	for _, a := range assets {
		associations = append(associations, types.AssetAddress{
			AssetID: a.ID,
			Address: payload.Address,
			Chain:   payload.Chain,
		})
	}
	if len(associations) == 0 {
		return nil
	}
	return c.store.AddAssetsAddresses(ctx, associations)
}

// HandleAddressTransactions backfills a new address's recent history by
// republishing it into the chain's block queue, so the transactions consumer
// handles bootstrap batches exactly like live blocks. Block zero marks
// bootstrap batches.
func (c *Associations) HandleAddressTransactions(ctx context.Context, payload types.ChainAddressPayload) error {
	provider, ok := c.providers[payload.Chain].(chain.HistoryProvider)
	if !ok {
		return nil
	}
	txs, err := provider.GetTransactionsByAddress(ctx, payload.Address)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		return nil
	}
	log.Debug("Bootstrapping address history", "chain", payload.Chain, "address", payload.Address, "txs", len(txs))
	return c.pub.PublishBlockTransactions(ctx, types.TransactionsPayload{
		Chain:        payload.Chain,
		Block:        0,
		Transactions: txs,
	})
}

func (c *Associations) requestMissing(ctx context.Context, ids []types.AssetID) error {
	missing, err := c.store.MissingAssets(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	keys := make([]string, len(missing))
	for i, id := range missing {
		keys[i] = id.String()
	}
	return c.pub.PublishFetchAssets(ctx, types.FetchAssetsPayload{AssetIDs: keys})
}
