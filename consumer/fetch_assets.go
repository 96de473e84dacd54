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
	"errors"

	"github.com/ethereum/go-ethereum/log"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

// AssetStore persists resolved asset metadata.
type AssetStore interface {
	AddAssets(ctx context.Context, assets []types.Asset) error
}

// FetchAssets resolves on-chain metadata for assets first seen in a
// transaction or balance.
type FetchAssets struct {
	providers map[types.Chain]chain.Provider
	store     AssetStore
}

func NewFetchAssets(providers map[types.Chain]chain.Provider, store AssetStore) *FetchAssets {
	return &FetchAssets{providers: providers, store: store}
}

// Handle resolves each requested asset. Invalid ids and unknown tokens are
// skipped so one bad id cannot poison the batch; transient provider errors
// fail the batch for redelivery.
func (c *FetchAssets) Handle(ctx context.Context, payload types.FetchAssetsPayload) error {
	var resolved []types.Asset
	for _, raw := range payload.AssetIDs {
		id, err := types.ParseAssetID(raw)
		if err != nil {
			log.Warn("Skipping invalid asset id", "id", raw, "err", err)
			continue
		}
		if id.IsNative() {
			resolved = append(resolved, id.Chain.NativeAsset())
			continue
		}
		provider, ok := c.providers[id.Chain].(chain.TokenProvider)
		if !ok {
			continue
		}
		asset, err := provider.GetTokenData(ctx, id.TokenID)
		if err != nil {
			if errors.Is(err, chain.ErrTokenNotFound) {
				log.Warn("Token not found", "id", raw)
				continue
			}
			return err
		}
		asset.ID = id
		resolved = append(resolved, asset)
	}
	if len(resolved) == 0 {
		return nil
	}
	return c.store.AddAssets(ctx, resolved)
}
