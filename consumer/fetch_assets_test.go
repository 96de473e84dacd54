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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

type fakeAssetStore struct {
	added []types.Asset
}

func (f *fakeAssetStore) AddAssets(ctx context.Context, assets []types.Asset) error {
	f.added = append(f.added, assets...)
	return nil
}

type fakeTokenProvider struct {
	fakeBalanceProvider
	tokens map[string]types.Asset
}

func (f *fakeTokenProvider) GetTokenData(ctx context.Context, tokenID string) (types.Asset, error) {
	asset, ok := f.tokens[tokenID]
	if !ok {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	return asset, nil
}

func TestFetchAssetsResolvesTokens(t *testing.T) {
	const usdcContract = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	provider := &fakeTokenProvider{
		fakeBalanceProvider: fakeBalanceProvider{chain: types.Ethereum},
		tokens: map[string]types.Asset{
			usdcContract: {Name: "USD Coin", Symbol: "USDC", Decimals: 6, Type: types.AssetTypeERC20},
		},
	}
	store := &fakeAssetStore{}
	c := NewFetchAssets(map[types.Chain]chain.Provider{types.Ethereum: provider}, store)

	payload := types.FetchAssetsPayload{AssetIDs: []string{
		"ethereum_" + usdcContract,
		"ethereum",
		"ethereum_0xbad",
		"not-a-chain_x",
	}}
	require.NoError(t, c.Handle(context.Background(), payload))

	require.Len(t, store.added, 2)
	assert.Equal(t, "USDC", store.added[0].Symbol)
	assert.Equal(t, "ethereum_"+usdcContract, store.added[0].ID.String())
	assert.Equal(t, "ETH", store.added[1].Symbol)
}

func TestFetchAssetsUnknownTokenSkipped(t *testing.T) {
	provider := &fakeTokenProvider{
		fakeBalanceProvider: fakeBalanceProvider{chain: types.Ethereum},
		tokens:              map[string]types.Asset{},
	}
	store := &fakeAssetStore{}
	c := NewFetchAssets(map[types.Chain]chain.Provider{types.Ethereum: provider}, store)

	payload := types.FetchAssetsPayload{AssetIDs: []string{"ethereum_0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"}}
	require.NoError(t, c.Handle(context.Background(), payload))
	assert.Empty(t, store.added)
}
