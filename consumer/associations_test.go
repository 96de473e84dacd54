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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

type fakeAssocStore struct {
	associations []types.AssetAddress
	missing      []types.AssetID
}

func (f *fakeAssocStore) AddAssetsAddresses(ctx context.Context, associations []types.AssetAddress) error {
	f.associations = append(f.associations, associations...)
	return nil
}

func (f *fakeAssocStore) MissingAssets(ctx context.Context, ids []types.AssetID) ([]types.AssetID, error) {
	return f.missing, nil
}

type fakeBalanceProvider struct {
	chain    types.Chain
	balances []types.AssetBalance
	history  []types.Transaction
}

func (f *fakeBalanceProvider) Chain() types.Chain { return f.chain }

func (f *fakeBalanceProvider) LatestBlock(ctx context.Context) (uint64, error) { return 0, nil }

func (f *fakeBalanceProvider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	return nil, nil
}

func (f *fakeBalanceProvider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	return f.balances, nil
}

func (f *fakeBalanceProvider) GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error) {
	return f.history, nil
}

func TestHandleTokensRecordsHoldings(t *testing.T) {
	usdc, err := types.NewTokenAssetID(types.Ethereum, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)

	provider := &fakeBalanceProvider{
		chain: types.Ethereum,
		balances: []types.AssetBalance{
			{AssetID: types.NewAssetID(types.Ethereum), Balance: "100"},
			{AssetID: usdc, Balance: "5000000"},
			{AssetID: usdc, Balance: "0"},
		},
	}
	store := &fakeAssocStore{missing: []types.AssetID{usdc}}
	pub := &fakeTxPublisher{}
	c := NewAssociations(map[types.Chain]chain.Provider{types.Ethereum: provider}, store, pub)

	payload := types.ChainAddressPayload{Chain: types.Ethereum, Address: "0xHolder"}
	require.NoError(t, c.HandleTokens(context.Background(), payload))

	// Native and zero balances are skipped.
	require.Len(t, store.associations, 1)
	assert.Equal(t, usdc, store.associations[0].AssetID)
	assert.Equal(t, "0xHolder", store.associations[0].Address)

	require.Len(t, pub.fetchAssets, 1)
	assert.Equal(t, []string{usdc.String()}, pub.fetchAssets[0].AssetIDs)
}

func TestHandleTokensUnknownChainIsNoop(t *testing.T) {
	store := &fakeAssocStore{}
	c := NewAssociations(map[types.Chain]chain.Provider{}, store, &fakeTxPublisher{})

	payload := types.ChainAddressPayload{Chain: types.Ton, Address: "addr"}
	require.NoError(t, c.HandleTokens(context.Background(), payload))
	assert.Empty(t, store.associations)
}

func TestHandleCoinsRecordsNativeRow(t *testing.T) {
	store := &fakeAssocStore{}
	c := NewAssociations(nil, store, &fakeTxPublisher{})

	payload := types.ChainAddressPayload{Chain: types.Bitcoin, Address: "bc1qaddr"}
	require.NoError(t, c.HandleCoins(context.Background(), payload))

	require.Len(t, store.associations, 1)
	assert.Equal(t, types.NewAssetID(types.Bitcoin), store.associations[0].AssetID)
}

func TestHandleAddressTransactionsRepublishesHistory(t *testing.T) {
	provider := &fakeBalanceProvider{
		chain:   types.Ethereum,
		history: []types.Transaction{ethTransfer("0xaaa", "0xHolder", "0xOther", "1", time.Now())},
	}
	pub := &fakeTxPublisher{}
	c := NewAssociations(map[types.Chain]chain.Provider{types.Ethereum: provider}, &fakeAssocStore{}, pub)

	payload := types.ChainAddressPayload{Chain: types.Ethereum, Address: "0xHolder"}
	require.NoError(t, c.HandleAddressTransactions(context.Background(), payload))

	require.Len(t, pub.transactions, 1)
	assert.EqualValues(t, 0, pub.transactions[0].Block)
	assert.Len(t, pub.transactions[0].Transactions, 1)
}
