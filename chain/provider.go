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

// Package chain abstracts the RPC surface of every supported blockchain
// behind one capability set, with a shared retry and rate-limit policy.
package chain

import (
	"context"
	"errors"

	"github.com/helix-wallet/walletd/types"
)

var (
	// ErrTokenNotFound is returned by GetTokenData for unknown token ids.
	ErrTokenNotFound = errors.New("token not found")

	// ErrUnsupportedChain is returned by the registry for chains without a
	// provider implementation. Treated as configuration: no tasks start.
	ErrUnsupportedChain = errors.New("unsupported chain")
)

// Provider is the minimum capability required to index a chain.
type Provider interface {
	Chain() types.Chain

	// LatestBlock returns the chain's current tip.
	LatestBlock(ctx context.Context) (uint64, error)

	// GetTransactions returns all relevant transactions at a height,
	// normalized to the common model.
	GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error)
}

// TokenProvider resolves on-chain token metadata.
type TokenProvider interface {
	GetTokenData(ctx context.Context, tokenID string) (types.Asset, error)
}

// BalanceProvider enumerates native and token balances of an address.
type BalanceProvider interface {
	GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error)
}

// HistoryProvider returns bounded recent history for an address, used to
// bootstrap newly subscribed addresses.
type HistoryProvider interface {
	GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error)
}

// Broadcaster submits a signed transaction and returns its hash.
type Broadcaster interface {
	Broadcast(ctx context.Context, data string) (string, error)
}

// NFTProvider enumerates NFT assets held by an address. Implementations live
// behind external metadata services and are wired only when configured.
type NFTProvider interface {
	GetNFTAssets(ctx context.Context, chain types.Chain, address string) ([]types.Asset, error)
}
