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

// Package registry maps chains to provider implementations. A chain without
// a provider family is configuration, not an error: no tasks are started
// for it.
package registry

import (
	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/chain/bitcoin"
	"github.com/helix-wallet/walletd/chain/cosmos"
	"github.com/helix-wallet/walletd/chain/evm"
	"github.com/helix-wallet/walletd/chain/near"
	"github.com/helix-wallet/walletd/chain/solana"
	"github.com/helix-wallet/walletd/chain/tron"
	"github.com/helix-wallet/walletd/chain/xrp"
	"github.com/helix-wallet/walletd/types"
)

// New builds the provider for one chain from its RPC endpoint.
func New(c types.Chain, url string) (chain.Provider, error) {
	switch c.Type() {
	case types.TypeEthereum:
		return evm.New(c, url)
	case types.TypeSolana:
		return solana.New(url)
	case types.TypeUTXO:
		return bitcoin.New(c, url), nil
	case types.TypeCosmos:
		return cosmos.New(c, url)
	case types.TypeTron:
		return tron.New(url), nil
	case types.TypeNear:
		return near.New(url), nil
	case types.TypeXrp:
		return xrp.New(url), nil
	default:
		return nil, chain.ErrUnsupportedChain
	}
}

// Build constructs providers for every configured chain, skipping chains
// whose family has no implementation.
func Build(endpoints map[types.Chain]string) (map[types.Chain]chain.Provider, error) {
	providers := make(map[types.Chain]chain.Provider, len(endpoints))
	for c, url := range endpoints {
		provider, err := New(c, url)
		if err == chain.ErrUnsupportedChain {
			continue
		}
		if err != nil {
			return nil, err
		}
		providers[c] = provider
	}
	return providers, nil
}
