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

// Package bitcoin implements the chain provider for the UTXO family
// (bitcoin, litecoin, dogecoin) over the Blockbook API.
package bitcoin

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

type Provider struct {
	chain  types.Chain
	client *chain.Client
}

func New(c types.Chain, url string) *Provider {
	return &Provider{chain: c, client: chain.NewClient(url)}
}

func (p *Provider) Chain() types.Chain {
	return p.chain
}

type apiStatus struct {
	Blockbook struct {
		BestHeight uint64 `json:"bestHeight"`
	} `json:"blockbook"`
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var status apiStatus
	if err := p.client.Get(ctx, "/api/v2", &status); err != nil {
		return 0, err
	}
	return status.Blockbook.BestHeight, nil
}

type apiBlock struct {
	Txs []apiTransaction `json:"txs"`
}

type apiTransaction struct {
	Txid        string   `json:"txid"`
	Vin         []apiVio `json:"vin"`
	Vout        []apiVio `json:"vout"`
	Fees        string   `json:"fees"`
	BlockHeight uint64   `json:"blockHeight"`
	BlockTime   int64    `json:"blockTime"`
}

type apiVio struct {
	Addresses []string `json:"addresses"`
	Value     string   `json:"value"`
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var blk apiBlock
	if err := p.client.Get(ctx, fmt.Sprintf("/api/v2/block/%d", block), &blk); err != nil {
		return nil, err
	}
	var out []types.Transaction
	for _, tx := range blk.Txs {
		if mapped, ok := mapTransaction(p.chain, tx); ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

// mapTransaction turns a Blockbook transaction into the common model. The
// nominal recipient is the first output paying an address that is not one of
// the inputs; the full input/output sets are kept for per-observer direction.
func mapTransaction(c types.Chain, tx apiTransaction) (types.Transaction, bool) {
	inputs := make([]types.UTXO, 0, len(tx.Vin))
	inputAddrs := make(map[string]bool)
	for _, in := range tx.Vin {
		if len(in.Addresses) == 0 {
			continue
		}
		inputs = append(inputs, types.UTXO{Address: in.Addresses[0], Value: in.Value})
		inputAddrs[in.Addresses[0]] = true
	}
	if len(inputs) == 0 {
		return types.Transaction{}, false // coinbase
	}

	outputs := make([]types.UTXO, 0, len(tx.Vout))
	var to, value string
	for _, o := range tx.Vout {
		if len(o.Addresses) == 0 {
			continue
		}
		outputs = append(outputs, types.UTXO{Address: o.Addresses[0], Value: o.Value})
		if to == "" && !inputAddrs[o.Addresses[0]] {
			to = o.Addresses[0]
			value = o.Value
		}
	}
	if len(outputs) == 0 {
		return types.Transaction{}, false
	}
	if to == "" {
		// Consolidation back to the sender.
		to = outputs[0].Address
		value = outputs[0].Value
	}

	native := types.NewAssetID(c)
	return types.NewTransaction(c, tx.Txid, types.Transaction{
		AssetID:     native,
		From:        inputs[0].Address,
		To:          to,
		Type:        types.TypeTransfer,
		State:       types.StateConfirmed,
		BlockNumber: tx.BlockHeight,
		Fee:         tx.Fees,
		FeeAssetID:  native,
		Value:       value,
		CreatedAt:   time.Unix(tx.BlockTime, 0).UTC(),
		UTXOInputs:  inputs,
		UTXOOutputs: outputs,
	}), true
}

type apiAddress struct {
	Balance      string           `json:"balance"`
	Transactions []apiTransaction `json:"transactions"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var res apiAddress
	if err := p.client.Get(ctx, "/api/v2/address/"+address+"?details=basic", &res); err != nil {
		return nil, err
	}
	if _, ok := new(big.Int).SetString(res.Balance, 10); !ok {
		return nil, fmt.Errorf("malformed balance %q for %s", res.Balance, address)
	}
	return []types.AssetBalance{
		{AssetID: types.NewAssetID(p.chain), Balance: res.Balance},
	}, nil
}

func (p *Provider) GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error) {
	var res apiAddress
	if err := p.client.Get(ctx, "/api/v2/address/"+address+"?details=txs&pageSize=20", &res); err != nil {
		return nil, err
	}
	var out []types.Transaction
	for _, tx := range res.Transactions {
		if mapped, ok := mapTransaction(p.chain, tx); ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

type apiSendResult struct {
	Result string `json:"result"`
}

func (p *Provider) Broadcast(ctx context.Context, data string) (string, error) {
	var res apiSendResult
	if err := p.client.Get(ctx, "/api/v2/sendtx/"+data, &res); err != nil {
		return "", err
	}
	return res.Result, nil
}
