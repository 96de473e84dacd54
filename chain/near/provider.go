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

// Package near implements the chain provider for NEAR over JSON-RPC with
// named params.
package near

import (
	"context"
	"time"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

type Provider struct {
	client *chain.Client
}

func New(url string) *Provider {
	return &Provider{client: chain.NewClient(url)}
}

func (p *Provider) Chain() types.Chain {
	return types.Near
}

type rpcBlock struct {
	Header struct {
		Height    uint64 `json:"height"`
		Timestamp int64  `json:"timestamp"` // nanoseconds
	} `json:"header"`
	Chunks []struct {
		ChunkHash string `json:"chunk_hash"`
	} `json:"chunks"`
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var blk rpcBlock
	err := p.client.CallRPC(ctx, "block", map[string]any{"finality": "final"}, &blk)
	if err != nil {
		return 0, err
	}
	return blk.Header.Height, nil
}

type rpcChunk struct {
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcTransaction struct {
	Hash       string      `json:"hash"`
	SignerID   string      `json:"signer_id"`
	ReceiverID string      `json:"receiver_id"`
	Nonce      uint64      `json:"nonce"`
	Actions    []rpcAction `json:"actions"`
}

type rpcAction struct {
	Transfer *struct {
		Deposit string `json:"deposit"`
	} `json:"Transfer"`
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var blk rpcBlock
	err := p.client.CallRPC(ctx, "block", map[string]any{"block_id": block}, &blk)
	if err != nil {
		return nil, err
	}
	blockTime := time.Unix(0, blk.Header.Timestamp).UTC()

	var out []types.Transaction
	for _, c := range blk.Chunks {
		var chunk rpcChunk
		err := p.client.CallRPC(ctx, "chunk", map[string]any{"chunk_id": c.ChunkHash}, &chunk)
		if err != nil {
			return nil, err
		}
		for _, tx := range chunk.Transactions {
			if mapped, ok := mapTransaction(tx, block, blockTime); ok {
				out = append(out, mapped)
			}
		}
	}
	return out, nil
}

func mapTransaction(tx rpcTransaction, block uint64, blockTime time.Time) (types.Transaction, bool) {
	// Plain transfers carry exactly one Transfer action.
	if len(tx.Actions) != 1 || tx.Actions[0].Transfer == nil {
		return types.Transaction{}, false
	}
	native := types.NewAssetID(types.Near)
	return types.NewTransaction(types.Near, tx.Hash, types.Transaction{
		AssetID:     native,
		From:        tx.SignerID,
		To:          tx.ReceiverID,
		Type:        types.TypeTransfer,
		State:       types.StateConfirmed,
		BlockNumber: block,
		Sequence:    tx.Nonce,
		Fee:         "0",
		FeeAssetID:  native,
		Value:       tx.Actions[0].Transfer.Deposit,
		CreatedAt:   blockTime,
	}), true
}

type rpcAccount struct {
	Amount string `json:"amount"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var account rpcAccount
	err := p.client.CallRPC(ctx, "query", map[string]any{
		"request_type": "view_account",
		"finality":     "final",
		"account_id":   address,
	}, &account)
	if err != nil {
		return nil, err
	}
	return []types.AssetBalance{
		{AssetID: types.NewAssetID(types.Near), Balance: account.Amount},
	}, nil
}

func (p *Provider) Broadcast(ctx context.Context, data string) (string, error) {
	var hash string
	err := p.client.CallRPC(ctx, "broadcast_tx_async", []any{data}, &hash)
	return hash, err
}
