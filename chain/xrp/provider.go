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

// Package xrp implements the chain provider for the XRP Ledger.
package xrp

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

// rippleEpochOffset converts ledger close times (seconds since 2000-01-01)
// to Unix time.
const rippleEpochOffset = 946684800

type Provider struct {
	client *chain.Client
}

func New(url string) *Provider {
	return &Provider{client: chain.NewClient(url)}
}

func (p *Provider) Chain() types.Chain {
	return types.Xrp
}

type rpcLedgerResult struct {
	LedgerIndex uint64 `json:"ledger_index"`
	Ledger      struct {
		CloseTime    int64            `json:"close_time"`
		Transactions []rpcTransaction `json:"transactions"`
	} `json:"ledger"`
}

type rpcTransaction struct {
	Hash            string          `json:"hash"`
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination"`
	DestinationTag  *uint32         `json:"DestinationTag"`
	Amount          json.RawMessage `json:"Amount"`
	Fee             string          `json:"Fee"`
	Sequence        uint64          `json:"Sequence"`
	MetaData        *rpcMeta        `json:"metaData"`
	Meta            *rpcMeta        `json:"meta"`
}

type rpcMeta struct {
	TransactionResult string `json:"TransactionResult"`
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var res rpcLedgerResult
	err := p.client.CallRPC(ctx, "ledger", []any{map[string]any{"ledger_index": "validated"}}, &res)
	if err != nil {
		return 0, err
	}
	return res.LedgerIndex, nil
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var res rpcLedgerResult
	err := p.client.CallRPC(ctx, "ledger", []any{map[string]any{
		"ledger_index": block,
		"transactions": true,
		"expand":       true,
	}}, &res)
	if err != nil {
		return nil, err
	}
	closeTime := time.Unix(res.Ledger.CloseTime+rippleEpochOffset, 0).UTC()

	var out []types.Transaction
	for _, tx := range res.Ledger.Transactions {
		if mapped, ok := mapTransaction(tx, block, closeTime); ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

func mapTransaction(tx rpcTransaction, block uint64, closeTime time.Time) (types.Transaction, bool) {
	if tx.TransactionType != "Payment" {
		return types.Transaction{}, false
	}
	// Native payments carry the amount in drops as a JSON string; issued
	// currency payments carry an object and are skipped.
	var drops string
	if err := json.Unmarshal(tx.Amount, &drops); err != nil {
		return types.Transaction{}, false
	}

	state := types.StateConfirmed
	meta := tx.MetaData
	if meta == nil {
		meta = tx.Meta
	}
	if meta != nil && meta.TransactionResult != "tesSUCCESS" {
		state = types.StateFailed
	}
	var memo string
	if tx.DestinationTag != nil {
		memo = strconv.FormatUint(uint64(*tx.DestinationTag), 10)
	}

	native := types.NewAssetID(types.Xrp)
	return types.NewTransaction(types.Xrp, tx.Hash, types.Transaction{
		AssetID:     native,
		From:        tx.Account,
		To:          tx.Destination,
		Memo:        memo,
		Type:        types.TypeTransfer,
		State:       state,
		BlockNumber: block,
		Sequence:    tx.Sequence,
		Fee:         tx.Fee,
		FeeAssetID:  native,
		Value:       drops,
		CreatedAt:   closeTime,
	}), true
}

type rpcAccountInfo struct {
	AccountData struct {
		Balance string `json:"Balance"`
	} `json:"account_data"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var res rpcAccountInfo
	err := p.client.CallRPC(ctx, "account_info", []any{map[string]any{
		"account":      address,
		"ledger_index": "validated",
	}}, &res)
	if err != nil {
		return nil, err
	}
	return []types.AssetBalance{
		{AssetID: types.NewAssetID(types.Xrp), Balance: res.AccountData.Balance},
	}, nil
}

type rpcAccountTx struct {
	Transactions []struct {
		Tx   rpcTransaction `json:"tx"`
		Meta rpcMeta        `json:"meta"`
	} `json:"transactions"`
}

func (p *Provider) GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error) {
	var res rpcAccountTx
	err := p.client.CallRPC(ctx, "account_tx", []any{map[string]any{
		"account": address,
		"limit":   20,
	}}, &res)
	if err != nil {
		return nil, err
	}
	var out []types.Transaction
	for _, entry := range res.Transactions {
		tx := entry.Tx
		meta := entry.Meta
		tx.Meta = &meta
		if mapped, ok := mapTransaction(tx, 0, time.Now().UTC()); ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

type rpcSubmitResult struct {
	TxJSON struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

func (p *Provider) Broadcast(ctx context.Context, data string) (string, error) {
	var res rpcSubmitResult
	err := p.client.CallRPC(ctx, "submit", []any{map[string]any{"tx_blob": data}}, &res)
	if err != nil {
		return "", err
	}
	return res.TxJSON.Hash, nil
}
