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

// Package solana implements the chain provider for Solana over JSON-RPC.
package solana

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

const tokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// Slot-skipped error codes; a skipped slot carries no transactions.
var skippedSlotCodes = map[int]bool{-32007: true, -32009: true}

type Provider struct {
	client *rpc.Client
}

func New(url string) (*Provider, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial solana: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Chain() types.Chain {
	return types.Solana
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var slot uint64
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &slot, "getSlot", map[string]any{"commitment": "finalized"})
	})
	return slot, err
}

type rpcBlock struct {
	BlockTime    int64            `json:"blockTime"`
	Transactions []rpcTransaction `json:"transactions"`
}

type rpcTransaction struct {
	Meta        rpcMeta        `json:"meta"`
	Transaction rpcTransacting `json:"transaction"`
}

type rpcTransacting struct {
	Signatures []string   `json:"signatures"`
	Message    rpcMessage `json:"message"`
}

type rpcMessage struct {
	Instructions []rpcInstruction `json:"instructions"`
}

type rpcInstruction struct {
	Program string       `json:"program"`
	Parsed  *rpcParsedIx `json:"parsed"`
}

type rpcParsedIx struct {
	Type string `json:"type"`
	Info struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Authority   string `json:"authority"`
		Lamports    uint64 `json:"lamports"`
		Mint        string `json:"mint"`
		TokenAmount struct {
			Amount string `json:"amount"`
		} `json:"tokenAmount"`
	} `json:"info"`
}

type rpcMeta struct {
	Err               any               `json:"err"`
	Fee               uint64            `json:"fee"`
	PreTokenBalances  []rpcTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []rpcTokenBalance `json:"postTokenBalances"`
}

type rpcTokenBalance struct {
	Mint          string `json:"mint"`
	Owner         string `json:"owner"`
	UITokenAmount struct {
		Amount string `json:"amount"`
	} `json:"uiTokenAmount"`
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var blk *rpcBlock
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &blk, "getBlock", block, map[string]any{
			"encoding":                       "jsonParsed",
			"transactionDetails":             "full",
			"rewards":                        false,
			"maxSupportedTransactionVersion": 0,
		})
	})
	if err != nil {
		if rpcErr, ok := err.(rpc.Error); ok && skippedSlotCodes[rpcErr.ErrorCode()] {
			return nil, nil
		}
		return nil, err
	}
	if blk == nil {
		return nil, nil
	}

	var out []types.Transaction
	for _, tx := range blk.Transactions {
		out = append(out, parseTransaction(tx, block, blk.BlockTime)...)
	}
	return out, nil
}

// parseTransaction extracts system transfers and SPL token transfers from one
// parsed transaction.
func parseTransaction(tx rpcTransaction, slot uint64, blockTime int64) []types.Transaction {
	if len(tx.Transaction.Signatures) == 0 {
		return nil
	}
	hash := tx.Transaction.Signatures[0]
	state := types.StateConfirmed
	if tx.Meta.Err != nil {
		state = types.StateFailed
	}
	base := types.Transaction{
		Type:        types.TypeTransfer,
		State:       state,
		BlockNumber: slot,
		Fee:         strconv.FormatUint(tx.Meta.Fee, 10),
		FeeAssetID:  types.NewAssetID(types.Solana),
		CreatedAt:   time.Unix(blockTime, 0).UTC(),
	}

	var out []types.Transaction
	for _, ix := range tx.Transaction.Message.Instructions {
		if ix.Parsed == nil {
			continue
		}
		switch {
		case ix.Program == "system" && ix.Parsed.Type == "transfer":
			t := base
			t.AssetID = types.NewAssetID(types.Solana)
			t.From = ix.Parsed.Info.Source
			t.To = ix.Parsed.Info.Destination
			t.Value = strconv.FormatUint(ix.Parsed.Info.Lamports, 10)
			out = append(out, types.NewTransaction(types.Solana, hash, t))
		case ix.Program == "spl-token" && (ix.Parsed.Type == "transferChecked" || ix.Parsed.Type == "transfer"):
			if state != types.StateConfirmed {
				continue
			}
			mint := ix.Parsed.Info.Mint
			from := ix.Parsed.Info.Authority
			if from == "" {
				from = ix.Parsed.Info.Source
			}
			to, ok := tokenRecipient(tx.Meta, mint, from)
			if !ok || mint == "" {
				continue
			}
			t := base
			t.AssetID = types.AssetID{Chain: types.Solana, TokenID: mint}
			t.From = from
			t.To = to
			t.Value = ix.Parsed.Info.TokenAmount.Amount
			out = append(out, types.NewTransaction(types.Solana, hash, t))
		}
	}
	return out
}

// tokenRecipient resolves the owner whose balance of mint increased. Parsed
// instructions name token accounts, not owners, so the answer lives in the
// balance deltas.
func tokenRecipient(meta rpcMeta, mint, sender string) (string, bool) {
	pre := make(map[string]uint64)
	for _, b := range meta.PreTokenBalances {
		if b.Mint == mint {
			amount, _ := strconv.ParseUint(b.UITokenAmount.Amount, 10, 64)
			pre[b.Owner] += amount
		}
	}
	for _, b := range meta.PostTokenBalances {
		if b.Mint != mint || b.Owner == sender {
			continue
		}
		amount, _ := strconv.ParseUint(b.UITokenAmount.Amount, 10, 64)
		if amount > pre[b.Owner] {
			return b.Owner, true
		}
	}
	return "", false
}

type rpcAccountInfo struct {
	Value *struct {
		Data struct {
			Parsed struct {
				Type string `json:"type"`
				Info struct {
					Decimals int32 `json:"decimals"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"value"`
}

// GetTokenData resolves mint decimals. Symbol and name live off-chain in the
// token metadata program and are enriched by the assets service.
func (p *Provider) GetTokenData(ctx context.Context, tokenID string) (types.Asset, error) {
	var info rpcAccountInfo
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &info, "getAccountInfo", tokenID, map[string]any{"encoding": "jsonParsed"})
	})
	if err != nil {
		return types.Asset{}, err
	}
	if info.Value == nil || info.Value.Data.Parsed.Type != "mint" {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	return types.Asset{
		ID:       types.AssetID{Chain: types.Solana, TokenID: tokenID},
		Decimals: info.Value.Data.Parsed.Info.Decimals,
		Type:     types.AssetTypeSPL,
	}, nil
}

type rpcBalance struct {
	Value uint64 `json:"value"`
}

type rpcTokenAccounts struct {
	Value []struct {
		Account struct {
			Data struct {
				Parsed struct {
					Info struct {
						Mint        string `json:"mint"`
						TokenAmount struct {
							Amount string `json:"amount"`
						} `json:"tokenAmount"`
					} `json:"info"`
				} `json:"parsed"`
			} `json:"data"`
		} `json:"account"`
	} `json:"value"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var native rpcBalance
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &native, "getBalance", address)
	})
	if err != nil {
		return nil, err
	}
	balances := []types.AssetBalance{
		{AssetID: types.NewAssetID(types.Solana), Balance: strconv.FormatUint(native.Value, 10)},
	}

	var accounts rpcTokenAccounts
	err = chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &accounts, "getTokenAccountsByOwner", address,
			map[string]any{"programId": tokenProgram},
			map[string]any{"encoding": "jsonParsed"})
	})
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts.Value {
		info := acc.Account.Data.Parsed.Info
		if info.Mint == "" {
			continue
		}
		balances = append(balances, types.AssetBalance{
			AssetID: types.AssetID{Chain: types.Solana, TokenID: info.Mint},
			Balance: info.TokenAmount.Amount,
		})
	}
	return balances, nil
}

type rpcSignature struct {
	Signature string `json:"signature"`
}

type rpcTransactionResult struct {
	Slot        uint64         `json:"slot"`
	BlockTime   int64          `json:"blockTime"`
	Meta        rpcMeta        `json:"meta"`
	Transaction rpcTransacting `json:"transaction"`
}

// GetTransactionsByAddress returns up to ten recent transactions touching the
// address, used for subscription bootstrap.
func (p *Provider) GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error) {
	var sigs []rpcSignature
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &sigs, "getSignaturesForAddress", address, map[string]any{"limit": 10})
	})
	if err != nil {
		return nil, err
	}
	var out []types.Transaction
	for _, sig := range sigs {
		var res *rpcTransactionResult
		err := chain.Retry(ctx, func(ctx context.Context) error {
			return p.client.CallContext(ctx, &res, "getTransaction", sig.Signature, map[string]any{
				"encoding":                       "jsonParsed",
				"maxSupportedTransactionVersion": 0,
			})
		})
		if err != nil || res == nil {
			continue
		}
		out = append(out, parseTransaction(rpcTransaction{Meta: res.Meta, Transaction: res.Transaction}, res.Slot, res.BlockTime)...)
	}
	return out, nil
}

func (p *Provider) Broadcast(ctx context.Context, data string) (string, error) {
	var signature string
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &signature, "sendTransaction", data, map[string]any{"encoding": "base64"})
	})
	return signature, err
}
