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

// Package tron implements the chain provider for TRON over the node's
// HTTP API.
package tron

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

const (
	transferContract     = "TransferContract"
	triggerSmartContract = "TriggerSmartContract"
	erc20Selector        = "a9059cbb"
)

type Provider struct {
	client *chain.Client
}

func New(url string) *Provider {
	return &Provider{client: chain.NewClient(url)}
}

func (p *Provider) Chain() types.Chain {
	return types.Tron
}

type apiBlockHeader struct {
	RawData struct {
		Number    uint64 `json:"number"`
		Timestamp int64  `json:"timestamp"`
	} `json:"raw_data"`
}

type apiBlock struct {
	BlockHeader  apiBlockHeader   `json:"block_header"`
	Transactions []apiTransaction `json:"transactions"`
}

type apiTransaction struct {
	TxID string `json:"txID"`
	Ret  []struct {
		ContractRet string `json:"contractRet"`
	} `json:"ret"`
	RawData struct {
		Contract []struct {
			Type      string `json:"type"`
			Parameter struct {
				Value struct {
					OwnerAddress    string `json:"owner_address"`
					ToAddress       string `json:"to_address"`
					ContractAddress string `json:"contract_address"`
					Amount          int64  `json:"amount"`
					Data            string `json:"data"`
				} `json:"value"`
			} `json:"parameter"`
		} `json:"contract"`
	} `json:"raw_data"`
}

type apiTxInfo struct {
	ID  string `json:"id"`
	Fee int64  `json:"fee"`
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var blk apiBlock
	if err := p.client.Post(ctx, "/wallet/getnowblock", map[string]any{}, &blk); err != nil {
		return 0, err
	}
	return blk.BlockHeader.RawData.Number, nil
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var blk apiBlock
	if err := p.client.Post(ctx, "/wallet/getblockbynum", map[string]any{"num": block}, &blk); err != nil {
		return nil, err
	}
	var infos []apiTxInfo
	if err := p.client.Post(ctx, "/wallet/gettransactioninfobyblocknum", map[string]any{"num": block}, &infos); err != nil {
		return nil, err
	}
	fees := make(map[string]int64, len(infos))
	for _, info := range infos {
		fees[info.ID] = info.Fee
	}

	blockTime := time.UnixMilli(blk.BlockHeader.RawData.Timestamp).UTC()
	var out []types.Transaction
	for _, tx := range blk.Transactions {
		mapped, ok := mapTransaction(tx, block, blockTime, fees[tx.TxID])
		if ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

func mapTransaction(tx apiTransaction, block uint64, blockTime time.Time, fee int64) (types.Transaction, bool) {
	if len(tx.RawData.Contract) == 0 {
		return types.Transaction{}, false
	}
	contract := tx.RawData.Contract[0]
	value := contract.Parameter.Value

	state := types.StateConfirmed
	if len(tx.Ret) == 0 || tx.Ret[0].ContractRet != "SUCCESS" {
		state = types.StateFailed
	}
	native := types.NewAssetID(types.Tron)
	base := types.Transaction{
		Type:        types.TypeTransfer,
		State:       state,
		BlockNumber: block,
		Fee:         strconv.FormatInt(fee, 10),
		FeeAssetID:  native,
		CreatedAt:   blockTime,
	}

	switch contract.Type {
	case transferContract:
		from, err1 := hexToBase58(value.OwnerAddress)
		to, err2 := hexToBase58(value.ToAddress)
		if err1 != nil || err2 != nil {
			return types.Transaction{}, false
		}
		base.AssetID = native
		base.From = from
		base.To = to
		base.Value = strconv.FormatInt(value.Amount, 10)
	case triggerSmartContract:
		if state != types.StateConfirmed {
			return types.Transaction{}, false
		}
		if !strings.HasPrefix(value.Data, erc20Selector) || len(value.Data) < 136 {
			return types.Transaction{}, false
		}
		from, err := hexToBase58(value.OwnerAddress)
		if err != nil {
			return types.Transaction{}, false
		}
		token, err := hexToBase58(value.ContractAddress)
		if err != nil {
			return types.Transaction{}, false
		}
		// Calldata layout matches ERC-20 transfer: 4-byte selector, padded
		// recipient, uint256 amount. Tron pads the recipient with its 0x41
		// prefix at byte 11.
		to, err := hexToBase58("41" + value.Data[32:72])
		if err != nil {
			return types.Transaction{}, false
		}
		amount, ok := new(big.Int).SetString(value.Data[72:136], 16)
		if !ok {
			return types.Transaction{}, false
		}
		base.AssetID = types.AssetID{Chain: types.Tron, TokenID: token}
		base.From = from
		base.To = to
		base.Value = amount.String()
	default:
		return types.Transaction{}, false
	}
	return types.NewTransaction(types.Tron, tx.TxID, base), true
}

type apiConstantResult struct {
	ConstantResult []string `json:"constant_result"`
}

func (p *Provider) triggerConstant(ctx context.Context, contractHex, selector string) ([]byte, error) {
	var res apiConstantResult
	err := p.client.Post(ctx, "/wallet/triggerconstantcontract", map[string]any{
		"owner_address":     "410000000000000000000000000000000000000000",
		"contract_address":  contractHex,
		"function_selector": selector,
	}, &res)
	if err != nil {
		return nil, err
	}
	if len(res.ConstantResult) == 0 {
		return nil, chain.ErrTokenNotFound
	}
	return hex.DecodeString(res.ConstantResult[0])
}

func (p *Provider) GetTokenData(ctx context.Context, tokenID string) (types.Asset, error) {
	contractHex, err := base58ToHex(tokenID)
	if err != nil {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	nameRaw, err := p.triggerConstant(ctx, contractHex, "name()")
	if err != nil {
		return types.Asset{}, err
	}
	symbolRaw, err := p.triggerConstant(ctx, contractHex, "symbol()")
	if err != nil {
		return types.Asset{}, err
	}
	decimalsRaw, err := p.triggerConstant(ctx, contractHex, "decimals()")
	if err != nil {
		return types.Asset{}, err
	}
	if len(decimalsRaw) == 0 {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	name, err := decodeString(nameRaw)
	if err != nil {
		return types.Asset{}, fmt.Errorf("token %s name: %w", tokenID, err)
	}
	symbol, err := decodeString(symbolRaw)
	if err != nil {
		return types.Asset{}, fmt.Errorf("token %s symbol: %w", tokenID, err)
	}
	return types.Asset{
		ID:       types.AssetID{Chain: types.Tron, TokenID: tokenID},
		Name:     name,
		Symbol:   symbol,
		Decimals: int32(new(big.Int).SetBytes(decimalsRaw).Int64()),
		Type:     types.AssetTypeTRC20,
	}, nil
}

// decodeString decodes an ABI-encoded string return value.
func decodeString(raw []byte) (string, error) {
	if len(raw) < 64 {
		return "", fmt.Errorf("short string return (%d bytes)", len(raw))
	}
	offset := new(big.Int).SetBytes(raw[:32]).Uint64()
	if offset+32 > uint64(len(raw)) {
		return "", fmt.Errorf("string offset %d out of range", offset)
	}
	length := new(big.Int).SetBytes(raw[offset : offset+32]).Uint64()
	if offset+32+length > uint64(len(raw)) {
		return "", fmt.Errorf("string length %d out of range", length)
	}
	return string(raw[offset+32 : offset+32+length]), nil
}

type apiAccount struct {
	Data []struct {
		Balance int64              `json:"balance"`
		TRC20   []map[string]string `json:"trc20"`
	} `json:"data"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var res apiAccount
	if err := p.client.Get(ctx, "/v1/accounts/"+address, &res); err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return []types.AssetBalance{
			{AssetID: types.NewAssetID(types.Tron), Balance: "0"},
		}, nil
	}
	account := res.Data[0]
	balances := []types.AssetBalance{
		{AssetID: types.NewAssetID(types.Tron), Balance: strconv.FormatInt(account.Balance, 10)},
	}
	for _, holding := range account.TRC20 {
		for token, amount := range holding {
			if _, ok := types.FormatTokenID(types.Tron, token); !ok {
				continue
			}
			balances = append(balances, types.AssetBalance{
				AssetID: types.AssetID{Chain: types.Tron, TokenID: token},
				Balance: amount,
			})
		}
	}
	return balances, nil
}
