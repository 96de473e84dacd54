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

// Package evm implements the chain provider for all EVM networks. The
// networks differ only by chain id and native asset; the derivation logic is
// shared.
package evm

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

// erc20TransferSelector is the 4-byte selector of transfer(address,uint256).
var erc20TransferSelector = hexutil.MustDecode("0xa9059cbb")

var (
	nameSelector     = hexutil.MustDecode("0x06fdde03")
	symbolSelector   = hexutil.MustDecode("0x95d89b41")
	decimalsSelector = hexutil.MustDecode("0x313ce567")
)

// Provider drives one EVM chain over JSON-RPC.
type Provider struct {
	chain  types.Chain
	client *rpc.Client
}

func New(c types.Chain, url string) (*Provider, error) {
	client, err := rpc.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c, err)
	}
	return &Provider{chain: c, client: client}, nil
}

func (p *Provider) Chain() types.Chain {
	return p.chain
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var height hexutil.Uint64
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &height, "eth_blockNumber")
	})
	return uint64(height), err
}

// GetTransactions fetches the block and its receipts in one batch and
// derives normalized transfers.
func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var (
		blk      rpcBlock
		receipts []rpcReceipt
		tag      = hexutil.EncodeUint64(block)
	)
	batch := []rpc.BatchElem{
		{Method: "eth_getBlockByNumber", Args: []any{tag, true}, Result: &blk},
		{Method: "eth_getBlockReceipts", Args: []any{tag}, Result: &receipts},
	}
	err := chain.Retry(ctx, func(ctx context.Context) error {
		if err := p.client.BatchCallContext(ctx, batch); err != nil {
			return err
		}
		for _, elem := range batch {
			if elem.Error != nil {
				return fmt.Errorf("%s: %w", elem.Method, elem.Error)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deriveTransactions(p.chain, blk, receipts), nil
}

// deriveTransactions keeps transactions whose calldata is empty (native
// transfer) or begins with the ERC-20 transfer selector. Everything else is
// noise for a wallet.
func deriveTransactions(c types.Chain, blk rpcBlock, receipts []rpcReceipt) []types.Transaction {
	receiptsByHash := make(map[common.Hash]rpcReceipt, len(receipts))
	for _, r := range receipts {
		receiptsByHash[r.TxHash] = r
	}

	native := types.NewAssetID(c)
	blockTime := time.Unix(int64(blk.Timestamp), 0).UTC()

	var out []types.Transaction
	for _, tx := range blk.Transactions {
		if tx.To == nil {
			continue // contract creation
		}
		receipt, ok := receiptsByHash[tx.Hash]
		if !ok {
			continue
		}
		gasPrice := new(big.Int)
		if receipt.EffectiveGasPrice != nil {
			gasPrice = (*big.Int)(receipt.EffectiveGasPrice)
		}
		fee := new(big.Int).Mul(new(big.Int).SetUint64(uint64(receipt.GasUsed)), gasPrice)
		base := types.Transaction{
			Type:        types.TypeTransfer,
			BlockNumber: uint64(blk.Number),
			Sequence:    uint64(tx.Nonce),
			Fee:         fee.String(),
			FeeAssetID:  native,
			CreatedAt:   blockTime,
		}
		switch {
		case len(tx.Input) == 0:
			base.AssetID = native
			base.From = tx.From.Hex()
			base.To = tx.To.Hex()
			base.Value = bigString(tx.Value)
			if receipt.Status == 1 {
				base.State = types.StateConfirmed
			} else {
				base.State = types.StateFailed
			}
		case isERC20Transfer(tx.Input):
			// Failed token transfers move no value; drop them.
			if receipt.Status != 1 {
				continue
			}
			base.AssetID = types.AssetID{Chain: c, TokenID: tx.To.Hex()}
			base.From = tx.From.Hex()
			base.To = common.BytesToAddress(tx.Input[16:36]).Hex()
			base.Value = new(big.Int).SetBytes(tx.Input[36:68]).String()
			base.State = types.StateConfirmed
		default:
			continue
		}
		out = append(out, types.NewTransaction(c, tx.Hash.Hex(), base))
	}
	return out
}

func isERC20Transfer(input hexutil.Bytes) bool {
	return len(input) >= 68 && bytes.Equal(input[:4], erc20TransferSelector)
}

func bigString(v *hexutil.Big) string {
	if v == nil {
		return "0"
	}
	return (*big.Int)(v).String()
}

// GetTokenData resolves name, symbol and decimals from the token contract.
func (p *Provider) GetTokenData(ctx context.Context, tokenID string) (types.Asset, error) {
	if !common.IsHexAddress(tokenID) {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	contract := common.HexToAddress(tokenID)

	nameRaw, err := p.callConst(ctx, contract, nameSelector)
	if err != nil {
		return types.Asset{}, err
	}
	symbolRaw, err := p.callConst(ctx, contract, symbolSelector)
	if err != nil {
		return types.Asset{}, err
	}
	decimalsRaw, err := p.callConst(ctx, contract, decimalsSelector)
	if err != nil {
		return types.Asset{}, err
	}
	if len(decimalsRaw) == 0 || len(nameRaw) == 0 {
		return types.Asset{}, chain.ErrTokenNotFound
	}
	name, err := decodeABIString(nameRaw)
	if err != nil {
		return types.Asset{}, fmt.Errorf("token %s name: %w", tokenID, err)
	}
	symbol, err := decodeABIString(symbolRaw)
	if err != nil {
		return types.Asset{}, fmt.Errorf("token %s symbol: %w", tokenID, err)
	}
	return types.Asset{
		ID:       types.AssetID{Chain: p.chain, TokenID: contract.Hex()},
		Name:     name,
		Symbol:   symbol,
		Decimals: int32(new(big.Int).SetBytes(decimalsRaw).Int64()),
		Type:     types.AssetTypeERC20,
	}, nil
}

func (p *Provider) callConst(ctx context.Context, to common.Address, data []byte) (hexutil.Bytes, error) {
	var result hexutil.Bytes
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &result, "eth_call", callArgs{To: to, Data: data}, "latest")
	})
	return result, err
}

// decodeABIString decodes a single ABI-encoded string return value. Some
// legacy tokens return a fixed bytes32 instead; both shapes are accepted.
func decodeABIString(raw []byte) (string, error) {
	if len(raw) == 32 {
		return string(bytes.TrimRight(raw, "\x00")), nil
	}
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

// GetAssetsBalances returns the native balance. Token discovery on EVM goes
// through transaction ingestion, not through enumeration.
func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	var balance hexutil.Big
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &balance, "eth_getBalance", common.HexToAddress(address), "latest")
	})
	if err != nil {
		return nil, err
	}
	return []types.AssetBalance{
		{AssetID: types.NewAssetID(p.chain), Balance: (*big.Int)(&balance).String()},
	}, nil
}

// Broadcast submits a signed raw transaction.
func (p *Provider) Broadcast(ctx context.Context, data string) (string, error) {
	var hash common.Hash
	err := chain.Retry(ctx, func(ctx context.Context) error {
		return p.client.CallContext(ctx, &hash, "eth_sendRawTransaction", data)
	})
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}
