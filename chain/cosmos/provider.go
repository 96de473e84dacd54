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

// Package cosmos implements the chain provider for Cosmos-SDK chains over
// the LCD REST API.
package cosmos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/helix-wallet/walletd/chain"
	"github.com/helix-wallet/walletd/types"
)

const msgSend = "/cosmos.bank.v1beta1.MsgSend"

// nativeDenoms maps each supported Cosmos chain to its staking denom; only
// transfers of the native denom are indexed.
var nativeDenoms = map[types.Chain]string{
	types.Cosmos:    "uatom",
	types.Osmosis:   "uosmo",
	types.Celestia:  "utia",
	types.Injective: "inj",
	types.Sei:       "usei",
	types.Noble:     "uusdc",
}

type Provider struct {
	chain  types.Chain
	denom  string
	client *chain.Client
}

func New(c types.Chain, rpcURL string) (*Provider, error) {
	denom, ok := nativeDenoms[c]
	if !ok {
		return nil, fmt.Errorf("no native denom for chain %s", c)
	}
	return &Provider{chain: c, denom: denom, client: chain.NewClient(rpcURL)}, nil
}

func (p *Provider) Chain() types.Chain {
	return p.chain
}

type apiLatestBlock struct {
	Block struct {
		Header struct {
			Height string `json:"height"`
		} `json:"header"`
	} `json:"block"`
}

func (p *Provider) LatestBlock(ctx context.Context) (uint64, error) {
	var res apiLatestBlock
	if err := p.client.Get(ctx, "/cosmos/base/tendermint/v1beta1/blocks/latest", &res); err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(res.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed height %q: %w", res.Block.Header.Height, err)
	}
	return height, nil
}

type apiCoin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type apiTx struct {
	Body struct {
		Messages []apiMessage `json:"messages"`
		Memo     string       `json:"memo"`
	} `json:"body"`
	AuthInfo struct {
		SignerInfos []struct {
			Sequence string `json:"sequence"`
		} `json:"signer_infos"`
		Fee struct {
			Amount []apiCoin `json:"amount"`
		} `json:"fee"`
	} `json:"auth_info"`
}

type apiMessage struct {
	Type        string    `json:"@type"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amount      []apiCoin `json:"amount"`
}

type apiTxResponse struct {
	TxHash    string `json:"txhash"`
	Code      uint32 `json:"code"`
	Height    string `json:"height"`
	Timestamp string `json:"timestamp"`
}

type apiBlockTxs struct {
	Txs         []apiTx         `json:"txs"`
	TxResponses []apiTxResponse `json:"tx_responses"`
}

func (p *Provider) GetTransactions(ctx context.Context, block uint64) ([]types.Transaction, error) {
	var res apiBlockTxs
	if err := p.client.Get(ctx, fmt.Sprintf("/cosmos/tx/v1beta1/txs/block/%d", block), &res); err != nil {
		return nil, err
	}
	return p.mapTxs(res)
}

func (p *Provider) mapTxs(res apiBlockTxs) ([]types.Transaction, error) {
	if len(res.Txs) != len(res.TxResponses) {
		return nil, fmt.Errorf("txs/tx_responses length mismatch: %d != %d", len(res.Txs), len(res.TxResponses))
	}
	var out []types.Transaction
	for i, tx := range res.Txs {
		mapped, ok := p.mapTx(tx, res.TxResponses[i])
		if ok {
			out = append(out, mapped)
		}
	}
	return out, nil
}

func (p *Provider) mapTx(tx apiTx, resp apiTxResponse) (types.Transaction, bool) {
	var msg *apiMessage
	for i := range tx.Body.Messages {
		if tx.Body.Messages[i].Type == msgSend {
			msg = &tx.Body.Messages[i]
			break
		}
	}
	if msg == nil {
		return types.Transaction{}, false
	}
	value := coinAmount(msg.Amount, p.denom)
	if value == "" {
		return types.Transaction{}, false // IBC or non-native denom
	}

	state := types.StateConfirmed
	if resp.Code != 0 {
		state = types.StateFailed
	}
	height, _ := strconv.ParseUint(resp.Height, 10, 64)
	createdAt, err := time.Parse(time.RFC3339, resp.Timestamp)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	var sequence uint64
	if len(tx.AuthInfo.SignerInfos) > 0 {
		sequence, _ = strconv.ParseUint(tx.AuthInfo.SignerInfos[0].Sequence, 10, 64)
	}
	fee := coinAmount(tx.AuthInfo.Fee.Amount, p.denom)
	if fee == "" {
		fee = "0"
	}

	native := types.NewAssetID(p.chain)
	return types.NewTransaction(p.chain, resp.TxHash, types.Transaction{
		AssetID:     native,
		From:        msg.FromAddress,
		To:          msg.ToAddress,
		Memo:        tx.Body.Memo,
		Type:        types.TypeTransfer,
		State:       state,
		BlockNumber: height,
		Sequence:    sequence,
		Fee:         fee,
		FeeAssetID:  native,
		Value:       value,
		CreatedAt:   createdAt.UTC(),
	}), true
}

func coinAmount(coins []apiCoin, denom string) string {
	for _, c := range coins {
		if c.Denom == denom {
			return c.Amount
		}
	}
	return ""
}

type apiBalances struct {
	Balances []apiCoin `json:"balances"`
}

func (p *Provider) GetAssetsBalances(ctx context.Context, address string) ([]types.AssetBalance, error) {
	var res apiBalances
	if err := p.client.Get(ctx, "/cosmos/bank/v1beta1/balances/"+address, &res); err != nil {
		return nil, err
	}
	amount := coinAmount(res.Balances, p.denom)
	if amount == "" {
		amount = "0"
	}
	return []types.AssetBalance{
		{AssetID: types.NewAssetID(p.chain), Balance: amount},
	}, nil
}

type apiTxsQuery struct {
	Txs         []apiTx         `json:"txs"`
	TxResponses []apiTxResponse `json:"tx_responses"`
}

func (p *Provider) GetTransactionsByAddress(ctx context.Context, address string) ([]types.Transaction, error) {
	var out []types.Transaction
	for _, event := range []string{
		fmt.Sprintf("message.sender='%s'", address),
		fmt.Sprintf("transfer.recipient='%s'", address),
	} {
		var res apiTxsQuery
		path := "/cosmos/tx/v1beta1/txs?events=" + url.QueryEscape(event) + "&pagination.limit=20&order_by=ORDER_BY_DESC"
		if err := p.client.Get(ctx, path, &res); err != nil {
			return nil, err
		}
		txs, err := p.mapTxs(apiBlockTxs(res))
		if err != nil {
			return nil, err
		}
		out = append(out, txs...)
	}
	return out, nil
}
