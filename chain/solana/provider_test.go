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

package solana

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/types"
)

const systemTransferJSON = `{
	"meta": {"err": null, "fee": 5000, "preTokenBalances": [], "postTokenBalances": []},
	"transaction": {
		"signatures": ["5sig"],
		"message": {"instructions": [
			{"program": "system", "programId": "11111111111111111111111111111111",
			 "parsed": {"type": "transfer", "info": {"source": "srcOwner", "destination": "dstOwner", "lamports": 1000000}}}
		]}
	}
}`

const splTransferJSON = `{
	"meta": {
		"err": null, "fee": 5000,
		"preTokenBalances": [
			{"mint": "MintA", "owner": "srcOwner", "uiTokenAmount": {"amount": "500"}},
			{"mint": "MintA", "owner": "dstOwner", "uiTokenAmount": {"amount": "0"}}
		],
		"postTokenBalances": [
			{"mint": "MintA", "owner": "srcOwner", "uiTokenAmount": {"amount": "400"}},
			{"mint": "MintA", "owner": "dstOwner", "uiTokenAmount": {"amount": "100"}}
		]
	},
	"transaction": {
		"signatures": ["6sig"],
		"message": {"instructions": [
			{"program": "spl-token", "programId": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
			 "parsed": {"type": "transferChecked", "info": {"source": "srcTokenAcc", "destination": "dstTokenAcc", "authority": "srcOwner", "mint": "MintA", "tokenAmount": {"amount": "100"}}}}
		]}
	}
}`

func TestParseSystemTransfer(t *testing.T) {
	var tx rpcTransaction
	require.NoError(t, json.Unmarshal([]byte(systemTransferJSON), &tx))

	txs := parseTransaction(tx, 250000000, 1700000000)
	require.Len(t, txs, 1)
	got := txs[0]
	assert.Equal(t, "solana_5sig", got.ID)
	assert.Equal(t, "srcOwner", got.From)
	assert.Equal(t, "dstOwner", got.To)
	assert.Equal(t, "1000000", got.Value)
	assert.Equal(t, "5000", got.Fee)
	assert.Equal(t, types.StateConfirmed, got.State)
	assert.True(t, got.AssetID.IsNative())
}

func TestParseSPLTransfer(t *testing.T) {
	var tx rpcTransaction
	require.NoError(t, json.Unmarshal([]byte(splTransferJSON), &tx))

	txs := parseTransaction(tx, 250000000, 1700000000)
	require.Len(t, txs, 1)
	got := txs[0]
	assert.Equal(t, "MintA", got.AssetID.TokenID)
	assert.Equal(t, "srcOwner", got.From)
	assert.Equal(t, "dstOwner", got.To, "recipient resolved through balance deltas")
	assert.Equal(t, "100", got.Value)
}

func TestParseFailedTransaction(t *testing.T) {
	var tx rpcTransaction
	require.NoError(t, json.Unmarshal([]byte(systemTransferJSON), &tx))
	tx.Meta.Err = map[string]any{"InstructionError": []any{}}

	txs := parseTransaction(tx, 1, 1700000000)
	require.Len(t, txs, 1)
	assert.Equal(t, types.StateFailed, txs[0].State)
}
