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

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionID(t *testing.T) {
	assert.Equal(t, "ethereum_0xabc", TransactionID(Ethereum, "0xabc"))
}

func TestTransactionFinalize(t *testing.T) {
	tx := Transaction{From: "0x11", To: "0x22"}

	assert.Equal(t, DirectionIncoming, tx.Finalize([]string{"0x22"}).Direction)
	assert.Equal(t, DirectionOutgoing, tx.Finalize([]string{"0x11"}).Direction)
	assert.Equal(t, DirectionSelf, tx.Finalize([]string{"0x11", "0x22"}).Direction)

	self := Transaction{From: "0x11", To: "0x11"}
	assert.Equal(t, DirectionSelf, self.Finalize([]string{"0x11"}).Direction)
}

func TestTransactionFinalizeUTXO(t *testing.T) {
	tx := Transaction{
		From: "bc1qinput",
		To:   "bc1qoutput",
		UTXOInputs: []UTXO{
			{Address: "bc1qinput", Value: "5000"},
		},
		UTXOOutputs: []UTXO{
			{Address: "bc1qoutput", Value: "3000"},
			{Address: "bc1qinput", Value: "1900"},
		},
	}
	// The sender also appears on the output side via the change output, so
	// from the sender's viewpoint this is a self transfer.
	assert.Equal(t, DirectionSelf, tx.Finalize([]string{"bc1qinput"}).Direction)
	assert.Equal(t, DirectionIncoming, tx.Finalize([]string{"bc1qoutput"}).Direction)
}

func TestTransactionAddresses(t *testing.T) {
	tx := Transaction{
		From: "a",
		To:   "b",
		UTXOInputs:  []UTXO{{Address: "a"}, {Address: "c"}},
		UTXOOutputs: []UTXO{{Address: "b"}},
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, tx.Addresses())
}

func TestTransactionAssetIDs(t *testing.T) {
	native := NewAssetID(Ethereum)
	token, err := NewTokenAssetID(Ethereum, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.NoError(t, err)

	tx := Transaction{AssetID: token, FeeAssetID: native}
	assert.Len(t, tx.AssetIDs(), 2)

	tx = Transaction{AssetID: native, FeeAssetID: native}
	assert.Len(t, tx.AssetIDs(), 1)
}

func TestTransactionJSONShape(t *testing.T) {
	tx := NewTransaction(Ethereum, "0xabc", Transaction{
		AssetID:     NewAssetID(Ethereum),
		From:        "0x11",
		To:          "0x22",
		Type:        TypeTransfer,
		State:       StateConfirmed,
		BlockNumber: 100,
		Fee:         "21000",
		FeeAssetID:  NewAssetID(Ethereum),
		Value:       "1000000000000000000",
	})
	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "ethereum_0xabc", m["id"])
	assert.Equal(t, "ethereum", m["assetId"])
	assert.Equal(t, "confirmed", m["state"])
	assert.Contains(t, m, "blockNumber")
	assert.Contains(t, m, "createdAt")
	assert.NotContains(t, m, "utxoInputs")
}
