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

package bitcoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helix-wallet/walletd/types"
)

func TestMapTransaction(t *testing.T) {
	tx := apiTransaction{
		Txid:        "deadbeef",
		BlockHeight: 800000,
		BlockTime:   1700000000,
		Fees:        "1100",
		Vin: []apiVio{
			{Addresses: []string{"bc1qsender"}, Value: "10000"},
		},
		Vout: []apiVio{
			{Addresses: []string{"bc1qrecipient"}, Value: "6000"},
			{Addresses: []string{"bc1qsender"}, Value: "2900"}, // change
		},
	}
	mapped, ok := mapTransaction(types.Bitcoin, tx)
	require.True(t, ok)
	assert.Equal(t, "bitcoin_deadbeef", mapped.ID)
	assert.Equal(t, "bc1qsender", mapped.From)
	assert.Equal(t, "bc1qrecipient", mapped.To, "change output is not the recipient")
	assert.Equal(t, "6000", mapped.Value)
	assert.Equal(t, "1100", mapped.Fee)
	assert.Len(t, mapped.UTXOInputs, 1)
	assert.Len(t, mapped.UTXOOutputs, 2)

	// Directions derived from the UTXO sets.
	assert.Equal(t, types.DirectionIncoming, mapped.Finalize([]string{"bc1qrecipient"}).Direction)
	assert.Equal(t, types.DirectionSelf, mapped.Finalize([]string{"bc1qsender"}).Direction)
}

func TestMapTransactionCoinbaseSkipped(t *testing.T) {
	tx := apiTransaction{
		Txid: "coinbase",
		Vin:  []apiVio{{Addresses: nil}},
		Vout: []apiVio{{Addresses: []string{"bc1qminer"}, Value: "312500000"}},
	}
	_, ok := mapTransaction(types.Bitcoin, tx)
	assert.False(t, ok)
}

func TestMapTransactionConsolidation(t *testing.T) {
	tx := apiTransaction{
		Txid: "c0ffee",
		Vin: []apiVio{
			{Addresses: []string{"bc1qsender"}, Value: "3000"},
			{Addresses: []string{"bc1qsender"}, Value: "2000"},
		},
		Vout: []apiVio{{Addresses: []string{"bc1qsender"}, Value: "4800"}},
	}
	mapped, ok := mapTransaction(types.Bitcoin, tx)
	require.True(t, ok)
	assert.Equal(t, "bc1qsender", mapped.To)
	assert.Equal(t, types.DirectionSelf, mapped.Finalize([]string{"bc1qsender"}).Direction)
}
