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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTokenID(t *testing.T) {
	tests := []struct {
		chain   Chain
		tokenID string
		want    string
		ok      bool
	}{
		{Ethereum, "0xdac17f958d2ee523a2206206994597c13d831ec7", "0xdAC17F958D2ee523a2206206994597C13D831ec7", true},
		{Ethereum, "0xdAC17F958D2ee523a2206206994597C13D831ec7", "0xdAC17F958D2ee523a2206206994597C13D831ec7", true},
		{Ethereum, "0x123", "", false},
		{Ethereum, "", "", false},
		{Tron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", true},
		{Tron, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6", "", false},
		{Tron, "0xdac17f958d2ee523a2206206994597c13d831ec7", "", false},
		{Solana, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{Sui, "0x2::sui::SUI", "", false},
		{Sui, "0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN", "0x5d4b302506645c37ff133b98c4b50a5ae14841659738d6d733d59d0d217a93bf::coin::COIN", true},
		{Algorand, "31566704", "31566704", true},
		{Algorand, "usdc", "", false},
		{Stellar, "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN", "GA5ZSEJYB37JRC5AVCIA5MOP4RHTM335X2KGX3IHOJAPP5RE34K4KZVN", true},
		{Stellar, "GABC", "", false},
		{Xrp, "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B", "rvYAfWj5gh67oV6fW32ZzP3Aw4Eubs59B", true},
		{Bitcoin, "anything", "", false},
		{Cosmos, "uatom", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatTokenID(tt.chain, tt.tokenID)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.chain, tt.tokenID)
		assert.Equal(t, tt.want, got, "%s %q", tt.chain, tt.tokenID)
	}
}

func TestFormatTokenIDChecksumIdempotent(t *testing.T) {
	once, ok := FormatTokenID(Ethereum, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.True(t, ok)
	twice, ok := FormatTokenID(Ethereum, once)
	require.True(t, ok)
	assert.Equal(t, once, twice)
}

func TestAssetIDRoundTrip(t *testing.T) {
	valid := []string{
		"ethereum",
		"solana",
		"bitcoin",
		"ethereum_0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"tron_TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
		"solana_EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"algorand_31566704",
	}
	for _, s := range valid {
		id, err := ParseAssetID(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, id.String())
	}

	invalid := []string{
		"",
		"notachain",
		"ethereum_0x123",
		"bitcoin_token",
		"cosmos_uatom",
		"sui_0x2::sui::SUI",
	}
	for _, s := range invalid {
		_, err := ParseAssetID(s)
		assert.Error(t, err, s)
	}
}

func TestAssetIDNative(t *testing.T) {
	id := NewAssetID(Ethereum)
	assert.True(t, id.IsNative())
	assert.Equal(t, "ethereum", id.String())

	token, err := NewTokenAssetID(Ethereum, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.NoError(t, err)
	assert.False(t, token.IsNative())
}

func TestNativeAsset(t *testing.T) {
	for _, c := range AllChains() {
		a := c.NativeAsset()
		assert.NotEmpty(t, a.Symbol, c)
		assert.Equal(t, AssetTypeNative, a.Type, c)
		assert.True(t, a.ID.IsNative(), c)
	}
}
