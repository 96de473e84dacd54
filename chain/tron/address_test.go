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

package tron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	// USDT contract.
	const addr = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

	h, err := base58ToHex(addr)
	require.NoError(t, err)
	assert.Equal(t, "41a614f803b6fd780986a42c78ec9c7f77e6ded13c", h)

	back, err := hexToBase58(h)
	require.NoError(t, err)
	assert.Equal(t, addr, back)
}

func TestBase58ToHexRejectsGarbage(t *testing.T) {
	_, err := base58ToHex("not-base58-0OIl")
	assert.Error(t, err)

	// Valid base58 but wrong length.
	_, err = base58ToHex("TR7NHqje")
	assert.Error(t, err)
}

func TestHexToBase58RejectsBadPrefix(t *testing.T) {
	_, err := hexToBase58("42a614f803b6fd780986a42c78ec9c7f77e6ded13c")
	assert.Error(t, err)

	_, err = hexToBase58("41a614")
	assert.Error(t, err)
}
