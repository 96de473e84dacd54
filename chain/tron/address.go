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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// The node speaks hex addresses with a 0x41 prefix; the rest of the system
// uses base58check ("T...") addresses.

func hexToBase58(h string) (string, error) {
	h = strings.TrimPrefix(h, "0x")
	raw, err := hex.DecodeString(h)
	if err != nil {
		return "", fmt.Errorf("tron address %q: %w", h, err)
	}
	if len(raw) != 21 || raw[0] != 0x41 {
		return "", fmt.Errorf("tron address %q: bad prefix or length", h)
	}
	first := sha256.Sum256(raw)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(raw, second[:4]...)), nil
}

func base58ToHex(addr string) (string, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("tron address %q: %w", addr, err)
	}
	if len(raw) != 25 || raw[0] != 0x41 {
		return "", fmt.Errorf("tron address %q: bad prefix or length", addr)
	}
	payload := raw[:21]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !strings.EqualFold(hex.EncodeToString(second[:4]), hex.EncodeToString(raw[21:])) {
		return "", fmt.Errorf("tron address %q: checksum mismatch", addr)
	}
	return hex.EncodeToString(payload), nil
}
