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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

const (
	AssetTypeNative = "NATIVE"
	AssetTypeERC20  = "ERC20"
	AssetTypeSPL    = "SPL"
	AssetTypeTRC20  = "TRC20"
	AssetTypeToken  = "TOKEN"
)

// AssetID identifies a fungible asset: the chain's native coin when TokenID
// is empty, a token on that chain otherwise. The textual form is "<chain>"
// for native assets and "<chain>_<tokenID>" for tokens.
type AssetID struct {
	Chain   Chain
	TokenID string
}

// NewAssetID returns the native asset id of a chain.
func NewAssetID(chain Chain) AssetID {
	return AssetID{Chain: chain}
}

// NewTokenAssetID builds a token asset id, validating and canonicalizing the
// token id for the chain. Invalid token ids are rejected, never normalized
// silently.
func NewTokenAssetID(chain Chain, tokenID string) (AssetID, error) {
	formatted, ok := FormatTokenID(chain, tokenID)
	if !ok {
		return AssetID{}, fmt.Errorf("invalid token id %q for chain %s", tokenID, chain)
	}
	return AssetID{Chain: chain, TokenID: formatted}, nil
}

// ParseAssetID parses the textual form, splitting on the first underscore.
func ParseAssetID(s string) (AssetID, error) {
	chainPart, tokenPart, hasToken := strings.Cut(s, "_")
	chain, err := ParseChain(chainPart)
	if err != nil {
		return AssetID{}, err
	}
	if !hasToken {
		return AssetID{Chain: chain}, nil
	}
	return NewTokenAssetID(chain, tokenPart)
}

// IsNative reports whether the id refers to the chain's native coin.
func (id AssetID) IsNative() bool {
	return id.TokenID == ""
}

func (id AssetID) String() string {
	if id.IsNative() {
		return string(id.Chain)
	}
	return string(id.Chain) + "_" + id.TokenID
}

func (id AssetID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *AssetID) UnmarshalText(text []byte) error {
	parsed, err := ParseAssetID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// FormatTokenID validates and canonicalizes a token id for a chain. It
// returns false for chains that do not support tokens and for token ids that
// fail the chain's shape rules.
func FormatTokenID(chain Chain, tokenID string) (string, bool) {
	if tokenID == "" {
		return "", false
	}
	switch chain.Type() {
	case TypeEthereum:
		if !common.IsHexAddress(tokenID) {
			return "", false
		}
		// EIP-55 checksummed form is the canonical one.
		return common.HexToAddress(tokenID).Hex(), true
	case TypeSolana, TypeTon, TypeNear, TypeAptos:
		return tokenID, true
	case TypeTron:
		if len(tokenID) != 34 || tokenID[0] != 'T' {
			return "", false
		}
		raw, err := base58.Decode(tokenID)
		if err != nil || len(raw) != 25 {
			return "", false
		}
		return tokenID, true
	case TypeXrp:
		if len(tokenID) > 34 || len(tokenID) < 25 || tokenID[0] != 'r' {
			return "", false
		}
		return tokenID, true
	case TypeStellar:
		if len(tokenID) != 56 || tokenID[0] != 'G' {
			return "", false
		}
		return tokenID, true
	case TypeSui:
		if len(tokenID) < 64 || strings.Count(tokenID, "::") != 2 {
			return "", false
		}
		// The native coin type is not a token.
		if strings.HasPrefix(tokenID, "0x2::") {
			return "", false
		}
		return tokenID, true
	case TypeAlgorand:
		if _, err := strconv.ParseUint(tokenID, 10, 64); err != nil {
			return "", false
		}
		return tokenID, true
	default:
		// UTXO, Cosmos, Polkadot, Cardano: tokens are not supported.
		return "", false
	}
}

// Asset is the resolved metadata of an asset.
type Asset struct {
	ID       AssetID `json:"id"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals int32   `json:"decimals"`
	Type     string  `json:"type"`
}

// AssetBalance pairs an asset with a raw (unscaled) balance.
type AssetBalance struct {
	AssetID AssetID `json:"assetId"`
	Balance string  `json:"balance"`
}

// AssetAddress is a discovered association between an address and an asset.
type AssetAddress struct {
	AssetID   AssetID   `json:"assetId"`
	Address   string    `json:"address"`
	Chain     Chain     `json:"chain"`
	CreatedAt time.Time `json:"createdAt"`
}
