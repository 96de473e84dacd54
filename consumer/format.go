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

package consumer

import (
	"math/big"
	"strings"
)

// FormatAmount renders a raw integer amount as a decimal string scaled by the
// asset's decimals, with trailing zeros trimmed. Unparseable values pass
// through untouched so a bad amount never blocks a notification.
func FormatAmount(value string, decimals int32) string {
	raw, ok := new(big.Int).SetString(value, 10)
	if !ok || decimals <= 0 {
		return value
	}
	// QuoRem truncates towards zero, so a value between -10^decimals and 0
	// would lose its sign. Format the magnitude and restore the sign.
	sign := ""
	if raw.Sign() < 0 {
		sign = "-"
		raw = new(big.Int).Neg(raw)
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(raw, div, new(big.Int))

	if frac.Sign() == 0 {
		return sign + whole.String()
	}
	digits := strings.TrimRight(leftPad(frac.String(), int(decimals)), "0")
	return sign + whole.String() + "." + digits
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
