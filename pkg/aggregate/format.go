package aggregate

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// CirclesDecimals is the number of decimals of the Circles token (same as ether).
const CirclesDecimals = 18

// FormatCircles renders an amount in the smallest unit as whole Circles,
// trimming trailing zeros ("1500000000000000000" -> "1.5").
func FormatCircles(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -CirclesDecimals).String()
}
