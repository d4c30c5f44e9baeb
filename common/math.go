package common

import (
	"math/big"
	"strings"
)

// BigToFloatString renders value divided by 10^decimal exactly, trailing
// zeros of the fraction dropped.
// Example:
// - BigToFloatString(1100, 3) = "1.1"
// - BigToFloatString(1100, 2) = "11"
func BigToFloatString(value *big.Int, decimal uint64) string {
	if value == nil {
		return "0"
	}
	sign := ""
	abs := new(big.Int).Set(value)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}
	power := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimal)), nil)
	quo, rem := new(big.Int).QuoRem(abs, power, new(big.Int))
	if rem.Sign() == 0 {
		return sign + quo.String()
	}
	frac := rem.String()
	frac = strings.Repeat("0", int(decimal)-len(frac)) + frac
	return sign + quo.String() + "." + strings.TrimRight(frac, "0")
}
