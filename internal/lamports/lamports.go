// Package lamports converts between SOL, the human-denominated unit, and
// lamports, the chain's integer accounting unit.
package lamports

import (
	"github.com/shopspring/decimal"
)

// PerSol is the number of lamports that compose one SOL.
const PerSol = 1_000_000_000

// FromSol converts a SOL amount to lamports, rounding half away from zero.
// Negative amounts never occur in this domain; callers pass balances and
// thresholds, which are non-negative by construction.
func FromSol(sol decimal.Decimal) uint64 {
	return uint64(sol.Shift(9).Round(0).IntPart())
}

// FromSolFloat converts a float64 SOL amount (e.g. a parsed config value)
// to lamports with the same rounding as FromSol.
func FromSolFloat(sol float64) uint64 {
	return FromSol(decimal.NewFromFloat(sol))
}

// ToSol converts lamports to SOL. The division is exact: a lamport count
// always has at most nine fractional digits in SOL.
func ToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-9)
}
