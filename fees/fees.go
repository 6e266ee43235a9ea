// Package fees implements the gas-limit and EIP-1559 fee-cap strategy:
// scale quoted values by a configured multiplier, in u128-equivalent
// (big.Int) precision via a float64 intermediate, never letting the
// scaled value regress below the raw quote.
package fees

import (
	"math"
	"math/big"

	"github.com/ethdenver2026/relayer/relayerr"
)

var (
	minGasLimit    = big.NewInt(50_000)
	gasLimitFactor = 1.2
	oneGwei        = big.NewInt(1_000_000_000)
)

// ScaleCeil computes ceil(value * multiplier) as a big.Int, going
// through a float64 intermediate. Values above 2^53 lose precision;
// fees never approach that range.
func ScaleCeil(value *big.Int, multiplier float64) (*big.Int, error) {
	if value == nil {
		value = new(big.Int)
	}
	base := new(big.Float).SetInt(value)
	scaled, _ := new(big.Float).Mul(base, big.NewFloat(multiplier)).Float64()
	ceiled := math.Ceil(scaled)
	if math.IsNaN(ceiled) || math.IsInf(ceiled, 0) || ceiled < 0 {
		return nil, relayerr.NumberOutOfRange("scaled value")
	}
	result, _ := big.NewFloat(ceiled).Int(nil)
	return result, nil
}

// scaleNoRegression scales value by multiplier, but never returns less
// than the raw value — matching the "never regress" rule applied to
// both gas_limit and the two fee components.
func scaleNoRegression(value *big.Int, multiplier float64) (*big.Int, error) {
	scaled, err := ScaleCeil(value, multiplier)
	if err != nil {
		return nil, err
	}
	if scaled.Cmp(value) < 0 {
		return new(big.Int).Set(value), nil
	}
	return scaled, nil
}

// GasLimit applies gas_limit = max(gasEstimate, 50000), then scales by
// 1.2 without regressing below the floored estimate.
func GasLimit(gasEstimate *big.Int) (*big.Int, error) {
	floor := gasEstimate
	if gasEstimate == nil || gasEstimate.Cmp(minGasLimit) < 0 {
		floor = minGasLimit
	}
	return scaleNoRegression(floor, gasLimitFactor)
}

// PriorityFee scales the quoted priority fee by priorityMultiplier,
// never regressing, and floors a zero result to 1 gwei.
func PriorityFee(quoted *big.Int, priorityMultiplier float64) (*big.Int, error) {
	effective, err := scaleNoRegression(quoted, priorityMultiplier)
	if err != nil {
		return nil, err
	}
	if effective.Sign() == 0 {
		return new(big.Int).Set(oneGwei), nil
	}
	return effective, nil
}

// BaseFeeScaled scales the quoted base fee by maxFeeMultiplier, never
// regressing below the raw quote.
func BaseFeeScaled(quoted *big.Int, maxFeeMultiplier float64) (*big.Int, error) {
	return scaleNoRegression(quoted, maxFeeMultiplier)
}

// MaxFeePerGas is base_fee_scaled + priority_fee_effective.
func MaxFeePerGas(baseFeeScaled, priorityFeeEffective *big.Int) *big.Int {
	return new(big.Int).Add(baseFeeScaled, priorityFeeEffective)
}
