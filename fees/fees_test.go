package fees

import (
	"math/big"
	"testing"
)

func TestGasLimitFloorsAt50000(t *testing.T) {
	got, err := GasLimit(big.NewInt(10_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := big.NewInt(60_000) // 50000 * 1.2
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestGasLimitScalesAboveFloor(t *testing.T) {
	got, err := GasLimit(big.NewInt(120_000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := big.NewInt(144_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestGasLimitNeverRegresses(t *testing.T) {
	// multiplier < 1 would normally shrink the value; the result must
	// never drop below the raw (floored) estimate.
	got, err := scaleNoRegression(big.NewInt(100_000), 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(100_000)) < 0 {
		t.Fatalf("scaled value regressed: got %s", got)
	}
}

func TestPriorityFeeFloorsZeroToOneGwei(t *testing.T) {
	got, err := PriorityFee(big.NewInt(0), 1.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Fatalf("got %s, want 1 gwei floor", got)
	}
}

func TestPriorityFeeScales(t *testing.T) {
	got, err := PriorityFee(big.NewInt(2_000_000_000), 1.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := big.NewInt(2_400_000_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestBaseFeeScaledAndMaxFeePerGas(t *testing.T) {
	baseFee := big.NewInt(30_000_000_000)
	scaled, err := BaseFeeScaled(baseFee, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scaled.Cmp(big.NewInt(60_000_000_000)) != 0 {
		t.Fatalf("got %s", scaled)
	}

	priority, err := PriorityFee(big.NewInt(2_000_000_000), 1.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxFee := MaxFeePerGas(scaled, priority)
	want := big.NewInt(62_400_000_000)
	if maxFee.Cmp(want) != 0 {
		t.Fatalf("got %s want %s", maxFee, want)
	}
}

func TestScaleCeilRejectsNegativeMultiplierResult(t *testing.T) {
	_, err := ScaleCeil(big.NewInt(100), -1.0)
	if err == nil {
		t.Fatalf("expected error for negative scaled result")
	}
}
