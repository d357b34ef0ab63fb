package analytics

import (
	"math"
	"testing"
)

func TestLiquiditySignalSignConventions(t *testing.T) {
	// Rising money growth and balance sheet with falling reserve drain is
	// abundant liquidity: the final signal must be positive.
	mg := []float64{1, 2, 3, 4, 5}
	bs := []float64{10, 20, 30, 40, 50}
	rd := []float64{5, 4, 3, 2, 1}
	out, err := LiquiditySignal(mg, bs, rd)
	if err != nil {
		t.Fatalf("LiquiditySignal: %v", err)
	}
	if last := out[len(out)-1]; last <= 0 {
		t.Fatalf("abundant liquidity signal = %v, want > 0", last)
	}

	// Flip the drain direction and the signal weakens.
	rising := []float64{1, 2, 3, 4, 5}
	flipped, err := LiquiditySignal(mg, bs, rising)
	if err != nil {
		t.Fatalf("LiquiditySignal: %v", err)
	}
	if flipped[len(flipped)-1] >= out[len(out)-1] {
		t.Fatalf("rising drain signal %v not below falling drain signal %v",
			flipped[len(flipped)-1], out[len(out)-1])
	}

	if _, err := LiquiditySignal(mg, bs[:3], rd); err == nil {
		t.Fatal("misaligned series accepted, want error")
	}
}

func TestLiquidityStressOrientation(t *testing.T) {
	if got := LiquidityStress(0, DefaultLiquidityScale); got != 50 {
		t.Fatalf("neutral signal stress = %v, want 50", got)
	}
	if got := LiquidityStress(2, DefaultLiquidityScale); got != 20 {
		t.Fatalf("abundant liquidity stress = %v, want 20", got)
	}
	if got := LiquidityStress(-2, DefaultLiquidityScale); got != 80 {
		t.Fatalf("drained liquidity stress = %v, want 80", got)
	}
	if got := LiquidityStress(-10, DefaultLiquidityScale); got != 100 {
		t.Fatalf("extreme drain stress = %v, want clipped 100", got)
	}
}

func TestGrowthOverPeriod(t *testing.T) {
	monthly := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112}
	got := GrowthOverPeriod(monthly, 12)
	if math.Abs(got-12) > 1e-9 {
		t.Fatalf("year-over-year growth = %v, want 12", got)
	}
	if got := GrowthOverPeriod(monthly[:5], 12); got != 0 {
		t.Fatalf("short series growth = %v, want 0", got)
	}
}
