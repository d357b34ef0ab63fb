package analytics

import "fmt"

// DefaultLiquidityScale converts the liquidity signal into score points.
// The signal sums three z-scores, so it moves in wider bands than a single
// standard score and gets a gentler slope than DefaultScoreScale.
const DefaultLiquidityScale = 15.0

// LiquiditySignal sums the signed standard scores of the three liquidity
// components per point: money growth and balance sheet expansion add
// liquidity, reserve drain removes it. A positive signal means abundant
// liquidity. Inputs must be aligned and of equal length.
func LiquiditySignal(moneyGrowth, balanceSheetDelta, reserveDrain []float64) ([]float64, error) {
	if len(moneyGrowth) != len(balanceSheetDelta) || len(balanceSheetDelta) != len(reserveDrain) {
		return nil, fmt.Errorf("liquidity: series lengths differ (%d/%d/%d)",
			len(moneyGrowth), len(balanceSheetDelta), len(reserveDrain))
	}
	mg := standardScores(moneyGrowth)
	bs := standardScores(balanceSheetDelta)
	rd := standardScores(reserveDrain)
	out := make([]float64, len(mg))
	for i := range out {
		out[i] = mg[i] + bs[i] - rd[i]
	}
	return out, nil
}

// LiquidityStress maps a liquidity signal onto the 0-100 stress scale.
// Abundant liquidity (positive signal) is calm, drained liquidity is stress.
func LiquidityStress(signal, scale float64) float64 {
	if scale <= 0 {
		scale = DefaultLiquidityScale
	}
	return clip(50-signal*scale, 0, 100)
}

// GrowthOverPeriod is the percentage growth between the last value and the
// one `period` steps earlier, e.g. year over year with period 12 on monthly
// data.
func GrowthOverPeriod(values []float64, period int) float64 {
	return ROCOverPeriod(values, period)
}
