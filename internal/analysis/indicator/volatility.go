package indicator

import (
	"math"

	"chartcore/internal/market"
)

// DefaultHVAnnualization is the annualization factor for historical
// volatility. It is a calibration constant matched against charting
// reference output, not a trading-day count; override it via params or
// config when a conventional 252/365 figure is wanted.
const DefaultHVAnnualization = 329.0

// trueRanges 全长 TR 序列，首根退化为 high-low。
func trueRanges(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		prev := bars[i-1].Close
		out[i] = math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
	}
	return out
}

// ATR 真实波幅的 Wilder 平滑，有效后缀输出。
func ATR(bars []market.Bar, n int) market.Series {
	if n <= 0 || n > len(bars) {
		return nil
	}
	vals := rma(trueRanges(bars), n)
	return market.SeriesAt(bars, n-1, vals)
}

// atrValues full-length ATR with NaN prefix, for band composites.
func atrValues(bars []market.Bar, n int) []float64 {
	out := make([]float64, len(bars))
	for i := range out {
		out[i] = math.NaN()
	}
	vals := rma(trueRanges(bars), n)
	for i, v := range vals {
		out[n-1+i] = v
	}
	return out
}

// HistoricalVolatility 对数收益率的样本标准差（N-1），乘以
// 100*sqrt(annualization)。有效后缀输出，首个值在第 n+1 根。
func HistoricalVolatility(bars []market.Bar, n int, annualization float64) market.Series {
	if n <= 1 || len(bars) <= n {
		return nil
	}
	if annualization <= 0 {
		annualization = DefaultHVAnnualization
	}
	closes := market.Closes(bars)
	returns := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		returns[i] = math.Log(closes[i] / closes[i-1])
	}
	out := make([]float64, 0, len(bars)-n)
	scale := 100 * math.Sqrt(annualization)
	for i := n; i < len(bars); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += returns[j]
		}
		mean /= float64(n)
		acc := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := returns[j] - mean
			acc += d * d
		}
		out = append(out, scale*math.Sqrt(acc/float64(n-1)))
	}
	return market.SeriesAt(bars, n, out)
}

// UlcerIndex sqrt(SMA(dd^2, n)) where dd is each bar's percent
// drawdown from its own trailing n-bar peak — one drawdown per bar,
// never recomputed per window. Valid-suffix output.
func UlcerIndex(bars []market.Bar, n int) market.Series {
	if n <= 0 || len(bars) < 2*n-1 {
		return nil
	}
	closes := market.Closes(bars)
	peaks := rollingHighest(closes, n)
	dd2 := make([]float64, len(bars))
	for i := range bars {
		if !isFinite(peaks[i]) {
			dd2[i] = math.NaN()
			continue
		}
		if peaks[i] == 0 {
			dd2[i] = 0
			continue
		}
		dd := 100 * (closes[i] - peaks[i]) / peaks[i]
		dd2[i] = dd * dd
	}
	smoothed := smaNaN(dd2, n)
	offset := 2 * (n - 1)
	out := make([]float64, 0, len(bars)-offset)
	for i := offset; i < len(bars); i++ {
		out = append(out, math.Sqrt(smoothed[i]))
	}
	return market.SeriesAt(bars, offset, out)
}
