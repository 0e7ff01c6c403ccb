package indicator

import (
	"math"
	"sort"

	"chartcore/internal/market"
)

// Bollinger basis/upper/lower，有效后缀输出。标准差为 0 时三条带
// 收敛为同一数值。
func Bollinger(bars []market.Bar, n int, k float64) market.Bundle {
	if n <= 0 || n > len(bars) {
		return nil
	}
	closes := market.Closes(bars)
	basis := sma(closes, n)
	dev := stdevPop(closes, n)
	upper := make([]float64, len(basis))
	lower := make([]float64, len(basis))
	for i := range basis {
		upper[i] = basis[i] + k*dev[i]
		lower[i] = basis[i] - k*dev[i]
	}
	return market.Bundle{
		{Name: "basis", Points: market.SeriesAt(bars, n-1, basis)},
		{Name: "upper", Points: market.SeriesAt(bars, n-1, upper)},
		{Name: "lower", Points: market.SeriesAt(bars, n-1, lower)},
	}
}

// Envelope SMA 包络，百分比带宽，有效后缀输出。
func Envelope(bars []market.Bar, n int, percent float64) market.Bundle {
	if n <= 0 || n > len(bars) {
		return nil
	}
	basis := sma(market.Closes(bars), n)
	upper := make([]float64, len(basis))
	lower := make([]float64, len(basis))
	for i, v := range basis {
		upper[i] = v * (1 + percent/100)
		lower[i] = v * (1 - percent/100)
	}
	return market.Bundle{
		{Name: "basis", Points: market.SeriesAt(bars, n-1, basis)},
		{Name: "upper", Points: market.SeriesAt(bars, n-1, upper)},
		{Name: "lower", Points: market.SeriesAt(bars, n-1, lower)},
	}
}

// Median rolling median of hl2 with ATR bands. Full-length with NaN
// prefix while either the median window or the ATR is warming up.
func Median(bars []market.Bar, n int, mult float64) market.Bundle {
	if n <= 0 || n > len(bars) {
		return nil
	}
	hl2 := make([]float64, len(bars))
	for i, b := range bars {
		hl2[i] = b.HL2()
	}
	med := make([]float64, len(bars))
	window := make([]float64, 0, n)
	for i := range bars {
		if i < n-1 {
			med[i] = math.NaN()
			continue
		}
		window = window[:0]
		window = append(window, hl2[i-n+1:i+1]...)
		sort.Float64s(window)
		if n%2 == 1 {
			med[i] = window[n/2]
		} else {
			med[i] = (window[n/2-1] + window[n/2]) / 2
		}
	}
	atr := atrValues(bars, n)
	upper := make([]float64, len(bars))
	lower := make([]float64, len(bars))
	for i := range bars {
		if !isFinite(med[i]) || !isFinite(atr[i]) {
			upper[i], lower[i] = math.NaN(), math.NaN()
			continue
		}
		upper[i] = med[i] + mult*atr[i]
		lower[i] = med[i] - mult*atr[i]
	}
	return market.Bundle{
		{Name: "median", Points: market.FullSeries(bars, med)},
		{Name: "upper", Points: market.FullSeries(bars, upper)},
		{Name: "lower", Points: market.FullSeries(bars, lower)},
	}
}

// LinearRegression least-squares fit of close against bar index over
// the trailing n bars. Reports the fitted endpoint, Pearson's r (0 when
// the window has zero variance) and asymmetric residual-stdev bands.
// Valid-suffix output.
func LinearRegression(bars []market.Bar, n int, upperDev, lowerDev float64) market.Bundle {
	if n <= 1 || n > len(bars) {
		return nil
	}
	closes := market.Closes(bars)
	count := len(bars) - n + 1
	basis := make([]float64, count)
	upper := make([]float64, count)
	lower := make([]float64, count)
	pearson := make([]float64, count)
	fn := float64(n)
	// x = 0..n-1 within each window; sums of x and x^2 are constant.
	sumX := fn * (fn - 1) / 2
	sumXX := fn * (fn - 1) * (2*fn - 1) / 6
	varX := sumXX - sumX*sumX/fn
	for i := n - 1; i < len(bars); i++ {
		w := closes[i-n+1 : i+1]
		sumY, sumXY, sumYY := 0.0, 0.0, 0.0
		for x, y := range w {
			sumY += y
			sumXY += float64(x) * y
			sumYY += y * y
		}
		covXY := sumXY - sumX*sumY/fn
		varY := sumYY - sumY*sumY/fn
		slope := 0.0
		if varX != 0 {
			slope = covXY / varX
		}
		intercept := (sumY - slope*sumX) / fn
		fit := intercept + slope*(fn-1)
		resAcc := 0.0
		for x, y := range w {
			r := y - (intercept + slope*float64(x))
			resAcc += r * r
		}
		sd := math.Sqrt(resAcc / fn)
		r := 0.0
		if varY > 0 && varX > 0 {
			r = covXY / math.Sqrt(varX*varY)
		}
		k := i - n + 1
		basis[k] = fit
		upper[k] = fit + upperDev*sd
		lower[k] = fit - lowerDev*sd
		pearson[k] = r
	}
	return market.Bundle{
		{Name: "basis", Points: market.SeriesAt(bars, n-1, basis)},
		{Name: "upper", Points: market.SeriesAt(bars, n-1, upper)},
		{Name: "lower", Points: market.SeriesAt(bars, n-1, lower)},
		{Name: "r", Points: market.SeriesAt(bars, n-1, pearson)},
	}
}
