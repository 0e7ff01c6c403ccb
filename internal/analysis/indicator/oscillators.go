package indicator

import (
	"math"

	"chartcore/internal/market"
)

// rsiValues 全长 RSI，前 n 根为 NaN。avgLoss 为 0 时 RS 按 100 处理，
// 避免除零泄漏。
func rsiValues(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= 0 || len(values) <= n {
		return out
	}
	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= n; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	out[n] = rsiFromAverages(avgGain, avgLoss)
	for i := n + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(n-1) + gain) / float64(n)
		avgLoss = (avgLoss*float64(n-1) + loss) / float64(n)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs)
}

// RSIValues 暴露全长（NaN 前缀）形式，背离检测要和价格轴逐根对齐。
func RSIValues(closes []float64, n int) []float64 {
	return rsiValues(closes, n)
}

// RSI Wilder 相对强弱指标，有效后缀输出（首个值在第 n+1 根）。
func RSI(bars []market.Bar, n int) market.Series {
	if n <= 0 || len(bars) <= n {
		return nil
	}
	full := rsiValues(market.Closes(bars), n)
	return market.SeriesAt(bars, n, full[n:])
}

// MACD returns the macd/signal/histogram bundle. All three lines are
// full-length because the underlying EMAs have no warm-up gap.
func MACD(bars []market.Bar, fast, slow, signal int) market.Bundle {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(bars) == 0 {
		return nil
	}
	closes := market.Closes(bars)
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)
	macd := make([]float64, len(bars))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	sig := ema(macd, signal)
	hist := make([]float64, len(bars))
	for i := range hist {
		hist[i] = macd[i] - sig[i]
	}
	return market.Bundle{
		{Name: "macd", Points: market.FullSeries(bars, macd)},
		{Name: "signal", Points: market.FullSeries(bars, sig)},
		{Name: "histogram", Points: market.FullSeries(bars, hist)},
	}
}

// stochK raw %K of src against rolling high/low windows. Full-length,
// NaN until the window fills; zero range collapses to 0.
func stochK(src, highs, lows []float64, n int) []float64 {
	out := make([]float64, len(src))
	for i := range src {
		if n <= 0 || i < n-1 {
			out[i] = math.NaN()
			continue
		}
		hi, lo := math.Inf(-1), math.Inf(1)
		valid := true
		for j := i - n + 1; j <= i; j++ {
			if !isFinite(highs[j]) || !isFinite(lows[j]) || !isFinite(src[j]) {
				valid = false
				break
			}
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		if hi == lo {
			out[i] = 0
			continue
		}
		out[i] = (src[i] - lo) / (hi - lo) * 100
	}
	return out
}

// Stochastic %K/%D，全长 NaN 前缀输出，二者均在 [0,100]。
func Stochastic(bars []market.Bar, n, kSmooth, d int) market.Bundle {
	if n <= 0 || kSmooth <= 0 || d <= 0 || len(bars) == 0 {
		return nil
	}
	fastK := stochK(market.Closes(bars), market.Highs(bars), market.Lows(bars), n)
	k := smaNaN(fastK, kSmooth)
	dd := smaNaN(k, d)
	return market.Bundle{
		{Name: "k", Points: market.FullSeries(bars, k)},
		{Name: "d", Points: market.FullSeries(bars, dd)},
	}
}

// StochRSI 对 RSI 序列做嵌套随机指标。全长 NaN 前缀输出。
func StochRSI(bars []market.Bar, rsiN, stochN, kSmooth, d int) market.Bundle {
	if rsiN <= 0 || stochN <= 0 || kSmooth <= 0 || d <= 0 || len(bars) == 0 {
		return nil
	}
	rsi := rsiValues(market.Closes(bars), rsiN)
	fastK := stochK(rsi, rsi, rsi, stochN)
	k := smaNaN(fastK, kSmooth)
	dd := smaNaN(k, d)
	return market.Bundle{
		{Name: "k", Points: market.FullSeries(bars, k)},
		{Name: "d", Points: market.FullSeries(bars, dd)},
	}
}

// WilliamsR %R，全长 NaN 前缀输出，取值 [-100,0]，零区间按 0 处理。
func WilliamsR(bars []market.Bar, n int) market.Series {
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	highs, lows, closes := market.Highs(bars), market.Lows(bars), market.Closes(bars)
	out := make([]float64, len(bars))
	for i := range bars {
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		hi, lo := highs[i], lows[i]
		for j := i - n + 1; j <= i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			out[i] = 0
			continue
		}
		out[i] = (hi - closes[i]) / (hi - lo) * -100
	}
	return market.FullSeries(bars, out)
}

// CCI 商品通道指标，有效后缀输出，零平均偏差按 0 处理。
func CCI(bars []market.Bar, n int) market.Series {
	if n <= 0 || n > len(bars) {
		return nil
	}
	tp := make([]float64, len(bars))
	for i, b := range bars {
		tp[i] = b.HLC3()
	}
	out := make([]float64, 0, len(bars)-n+1)
	for i := n - 1; i < len(bars); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += tp[j]
		}
		mean /= float64(n)
		md := 0.0
		for j := i - n + 1; j <= i; j++ {
			md += math.Abs(tp[j] - mean)
		}
		md /= float64(n)
		if md == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (tp[i]-mean)/(0.015*md))
	}
	return market.SeriesAt(bars, n-1, out)
}

// Aroon up/down over an n+1 bar window. Full-length with an n-bar NaN
// prefix; both lines live in [0,100].
func Aroon(bars []market.Bar, n int) market.Bundle {
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	highs, lows := market.Highs(bars), market.Lows(bars)
	up := make([]float64, len(bars))
	down := make([]float64, len(bars))
	for i := range bars {
		if i < n {
			up[i] = math.NaN()
			down[i] = math.NaN()
			continue
		}
		hiIdx, loIdx := i-n, i-n
		for j := i - n; j <= i; j++ {
			if highs[j] >= highs[hiIdx] {
				hiIdx = j
			}
			if lows[j] <= lows[loIdx] {
				loIdx = j
			}
		}
		up[i] = 100 * float64(n-(i-hiIdx)) / float64(n)
		down[i] = 100 * float64(n-(i-loIdx)) / float64(n)
	}
	return market.Bundle{
		{Name: "up", Points: market.FullSeries(bars, up)},
		{Name: "down", Points: market.FullSeries(bars, down)},
	}
}

// Vortex VI+/VI-，全长输出，前 n 根为 NaN，TR 合计为 0 时按 0 处理。
func Vortex(bars []market.Bar, n int) market.Bundle {
	if n <= 0 || len(bars) < 2 {
		return nil
	}
	vmPlus := make([]float64, len(bars))
	vmMinus := make([]float64, len(bars))
	tr := trueRanges(bars)
	for i := 1; i < len(bars); i++ {
		vmPlus[i] = math.Abs(bars[i].High - bars[i-1].Low)
		vmMinus[i] = math.Abs(bars[i].Low - bars[i-1].High)
	}
	plus := make([]float64, len(bars))
	minus := make([]float64, len(bars))
	for i := range bars {
		if i < n {
			plus[i] = math.NaN()
			minus[i] = math.NaN()
			continue
		}
		sumP, sumM, sumTR := 0.0, 0.0, 0.0
		for j := i - n + 1; j <= i; j++ {
			sumP += vmPlus[j]
			sumM += vmMinus[j]
			sumTR += tr[j]
		}
		if sumTR == 0 {
			plus[i], minus[i] = 0, 0
			continue
		}
		plus[i] = sumP / sumTR
		minus[i] = sumM / sumTR
	}
	return market.Bundle{
		{Name: "plus", Points: market.FullSeries(bars, plus)},
		{Name: "minus", Points: market.FullSeries(bars, minus)},
	}
}
