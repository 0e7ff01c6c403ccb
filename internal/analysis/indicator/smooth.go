// Package indicator implements the technical indicator library. Every
// function recomputes from the full bar history and returns bar-for-bar
// results matching the charting reference formulas, including warm-up
// and NaN conventions.
//
// Two output-length conventions coexist and are part of each
// indicator's contract:
//
//	valid-suffix        output starts at the first defined bar
//	                    (SMA, RMA, WMA, RSI, ATR, ADX, Bollinger,
//	                    Envelope, Ulcer, HV, LinReg, CCI*)
//	full-length padded  output covers every bar, NaN in the warm-up
//	                    prefix (EMA has no warm-up at all; Stochastic,
//	                    StochRSI, Williams %R, Aroon, Vortex, Median
//	                    carry a NaN prefix; cumulative volume series
//	                    are defined from bar 0)
package indicator

import (
	"math"

	"chartcore/internal/market"
)

// sma 有效后缀卷积：返回长度 len(values)-n+1，参数非法时返回 nil。
func sma(values []float64, n int) []float64 {
	if n <= 0 || n > len(values) {
		return nil
	}
	out := make([]float64, 0, len(values)-n+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out = append(out, sum/float64(n))
		}
	}
	return out
}

// ema 全长序列，以首个原始值为种子（不是首个 SMA）。
func ema(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	alpha := 2.0 / float64(n+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*alpha + out[i-1]
	}
	return out
}

// rma Wilder 平滑：首值为前 n 个样本的 SMA，之后递推
// rma[i] = (rma[i-1]*(n-1)+x[i])/n。有效后缀输出。
func rma(values []float64, n int) []float64 {
	if n <= 0 || n > len(values) {
		return nil
	}
	out := make([]float64, 0, len(values)-n+1)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += values[i]
	}
	cur := sum / float64(n)
	out = append(out, cur)
	for i := n; i < len(values); i++ {
		cur = (cur*float64(n-1) + values[i]) / float64(n)
		out = append(out, cur)
	}
	return out
}

// wma 线性加权，权重 1..n 向最新一根递增。有效后缀输出。
func wma(values []float64, n int) []float64 {
	if n <= 0 || n > len(values) {
		return nil
	}
	norm := float64(n*(n+1)) / 2
	out := make([]float64, 0, len(values)-n+1)
	for i := n - 1; i < len(values); i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += values[i-n+1+j] * float64(j+1)
		}
		out = append(out, sum/norm)
	}
	return out
}

// smaNaN is the full-length, NaN-aware variant: any window touching a
// non-finite sample yields NaN, the warm-up prefix is NaN. Used when
// smoothing series that themselves carry a NaN prefix.
func smaNaN(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	if n <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	for i := range values {
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		valid := true
		for j := i - n + 1; j <= i; j++ {
			if !isFinite(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// stdevPop population standard deviation of the trailing window ending
// at each valid-suffix position. Mirrors the charting stdev used by
// Bollinger bands.
func stdevPop(values []float64, n int) []float64 {
	if n <= 0 || n > len(values) {
		return nil
	}
	out := make([]float64, 0, len(values)-n+1)
	for i := n - 1; i < len(values); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(n)
		acc := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := values[j] - mean
			acc += d * d
		}
		out = append(out, math.Sqrt(acc/float64(n)))
	}
	return out
}

// rollingHighest/rollingLowest: full-length with NaN prefix of n-1.
func rollingHighest(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if n <= 0 || i < n-1 {
			out[i] = math.NaN()
			continue
		}
		hi := values[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if values[j] > hi {
				hi = values[j]
			}
		}
		out[i] = hi
	}
	return out
}

func rollingLowest(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if n <= 0 || i < n-1 {
			out[i] = math.NaN()
			continue
		}
		lo := values[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if values[j] < lo {
				lo = values[j]
			}
		}
		out[i] = lo
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SMA 简单移动平均（收盘价），有效后缀输出；n=1 为恒等。
func SMA(bars []market.Bar, n int) market.Series {
	vals := sma(market.Closes(bars), n)
	if vals == nil {
		return nil
	}
	return market.SeriesAt(bars, n-1, vals)
}

// EMA 指数移动平均（收盘价），全长输出，无预热缺口。
func EMA(bars []market.Bar, n int) market.Series {
	vals := ema(market.Closes(bars), n)
	if vals == nil {
		return nil
	}
	return market.FullSeries(bars, vals)
}

// RMA Wilder 平滑移动平均（收盘价），有效后缀输出。
func RMA(bars []market.Bar, n int) market.Series {
	vals := rma(market.Closes(bars), n)
	if vals == nil {
		return nil
	}
	return market.SeriesAt(bars, n-1, vals)
}

// WMA 线性加权移动平均（收盘价），有效后缀输出。
func WMA(bars []market.Bar, n int) market.Series {
	vals := wma(market.Closes(bars), n)
	if vals == nil {
		return nil
	}
	return market.SeriesAt(bars, n-1, vals)
}
