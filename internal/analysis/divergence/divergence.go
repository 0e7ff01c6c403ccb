// Package divergence pairs price pivots with oscillator pivots and
// classifies regular bullish/bearish divergence.
package divergence

import (
	"math"

	"chartcore/internal/analysis/indicator"
	"chartcore/internal/analysis/swing"
	"chartcore/internal/market"
)

// Signal 一次配对成功的背离。Start/End 指较早与较晚的一对枢轴。
type Signal struct {
	Bullish    bool    `json:"bullish"`
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	StartTime  int64   `json:"start_time"`
	EndTime    int64   `json:"end_time"`
	PriceStart float64 `json:"price_start"`
	PriceEnd   float64 `json:"price_end"`
	OscStart   float64 `json:"osc_start"`
	OscEnd     float64 `json:"osc_end"`
}

// RSIConfig RSI 背离参数。
type RSIConfig struct {
	RSIPeriod       int `json:"rsi_period"`
	PivotLeft       int `json:"pivot_left"`
	PivotRight      int `json:"pivot_right"`
	Lookback        int `json:"lookback"`
	MaxPairDistance int `json:"max_pair_distance"`
}

func DefaultRSIConfig() RSIConfig {
	return RSIConfig{RSIPeriod: 14, PivotLeft: 5, PivotRight: 5, Lookback: 200, MaxPairDistance: 3}
}

// RSIDivergence 在有界回看窗口内对价格和 RSI 两条轴分别跑枢轴检测，
// 同极性的枢轴在最大间距内配对：价格更低的低点 + 振荡器更高的低点
// 为看涨背离，反向为看跌。数据不足时返回空集，不报错。
func RSIDivergence(bars []market.Bar, cfg RSIConfig) []Signal {
	if cfg.RSIPeriod <= 0 || cfg.PivotLeft <= 0 || cfg.PivotRight <= 0 {
		return nil
	}
	minBars := cfg.RSIPeriod + cfg.PivotLeft + cfg.PivotRight + 2
	if len(bars) < minBars {
		return nil
	}
	if cfg.Lookback > 0 && len(bars) > cfg.Lookback {
		bars = bars[len(bars)-cfg.Lookback:]
	}
	rsi := indicator.RSIValues(market.Closes(bars), cfg.RSIPeriod)
	times := make([]int64, len(bars))
	for i, b := range bars {
		times[i] = b.Time
	}

	var out []Signal
	out = append(out, pair(
		swing.PivotLows(bars, cfg.PivotLeft, cfg.PivotRight),
		swing.PivotValues(rsi, times, cfg.PivotLeft, cfg.PivotRight, false),
		cfg.MaxPairDistance, true)...)
	out = append(out, pair(
		swing.PivotHighs(bars, cfg.PivotLeft, cfg.PivotRight),
		swing.PivotValues(rsi, times, cfg.PivotLeft, cfg.PivotRight, true),
		cfg.MaxPairDistance, false)...)
	return out
}

// pair walks consecutive price pivots, matches each against the nearest
// oscillator pivot of the same polarity, and keeps the pairs whose price
// and oscillator slopes disagree.
func pair(price, osc []swing.Pivot, maxDist int, bullish bool) []Signal {
	if len(price) < 2 || len(osc) < 2 {
		return nil
	}
	var out []Signal
	for i := 1; i < len(price); i++ {
		p1, p2 := price[i-1], price[i]
		o1 := nearest(osc, p1.Index, maxDist)
		o2 := nearest(osc, p2.Index, maxDist)
		if o1 == nil || o2 == nil || o1.Index == o2.Index {
			continue
		}
		if bullish {
			if !(p2.Price < p1.Price && o2.Price > o1.Price) {
				continue
			}
		} else {
			if !(p2.Price > p1.Price && o2.Price < o1.Price) {
				continue
			}
		}
		out = append(out, Signal{
			Bullish:    bullish,
			StartIndex: p1.Index, EndIndex: p2.Index,
			StartTime: p1.Time, EndTime: p2.Time,
			PriceStart: p1.Price, PriceEnd: p2.Price,
			OscStart: o1.Price, OscEnd: o2.Price,
		})
	}
	return out
}

func nearest(pivots []swing.Pivot, index, maxDist int) *swing.Pivot {
	var best *swing.Pivot
	bestDist := maxDist + 1
	for i := range pivots {
		d := pivots[i].Index - index
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best = &pivots[i]
			bestDist = d
		}
	}
	return best
}

// KnoxvilleConfig Knoxville 背离参数。
type KnoxvilleConfig struct {
	RSIPeriod      int     `json:"rsi_period"`
	MomentumPeriod int     `json:"momentum_period"`
	Lookback       int     `json:"lookback"`
	Overbought     float64 `json:"overbought"`
	Oversold       float64 `json:"oversold"`
}

func DefaultKnoxvilleConfig() KnoxvilleConfig {
	return KnoxvilleConfig{RSIPeriod: 21, MomentumPeriod: 20, Lookback: 30, Overbought: 70, Oversold: 30}
}

// Knoxville 背离：价格创出更高高点而动量走低、且 RSI 在区间内触及
// 超买 → 看跌；镜像条件为看涨。每根至多一个信号，且跨度不重叠。
func Knoxville(bars []market.Bar, cfg KnoxvilleConfig) []Signal {
	if cfg.RSIPeriod <= 0 || cfg.MomentumPeriod <= 0 || cfg.Lookback <= 0 {
		return nil
	}
	need := cfg.RSIPeriod + 1
	if cfg.MomentumPeriod+1 > need {
		need = cfg.MomentumPeriod + 1
	}
	if len(bars) < need {
		return nil
	}
	closes := market.Closes(bars)
	rsi := indicator.RSIValues(closes, cfg.RSIPeriod)
	mom := make([]float64, len(bars))
	for i := range mom {
		if i < cfg.MomentumPeriod {
			mom[i] = math.NaN()
			continue
		}
		mom[i] = closes[i] - closes[i-cfg.MomentumPeriod]
	}

	var out []Signal
	lastEnd := -1
	for i := range bars {
		if !finite(mom[i]) || !finite(rsi[i]) || i <= lastEnd {
			continue
		}
		lo := i - cfg.Lookback
		if lo < 0 {
			lo = 0
		}
		for j := i - 1; j >= lo; j-- {
			if !finite(mom[j]) || !finite(rsi[j]) {
				continue
			}
			if closes[i] > closes[j] && mom[i] < mom[j] && rsiTouched(rsi, j, i, cfg.Overbought, true) {
				out = append(out, Signal{
					Bullish:    false,
					StartIndex: j, EndIndex: i,
					StartTime: bars[j].Time, EndTime: bars[i].Time,
					PriceStart: closes[j], PriceEnd: closes[i],
					OscStart: mom[j], OscEnd: mom[i],
				})
				lastEnd = i
				break
			}
			if closes[i] < closes[j] && mom[i] > mom[j] && rsiTouched(rsi, j, i, cfg.Oversold, false) {
				out = append(out, Signal{
					Bullish:    true,
					StartIndex: j, EndIndex: i,
					StartTime: bars[j].Time, EndTime: bars[i].Time,
					PriceStart: closes[j], PriceEnd: closes[i],
					OscStart: mom[j], OscEnd: mom[i],
				})
				lastEnd = i
				break
			}
		}
	}
	return out
}

func rsiTouched(rsi []float64, from, to int, level float64, above bool) bool {
	for i := from; i <= to; i++ {
		if !finite(rsi[i]) {
			continue
		}
		if above && rsi[i] >= level {
			return true
		}
		if !above && rsi[i] <= level {
			return true
		}
	}
	return false
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
