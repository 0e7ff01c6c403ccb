package indicator

import (
	"math"

	"chartcore/internal/market"
)

// OBV 累计带号成交量，首根为 0，平盘沿用前值。全长输出。
func OBV(bars []market.Bar) market.Series {
	if len(bars) == 0 {
		return nil
	}
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + bars[i].Vol()
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - bars[i].Vol()
		default:
			out[i] = out[i-1]
		}
	}
	return market.FullSeries(bars, out)
}

// PVT 价量趋势：累计 volume*(ΔC/prevC)，零成交量或零前收贡献 0。
func PVT(bars []market.Bar) market.Series {
	if len(bars) == 0 {
		return nil
	}
	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		out[i] = out[i-1]
		v := bars[i].Vol()
		if v == 0 || bars[i-1].Close == 0 {
			continue
		}
		out[i] += v * (bars[i].Close - bars[i-1].Close) / bars[i-1].Close
	}
	return market.FullSeries(bars, out)
}

// volumeIndex 正/负成交量指标共用的复利累计。
func volumeIndex(bars []market.Bar, n int, onIncrease bool) market.Bundle {
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	idx := make([]float64, len(bars))
	idx[0] = 1000
	for i := 1; i < len(bars); i++ {
		idx[i] = idx[i-1]
		trigger := bars[i].Vol() > bars[i-1].Vol()
		if !onIncrease {
			trigger = bars[i].Vol() < bars[i-1].Vol()
		}
		if trigger && bars[i-1].Close != 0 {
			idx[i] *= 1 + (bars[i].Close-bars[i-1].Close)/bars[i-1].Close
		}
	}
	return market.Bundle{
		{Name: "index", Points: market.FullSeries(bars, idx)},
		{Name: "ema", Points: market.FullSeries(bars, ema(idx, n))},
	}
}

// PVI 正成交量指标（种子 1000，仅在放量 K 线复利）及其 EMA 叠加线。
func PVI(bars []market.Bar, n int) market.Bundle { return volumeIndex(bars, n, true) }

// NVI 负成交量指标，仅在缩量 K 线复利。
func NVI(bars []market.Bar, n int) market.Bundle { return volumeIndex(bars, n, false) }

// CMF Chaikin 资金流：滚动资金流量除以滚动成交量。H=L 时乘数为 0，
// 窗口成交量合计为 0 时结果为 0（不是 NaN）。全长 NaN 前缀输出，
// 有效值总在 [-1,1]。
func CMF(bars []market.Bar, n int) market.Series {
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	mfv := make([]float64, len(bars))
	vols := market.Volumes(bars)
	for i, b := range bars {
		hl := b.High - b.Low
		if hl == 0 {
			continue
		}
		mult := ((b.Close - b.Low) - (b.High - b.Close)) / hl
		mfv[i] = mult * vols[i]
	}
	out := make([]float64, len(bars))
	sumMFV, sumVol := 0.0, 0.0
	for i := range bars {
		sumMFV += mfv[i]
		sumVol += vols[i]
		if i >= n {
			sumMFV -= mfv[i-n]
			sumVol -= vols[i-n]
		}
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		if sumVol == 0 {
			out[i] = 0
			continue
		}
		out[i] = sumMFV / sumVol
	}
	return market.FullSeries(bars, out)
}

// Klinger 成交量力度振荡器。力度项的累计量 cm 在趋势翻转时重置，
// 力度与信号线均为全精度 EMA，不带额外缩放系数。从第二根起输出。
func Klinger(bars []market.Bar, fast, slow, signal int) market.Bundle {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(bars) < 2 {
		return nil
	}
	n := len(bars) - 1
	vf := make([]float64, n)
	prevTrend := 0.0
	cm := 0.0
	prevDM := bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		trend := 1.0
		if bars[i].High+bars[i].Low+bars[i].Close <= bars[i-1].High+bars[i-1].Low+bars[i-1].Close {
			trend = -1.0
		}
		dm := bars[i].High - bars[i].Low
		if trend == prevTrend {
			cm += dm
		} else {
			cm = prevDM + dm
		}
		if cm != 0 {
			vf[i-1] = bars[i].Vol() * math.Abs(2*dm/cm-1) * trend
		}
		prevTrend = trend
		prevDM = dm
	}
	kvo := make([]float64, n)
	fastEMA := ema(vf, fast)
	slowEMA := ema(vf, slow)
	for i := range kvo {
		kvo[i] = fastEMA[i] - slowEMA[i]
	}
	return market.Bundle{
		{Name: "kvo", Points: market.SeriesAt(bars, 1, kvo)},
		{Name: "signal", Points: market.SeriesAt(bars, 1, ema(kvo, signal))},
	}
}

// barDeltas 按收开关系给每根 K 线的成交量定号。十字星沿用上一根的
// 方向，序列开头的十字星默认按买方计。
func barDeltas(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	sign := 1.0
	for i, b := range bars {
		switch {
		case b.Close > b.Open:
			sign = 1
		case b.Close < b.Open:
			sign = -1
		}
		out[i] = sign * b.Vol()
	}
	return out
}

// VolumeDelta per-bar delta candles: each bar's signed volume rendered
// as an open/high/low/close bundle anchored at zero. Full-length.
func VolumeDelta(bars []market.Bar) market.Bundle {
	if len(bars) == 0 {
		return nil
	}
	deltas := barDeltas(bars)
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	cls := make([]float64, len(bars))
	for i, d := range deltas {
		cls[i] = d
		high[i] = math.Max(0, d)
		low[i] = math.Min(0, d)
	}
	return market.Bundle{
		{Name: "open", Points: market.FullSeries(bars, open)},
		{Name: "high", Points: market.FullSeries(bars, high)},
		{Name: "low", Points: market.FullSeries(bars, low)},
		{Name: "close", Points: market.FullSeries(bars, cls)},
	}
}

// CVD 累计成交量差，在每个锚定周期开头归零。周期边界由相邻两根
// K 线的 UTC 日历字段比较决定。全长输出。
func CVD(bars []market.Bar, anchor market.Anchor) market.Series {
	if len(bars) == 0 {
		return nil
	}
	deltas := barDeltas(bars)
	out := make([]float64, len(bars))
	running := 0.0
	for i := range bars {
		if i > 0 && !anchor.SamePeriod(bars[i-1].Time, bars[i].Time) {
			running = 0
		}
		running += deltas[i]
		out[i] = running
	}
	return market.FullSeries(bars, out)
}

// ADRatio 涨跌家数比。跌家数为 0 时直接取涨家数（按除 1 处理)，
// 两者皆 0 时为 0，保证有效点不出现 Inf。
func ADRatio(breadth []market.Breadth) market.Series {
	out := make(market.Series, len(breadth))
	for i, b := range breadth {
		v := 0.0
		switch {
		case b.Declines != 0:
			v = b.Advances / b.Declines
		case b.Advances != 0:
			v = b.Advances
		}
		out[i] = market.Point{Time: b.Time, Value: v}
	}
	return out
}

// ADLine 累计净涨家数。
func ADLine(breadth []market.Breadth) market.Series {
	out := make(market.Series, len(breadth))
	running := 0.0
	for i, b := range breadth {
		running += b.Advances - b.Declines
		out[i] = market.Point{Time: b.Time, Value: running}
	}
	return out
}

// CVI 累计成交量指数：累计（上涨成交量-下跌成交量）。
func CVI(breadth []market.Breadth) market.Series {
	out := make(market.Series, len(breadth))
	running := 0.0
	for i, b := range breadth {
		running += b.AdvancingVolume - b.DecliningVolume
		out[i] = market.Point{Time: b.Time, Value: running}
	}
	return out
}
