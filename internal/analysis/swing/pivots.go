// Package swing implements extremum detection: range extremes,
// confirmed pivots, the hysteresis ZigZag state machine, calendar
// pivot-point levels and Fibonacci projections.
package swing

import "chartcore/internal/market"

// Extreme 区间极值查询结果。
type Extreme struct {
	Price float64 `json:"price"`
	Index int     `json:"index"`
	Time  int64   `json:"time"`
}

// HighestIn O(n) 扫描闭区间 [from,to] 的最高 high；区间非法返回 nil。
func HighestIn(bars []market.Bar, from, to int) *Extreme {
	if from < 0 || to >= len(bars) || from > to {
		return nil
	}
	best := from
	for i := from + 1; i <= to; i++ {
		if bars[i].High > bars[best].High {
			best = i
		}
	}
	return &Extreme{Price: bars[best].High, Index: best, Time: bars[best].Time}
}

// LowestIn 闭区间最低 low；区间非法返回 nil。
func LowestIn(bars []market.Bar, from, to int) *Extreme {
	if from < 0 || to >= len(bars) || from > to {
		return nil
	}
	best := from
	for i := from + 1; i <= to; i++ {
		if bars[i].Low < bars[best].Low {
			best = i
		}
	}
	return &Extreme{Price: bars[best].Low, Index: best, Time: bars[best].Time}
}

// Pivot 已确认的局部极值。确认天然滞后 rightBars 根：在那之前无法
// 知道它是不是枢轴。
type Pivot struct {
	IsHigh    bool    `json:"is_high"`
	Price     float64 `json:"price"`
	Index     int     `json:"index"`
	Time      int64   `json:"time"`
	LeftBars  int     `json:"left_bars"`
	RightBars int     `json:"right_bars"`
}

// PivotHighs 对左右窗口做严格比较的枢轴高点。
func PivotHighs(bars []market.Bar, leftBars, rightBars int) []Pivot {
	return pivots(bars, leftBars, rightBars, true)
}

// PivotLows 对左右窗口做严格比较的枢轴低点。
func PivotLows(bars []market.Bar, leftBars, rightBars int) []Pivot {
	return pivots(bars, leftBars, rightBars, false)
}

func pivots(bars []market.Bar, leftBars, rightBars int, isHigh bool) []Pivot {
	if leftBars <= 0 || rightBars <= 0 {
		return nil
	}
	var out []Pivot
	for i := leftBars; i < len(bars)-rightBars; i++ {
		v := value(bars[i], isHigh)
		ok := true
		for j := i - leftBars; j <= i+rightBars; j++ {
			if j == i {
				continue
			}
			other := value(bars[j], isHigh)
			if isHigh && other >= v {
				ok = false
				break
			}
			if !isHigh && other <= v {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Pivot{
				IsHigh:    isHigh,
				Price:     v,
				Index:     i,
				Time:      bars[i].Time,
				LeftBars:  leftBars,
				RightBars: rightBars,
			})
		}
	}
	return out
}

// PivotValues runs pivot detection over an arbitrary aligned value
// slice (an oscillator line, say) instead of bar highs/lows. NaN warm-up
// samples never qualify and never disqualify a neighbour window that
// excludes them — a window touching NaN is simply rejected.
func PivotValues(values []float64, times []int64, leftBars, rightBars int, isHigh bool) []Pivot {
	if leftBars <= 0 || rightBars <= 0 || len(values) != len(times) {
		return nil
	}
	var out []Pivot
	for i := leftBars; i < len(values)-rightBars; i++ {
		v := values[i]
		if v != v { // NaN
			continue
		}
		ok := true
		for j := i - leftBars; j <= i+rightBars; j++ {
			if j == i {
				continue
			}
			other := values[j]
			if other != other {
				ok = false
				break
			}
			if isHigh && other >= v {
				ok = false
				break
			}
			if !isHigh && other <= v {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Pivot{
				IsHigh:    isHigh,
				Price:     v,
				Index:     i,
				Time:      times[i],
				LeftBars:  leftBars,
				RightBars: rightBars,
			})
		}
	}
	return out
}

func value(b market.Bar, isHigh bool) float64 {
	if isHigh {
		return b.High
	}
	return b.Low
}
