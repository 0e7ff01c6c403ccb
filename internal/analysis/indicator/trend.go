package indicator

import (
	"math"
	"sort"

	"chartcore/internal/market"
)

// ADX returns the adx/plusDI/minusDI bundle. DI lines are defined from
// bar n, ADX from bar n+adxN-1 (valid-suffix each); ADX is clamped to
// [0,100].
func ADX(bars []market.Bar, n, adxN int) market.Bundle {
	if n <= 0 || adxN <= 0 || len(bars) <= n+adxN-1 {
		return nil
	}
	count := len(bars) - 1
	plusDM := make([]float64, count)
	minusDM := make([]float64, count)
	tr := trueRanges(bars)[1:]
	for i := 1; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}
	smPlus := rma(plusDM, n)
	smMinus := rma(minusDM, n)
	smTR := rma(tr, n)
	plusDI := make([]float64, len(smTR))
	minusDI := make([]float64, len(smTR))
	dx := make([]float64, len(smTR))
	for i := range smTR {
		if smTR[i] == 0 {
			plusDI[i], minusDI[i] = 0, 0
		} else {
			plusDI[i] = 100 * smPlus[i] / smTR[i]
			minusDI[i] = 100 * smMinus[i] / smTR[i]
		}
		sum := plusDI[i] + minusDI[i]
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
	}
	adx := rma(dx, adxN)
	for i, v := range adx {
		adx[i] = math.Min(100, math.Max(0, v))
	}
	return market.Bundle{
		{Name: "adx", Points: market.SeriesAt(bars, n+adxN-1, adx)},
		{Name: "plusDI", Points: market.SeriesAt(bars, n, plusDI)},
		{Name: "minusDI", Points: market.SeriesAt(bars, n, minusDI)},
	}
}

// AlligatorConfig 三条 SMMA 的周期与前移根数（TV 默认 13/8, 8/5, 5/3）。
type AlligatorConfig struct {
	JawLen, JawOffset     int
	TeethLen, TeethOffset int
	LipsLen, LipsOffset   int
}

func DefaultAlligator() AlligatorConfig {
	return AlligatorConfig{JawLen: 13, JawOffset: 8, TeethLen: 8, TeethOffset: 5, LipsLen: 5, LipsOffset: 3}
}

// Alligator jaw/teeth/lips：hl2 上的三条 Wilder SMMA，各自整体向未来
// 平移。平移超出最后一根时，按中位数 bar 间距外推时间。
func Alligator(bars []market.Bar, cfg AlligatorConfig) market.Bundle {
	if len(bars) == 0 {
		return nil
	}
	hl2 := make([]float64, len(bars))
	for i, b := range bars {
		hl2[i] = b.HL2()
	}
	spacing := barSpacing(bars)
	line := func(n, shift int) market.Series {
		vals := rma(hl2, n)
		if vals == nil {
			return nil
		}
		out := make(market.Series, len(vals))
		for i, v := range vals {
			idx := n - 1 + i + shift
			var ts int64
			if idx < len(bars) {
				ts = bars[idx].Time
			} else {
				ts = bars[len(bars)-1].Time + int64(idx-len(bars)+1)*spacing
			}
			out[i] = market.Point{Time: ts, Value: v}
		}
		return out
	}
	return market.Bundle{
		{Name: "jaw", Points: line(cfg.JawLen, cfg.JawOffset)},
		{Name: "teeth", Points: line(cfg.TeethLen, cfg.TeethOffset)},
		{Name: "lips", Points: line(cfg.LipsLen, cfg.LipsOffset)},
	}
}

// barSpacing median spacing between consecutive bars, in seconds.
func barSpacing(bars []market.Bar) int64 {
	if len(bars) < 2 {
		return 60
	}
	diffs := make([]int64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		diffs = append(diffs, bars[i].Time-bars[i-1].Time)
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i] < diffs[j] })
	return diffs[len(diffs)/2]
}

// Fractals Williams 分形：k 根两侧严格比较，稀疏输出。一个分形要等
// 右侧 k 根收完才能确认，点的时间仍取分形所在 K 线。
func Fractals(bars []market.Bar, k int) market.Bundle {
	if k <= 0 || len(bars) < 2*k+1 {
		return nil
	}
	var up, down market.Series
	for i := k; i < len(bars)-k; i++ {
		isUp, isDown := true, true
		for j := 1; j <= k; j++ {
			if bars[i-j].High >= bars[i].High || bars[i+j].High >= bars[i].High {
				isUp = false
			}
			if bars[i-j].Low <= bars[i].Low || bars[i+j].Low <= bars[i].Low {
				isDown = false
			}
			if !isUp && !isDown {
				break
			}
		}
		if isUp {
			up = append(up, market.Point{Time: bars[i].Time, Value: bars[i].High})
		}
		if isDown {
			down = append(down, market.Point{Time: bars[i].Time, Value: bars[i].Low})
		}
	}
	return market.Bundle{
		{Name: "up", Points: up},
		{Name: "down", Points: down},
	}
}
