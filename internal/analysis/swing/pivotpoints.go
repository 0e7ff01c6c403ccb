package swing

import (
	"fmt"
	"strings"

	"chartcore/internal/market"
)

// PivotType 枢轴点公式族。
type PivotType string

const (
	PivotTraditional PivotType = "traditional"
	PivotFibonacci   PivotType = "fibonacci"
	PivotWoodie      PivotType = "woodie"
	PivotCamarilla   PivotType = "camarilla"
	PivotDeMark      PivotType = "demark"
)

// ParsePivotType maps a param string onto a formula family.
func ParsePivotType(s string) (PivotType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "traditional", "classic":
		return PivotTraditional, nil
	case "fibonacci", "fib":
		return PivotFibonacci, nil
	case "woodie":
		return PivotWoodie, nil
	case "camarilla":
		return PivotCamarilla, nil
	case "demark":
		return PivotDeMark, nil
	}
	return PivotTraditional, fmt.Errorf("unknown pivot type %q", s)
}

// AnchorForResolution 图表周期到枢轴锚定周期的自动映射：
// 日内→日，日线→周，周线及以上→月。周期串沿用图表习惯
// （分钟数、"D"、"W"、"M"）。
func AnchorForResolution(res string) market.Anchor {
	switch strings.ToUpper(strings.TrimSpace(res)) {
	case "D", "1D":
		return market.AnchorWeek
	case "W", "1W", "M", "1M", "3M", "6M", "12M":
		return market.AnchorMonth
	default:
		return market.AnchorSession
	}
}

// PivotPeriod 一个锚定周期的枢轴位集合。第 N 期的位由第 N−1 期的
// O/H/L/C 算出——周期永远不用自己尚在形成的数据。
type PivotPeriod struct {
	StartTime int64              `json:"start_time"`
	EndTime   int64              `json:"end_time"`
	Levels    map[string]float64 `json:"levels"`
	PivotType PivotType          `json:"pivot_type"`
}

type periodOHLC struct {
	start, end int64
	o, h, l, c float64
}

// PivotPoints 按锚定周期分桶并投影上一期的枢轴位。
func PivotPoints(bars []market.Bar, typ PivotType, anchor market.Anchor) []PivotPeriod {
	buckets := bucketize(bars, anchor)
	if len(buckets) < 2 {
		return nil
	}
	out := make([]PivotPeriod, 0, len(buckets)-1)
	for i := 1; i < len(buckets); i++ {
		prev := buckets[i-1]
		out = append(out, PivotPeriod{
			StartTime: buckets[i].start,
			EndTime:   buckets[i].end,
			Levels:    pivotLevels(typ, prev.o, prev.h, prev.l, prev.c),
			PivotType: typ,
		})
	}
	return out
}

func bucketize(bars []market.Bar, anchor market.Anchor) []periodOHLC {
	var out []periodOHLC
	for _, b := range bars {
		if len(out) == 0 || !anchor.SamePeriod(out[len(out)-1].start, b.Time) {
			out = append(out, periodOHLC{start: b.Time, end: b.Time, o: b.Open, h: b.High, l: b.Low, c: b.Close})
			continue
		}
		p := &out[len(out)-1]
		p.end = b.Time
		if b.High > p.h {
			p.h = b.High
		}
		if b.Low < p.l {
			p.l = b.Low
		}
		p.c = b.Close
	}
	return out
}

func pivotLevels(typ PivotType, o, h, l, c float64) map[string]float64 {
	r := h - l
	levels := make(map[string]float64)
	switch typ {
	case PivotFibonacci:
		p := (h + l + c) / 3
		levels["P"] = p
		levels["R1"], levels["S1"] = p+0.382*r, p-0.382*r
		levels["R2"], levels["S2"] = p+0.618*r, p-0.618*r
		levels["R3"], levels["S3"] = p+r, p-r
	case PivotWoodie:
		p := (h + l + 2*c) / 4
		levels["P"] = p
		levels["R1"], levels["S1"] = 2*p-l, 2*p-h
		levels["R2"], levels["S2"] = p+r, p-r
	case PivotCamarilla:
		levels["P"] = (h + l + c) / 3
		for i, k := range []float64{1.1 / 12, 1.1 / 6, 1.1 / 4, 1.1 / 2} {
			levels[fmt.Sprintf("R%d", i+1)] = c + r*k
			levels[fmt.Sprintf("S%d", i+1)] = c - r*k
		}
		levels["R5"] = levels["R4"] + 1.168*(levels["R4"]-levels["R3"])
		levels["S5"] = levels["S4"] - 1.168*(levels["S3"]-levels["S4"])
	case PivotDeMark:
		var x float64
		switch {
		case c > o:
			x = 2*h + l + c
		case c < o:
			x = h + 2*l + c
		default:
			x = h + l + 2*c
		}
		levels["P"] = x / 4
		levels["R1"] = x/2 - l
		levels["S1"] = x/2 - h
	default: // traditional
		p := (h + l + c) / 3
		levels["P"] = p
		levels["R1"], levels["S1"] = 2*p-l, 2*p-h
		levels["R2"], levels["S2"] = p+r, p-r
		levels["R3"], levels["S3"] = h+2*(p-l), l-2*(h-p)
	}
	return levels
}
