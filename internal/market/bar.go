// Package market holds the shared bar/series shapes every analysis
// component consumes and produces.
package market

import (
	"encoding/json"
	"math"
	"strconv"
)

// Bar 单根 OHLCV，Time 为 UTC 秒，升序且唯一。
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Vol returns the bar volume with NaN treated as zero.
func (b Bar) Vol() float64 {
	if math.IsNaN(b.Volume) {
		return 0
	}
	return b.Volume
}

// HL2 returns the high/low midpoint.
func (b Bar) HL2() float64 { return (b.High + b.Low) / 2 }

// HLC3 returns the typical price.
func (b Bar) HLC3() float64 { return (b.High + b.Low + b.Close) / 3 }

// Point is one time-stamped sample of a derived line. Value may be NaN
// inside a documented warm-up window.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// MarshalJSON 把预热期的 NaN/Inf 编码为 null，标准 JSON 编码器会
// 直接拒绝它们。
func (p Point) MarshalJSON() ([]byte, error) {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return []byte(`{"time":` + strconv.FormatInt(p.Time, 10) + `,"value":null}`), nil
	}
	type alias Point
	return json.Marshal(alias(p))
}

// Series 按时间升序的采样序列。时间轴通常是输入 K 线时间的子序列；
// Alligator 的前移线是唯一例外。
type Series []Point

// Values copies out the raw values.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final point, false when the series is empty.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// LastValid returns the final finite value, false when none exists.
func (s Series) LastValid() (float64, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		v := s[i].Value
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, true
		}
	}
	return 0, false
}

// Line 是带名字的一条序列，Bundle 把共享时间轴的多条线打包。
type Line struct {
	Name   string `json:"name"`
	Points Series `json:"points"`
}

type Bundle []Line

// Get looks a line up by name.
func (b Bundle) Get(name string) (Series, bool) {
	for _, l := range b {
		if l.Name == name {
			return l.Points, true
		}
	}
	return nil, false
}

// Closes extracts the close column.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column, NaN mapped to 0.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Vol()
	}
	return out
}

// SeriesAt pairs values with bar times starting at the given bar offset.
// Used by valid-suffix indicators whose first defined value sits at
// bars[offset].
func SeriesAt(bars []Bar, offset int, values []float64) Series {
	if offset < 0 || offset+len(values) > len(bars) {
		return nil
	}
	out := make(Series, len(values))
	for i, v := range values {
		out[i] = Point{Time: bars[offset+i].Time, Value: v}
	}
	return out
}

// FullSeries pairs a full-length value slice with the bar times.
func FullSeries(bars []Bar, values []float64) Series {
	if len(values) != len(bars) {
		return nil
	}
	return SeriesAt(bars, 0, values)
}
