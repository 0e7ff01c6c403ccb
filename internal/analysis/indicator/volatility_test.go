package indicator

import (
	"math"
	"testing"

	"chartcore/internal/market"
)

func TestATRConstantRange(t *testing.T) {
	bars := make([]market.Bar, 10)
	for i := range bars {
		bars[i] = market.Bar{Time: int64(i) * 60, Open: 11, High: 12, Low: 10, Close: 11, Volume: 1}
	}
	s := ATR(bars, 4)
	if len(s) != 7 {
		t.Fatalf("expected 7 values got %d", len(s))
	}
	for _, p := range s {
		if !approx(p.Value, 2) {
			t.Fatalf("constant 2-point range should give ATR 2, got %v", p.Value)
		}
	}
	if s[0].Time != bars[3].Time {
		t.Fatalf("first atr point keyed to %d want %d", s[0].Time, bars[3].Time)
	}
}

func TestTrueRangeFirstBar(t *testing.T) {
	bars := []market.Bar{
		{Time: 0, Open: 10, High: 15, Low: 5, Close: 12},
		{Time: 60, Open: 12, High: 13, Low: 11, Close: 20},
	}
	tr := trueRanges(bars)
	if !approx(tr[0], 10) {
		t.Fatalf("first TR degrades to high-low, got %v", tr[0])
	}
	// |low - prevClose| dominates? 这里是 high-low=2, |13-12|=1, |11-12|=1 → 2。
	if !approx(tr[1], 2) {
		t.Fatalf("tr[1] = %v want 2", tr[1])
	}
}

func TestHistoricalVolatilityConstantPrice(t *testing.T) {
	bars := barsFromCloses(50, 50, 50, 50, 50, 50, 50, 50)
	s := HistoricalVolatility(bars, 4, DefaultHVAnnualization)
	if len(s) != 4 {
		t.Fatalf("expected 4 values got %d", len(s))
	}
	for _, p := range s {
		if !approx(p.Value, 0) {
			t.Fatalf("flat price should have zero volatility, got %v", p.Value)
		}
	}
	if s[0].Time != bars[4].Time {
		t.Fatalf("first hv point keyed to %d want %d", s[0].Time, bars[4].Time)
	}
}

func TestHistoricalVolatilityInvalid(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4)
	if got := HistoricalVolatility(bars, 1, 0); got != nil {
		t.Fatalf("n<=1 should yield nil")
	}
	if got := HistoricalVolatility(bars, 4, 0); got != nil {
		t.Fatalf("len<=n should yield nil")
	}
}

func TestHistoricalVolatilityScalesWithAnnualization(t *testing.T) {
	bars := barsFromCloses(100, 102, 99, 104, 101, 105, 103, 108)
	a := HistoricalVolatility(bars, 4, 100)
	b := HistoricalVolatility(bars, 4, 400)
	for i := range a {
		if !approx(b[i].Value, 2*a[i].Value) {
			t.Fatalf("quadrupling annualization should double hv at %d", i)
		}
	}
}

func TestUlcerIndexRisingIsZero(t *testing.T) {
	bars := barsFromCloses(10, 11, 12, 13, 14, 15, 16, 17, 18, 19)
	s := UlcerIndex(bars, 4)
	offset := 2 * 3
	if len(s) != len(bars)-offset {
		t.Fatalf("expected %d values got %d", len(bars)-offset, len(s))
	}
	// 每根收盘都是自己的滚动峰值，回撤恒为 0。
	for _, p := range s {
		if !approx(p.Value, 0) {
			t.Fatalf("rising closes should have zero ulcer, got %v", p.Value)
		}
		if math.IsNaN(p.Value) {
			t.Fatalf("valid suffix must not contain NaN")
		}
	}
	if s[0].Time != bars[offset].Time {
		t.Fatalf("first ulcer point keyed to %d want %d", s[0].Time, bars[offset].Time)
	}
}

func TestUlcerIndexDeclinePositive(t *testing.T) {
	bars := barsFromCloses(100, 98, 96, 94, 92, 90, 88, 86, 84, 82)
	s := UlcerIndex(bars, 4)
	last, ok := s.Last()
	if !ok || last.Value <= 0 {
		t.Fatalf("steady decline should have positive ulcer, got %v", last.Value)
	}
}

func TestUlcerIndexShortInput(t *testing.T) {
	if got := UlcerIndex(barsFromCloses(1, 2, 3, 4, 5, 6), 4); got != nil {
		t.Fatalf("needs 2n-1 bars, got %v", got)
	}
}
