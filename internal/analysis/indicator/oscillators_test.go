package indicator

import (
	"math"
	"testing"

	"chartcore/internal/market"
)

func TestRSIMonotonicUp(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	s := RSI(bars, 5)
	if len(s) != 5 {
		t.Fatalf("expected 5 values got %d", len(s))
	}
	// 纯上涨时 avgLoss=0，RS 按 100 计。
	want := 100 - 100.0/101
	for i, p := range s {
		if !approx(p.Value, want) {
			t.Fatalf("rsi[%d] = %v want %v", i, p.Value, want)
		}
	}
	if s[0].Time != bars[5].Time {
		t.Fatalf("first rsi point keyed to %d want %d", s[0].Time, bars[5].Time)
	}
}

func TestRSIMonotonicDown(t *testing.T) {
	bars := barsFromCloses(10, 9, 8, 7, 6, 5, 4, 3, 2, 1)
	for _, p := range RSI(bars, 5) {
		if !approx(p.Value, 0) {
			t.Fatalf("pure decline should pin RSI to 0, got %v", p.Value)
		}
	}
}

func TestRSIEqualAlternationNearFifty(t *testing.T) {
	// 等幅涨跌交替：种子窗口里涨跌各占一半，首个值恰为 50，之后
	// Wilder 递推围绕 50 小幅摆动。
	closes := make([]float64, 41)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 101
		}
	}
	s := RSI(barsFromCloses(closes...), 14)
	if len(s) != 41-14 {
		t.Fatalf("expected %d values got %d", 41-14, len(s))
	}
	if !approx(s[0].Value, 50) {
		t.Fatalf("seeded rsi = %v want exactly 50", s[0].Value)
	}
	for i, p := range s {
		if p.Value < 45 || p.Value > 55 {
			t.Fatalf("rsi[%d] = %v drifted from 50", i, p.Value)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	bars := barsFromCloses(5, 8, 3, 9, 2, 7, 4, 6, 5, 8, 3, 7)
	for _, p := range RSI(bars, 4) {
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("rsi out of range: %v", p.Value)
		}
	}
}

func TestRSIInsufficientData(t *testing.T) {
	if got := RSI(barsFromCloses(1, 2, 3), 14); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	bars := barsFromCloses(10, 12, 11, 14, 13, 16, 15, 18, 17, 20)
	b := MACD(bars, 3, 6, 4)
	macd, _ := b.Get("macd")
	sig, _ := b.Get("signal")
	hist, _ := b.Get("histogram")
	if len(macd) != len(bars) || len(sig) != len(bars) || len(hist) != len(bars) {
		t.Fatalf("macd lines should be full-length")
	}
	if !approx(macd[0].Value, 0) {
		t.Fatalf("macd[0] = %v want 0 (both EMAs seed on the first close)", macd[0].Value)
	}
	for i := range hist {
		if !approx(hist[i].Value, macd[i].Value-sig[i].Value) {
			t.Fatalf("histogram[%d] != macd-signal", i)
		}
	}
}

func TestStochasticBoundsAndPrefix(t *testing.T) {
	bars := []market.Bar{}
	prices := []float64{10, 12, 9, 14, 11, 15, 13, 16, 12, 17}
	for i, p := range prices {
		bars = append(bars, market.Bar{Time: int64(i) * 60, Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1})
	}
	b := Stochastic(bars, 5, 1, 3)
	k, _ := b.Get("k")
	for i, p := range k {
		if i < 4 {
			if !math.IsNaN(p.Value) {
				t.Fatalf("k[%d] should be warm-up NaN", i)
			}
			continue
		}
		if p.Value < 0 || p.Value > 100 {
			t.Fatalf("k[%d] out of range: %v", i, p.Value)
		}
	}
}

func TestStochasticZeroRange(t *testing.T) {
	bars := barsFromCloses(5, 5, 5, 5, 5, 5)
	b := Stochastic(bars, 3, 1, 1)
	k, _ := b.Get("k")
	for i := 2; i < len(k); i++ {
		if !approx(k[i].Value, 0) {
			t.Fatalf("zero range should collapse to 0, got %v", k[i].Value)
		}
	}
}

func TestWilliamsRExtremes(t *testing.T) {
	atHigh := make([]market.Bar, 6)
	atLow := make([]market.Bar, 6)
	for i := range atHigh {
		atHigh[i] = market.Bar{Time: int64(i) * 60, Open: 5, High: 10, Low: 0, Close: 10, Volume: 1}
		atLow[i] = market.Bar{Time: int64(i) * 60, Open: 5, High: 10, Low: 0, Close: 0, Volume: 1}
	}
	sHigh := WilliamsR(atHigh, 4)
	sLow := WilliamsR(atLow, 4)
	if !approx(sHigh[5].Value, 0) {
		t.Fatalf("close at range high should read 0, got %v", sHigh[5].Value)
	}
	if !approx(sLow[5].Value, -100) {
		t.Fatalf("close at range low should read -100, got %v", sLow[5].Value)
	}
	if !math.IsNaN(sHigh[2].Value) {
		t.Fatalf("warm-up prefix should be NaN")
	}
}

func TestCCIFlatIsZero(t *testing.T) {
	bars := barsFromCloses(5, 5, 5, 5, 5)
	s := CCI(bars, 3)
	if len(s) != 3 {
		t.Fatalf("expected 3 values got %d", len(s))
	}
	for _, p := range s {
		if !approx(p.Value, 0) {
			t.Fatalf("flat prices should give CCI 0, got %v", p.Value)
		}
	}
}

func TestAroonTrend(t *testing.T) {
	bars := []market.Bar{}
	for i := 0; i < 12; i++ {
		p := float64(100 + i)
		bars = append(bars, market.Bar{Time: int64(i) * 60, Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1})
	}
	b := Aroon(bars, 5)
	up, _ := b.Get("up")
	down, _ := b.Get("down")
	if !math.IsNaN(up[4].Value) {
		t.Fatalf("up[4] should still be warming up")
	}
	// 单边上涨：最高点总在最新一根，最低点在窗口最旧一根。
	for i := 5; i < len(bars); i++ {
		if !approx(up[i].Value, 100) {
			t.Fatalf("up[%d] = %v want 100", i, up[i].Value)
		}
		if !approx(down[i].Value, 0) {
			t.Fatalf("down[%d] = %v want 0", i, down[i].Value)
		}
	}
}

func TestVortexPrefixAndNonNegative(t *testing.T) {
	bars := []market.Bar{}
	prices := []float64{10, 11, 9, 13, 12, 14, 11, 15}
	for i, p := range prices {
		bars = append(bars, market.Bar{Time: int64(i) * 60, Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1})
	}
	b := Vortex(bars, 4)
	plus, _ := b.Get("plus")
	minus, _ := b.Get("minus")
	for i := 0; i < 4; i++ {
		if !math.IsNaN(plus[i].Value) || !math.IsNaN(minus[i].Value) {
			t.Fatalf("warm-up prefix should be NaN at %d", i)
		}
	}
	for i := 4; i < len(bars); i++ {
		if plus[i].Value < 0 || minus[i].Value < 0 {
			t.Fatalf("vortex lines must be non-negative")
		}
	}
}
