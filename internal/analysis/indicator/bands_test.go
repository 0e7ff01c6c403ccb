package indicator

import (
	"math"
	"testing"

	"chartcore/internal/market"
)

func TestBollingerBasisIsSMA(t *testing.T) {
	bars := barsFromCloses(10, 12, 11, 14, 13, 16, 15, 18)
	b := Bollinger(bars, 4, 2)
	basis, _ := b.Get("basis")
	smaLine := SMA(bars, 4)
	if len(basis) != len(smaLine) {
		t.Fatalf("basis length %d != sma length %d", len(basis), len(smaLine))
	}
	for i := range basis {
		if !approx(basis[i].Value, smaLine[i].Value) {
			t.Fatalf("basis[%d] = %v want %v", i, basis[i].Value, smaLine[i].Value)
		}
	}
}

func TestBollingerConstantCollapse(t *testing.T) {
	bars := barsFromCloses(9, 9, 9, 9, 9, 9)
	b := Bollinger(bars, 4, 2)
	upper, _ := b.Get("upper")
	lower, _ := b.Get("lower")
	for i := range upper {
		if !approx(upper[i].Value, 9) || !approx(lower[i].Value, 9) {
			t.Fatalf("zero stdev should collapse bands onto basis")
		}
	}
}

func TestBollingerSymmetry(t *testing.T) {
	bars := barsFromCloses(10, 14, 8, 16, 12, 18, 9, 15)
	b := Bollinger(bars, 4, 2)
	basis, _ := b.Get("basis")
	upper, _ := b.Get("upper")
	lower, _ := b.Get("lower")
	for i := range basis {
		if !approx(upper[i].Value+lower[i].Value, 2*basis[i].Value) {
			t.Fatalf("bands not symmetric around basis at %d", i)
		}
	}
}

func TestEnvelopePercent(t *testing.T) {
	bars := barsFromCloses(100, 100, 100, 100)
	b := Envelope(bars, 2, 10)
	upper, _ := b.Get("upper")
	lower, _ := b.Get("lower")
	if !approx(upper[0].Value, 110) || !approx(lower[0].Value, 90) {
		t.Fatalf("10%% envelope of 100 should be 110/90, got %v/%v", upper[0].Value, lower[0].Value)
	}
}

func TestMedianLine(t *testing.T) {
	prices := []float64{1, 5, 2, 9, 3}
	bars := make([]market.Bar, len(prices))
	for i, p := range prices {
		bars[i] = market.Bar{Time: int64(i) * 60, Open: p, High: p, Low: p, Close: p, Volume: 1}
	}
	b := Median(bars, 3, 2)
	med, _ := b.Get("median")
	if len(med) != len(bars) {
		t.Fatalf("median should be full-length")
	}
	if !math.IsNaN(med[0].Value) || !math.IsNaN(med[1].Value) {
		t.Fatalf("median warm-up prefix should be NaN")
	}
	want := []float64{2, 5, 3} // median of {1,5,2}, {5,2,9}, {2,9,3}
	for i, w := range want {
		if !approx(med[i+2].Value, w) {
			t.Fatalf("median[%d] = %v want %v", i+2, med[i+2].Value, w)
		}
	}
	upper, _ := b.Get("upper")
	lower, _ := b.Get("lower")
	for i := range med {
		if !isFinite(med[i].Value) || !isFinite(upper[i].Value) {
			continue
		}
		if !approx(upper[i].Value+lower[i].Value, 2*med[i].Value) {
			t.Fatalf("ATR bands not symmetric around median at %d", i)
		}
	}
}

func TestLinearRegressionPerfectFit(t *testing.T) {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	b := LinearRegression(bars, 5, 2, 2)
	basis, _ := b.Get("basis")
	upper, _ := b.Get("upper")
	lower, _ := b.Get("lower")
	r, _ := b.Get("r")
	if len(basis) != 6 {
		t.Fatalf("expected 6 values got %d", len(basis))
	}
	for i := range basis {
		// 完全线性的数据：拟合端点等于当根收盘，残差为零，r=1。
		wantClose := float64(5 + i)
		if !approx(basis[i].Value, wantClose) {
			t.Fatalf("basis[%d] = %v want %v", i, basis[i].Value, wantClose)
		}
		if !approx(upper[i].Value, basis[i].Value) || !approx(lower[i].Value, basis[i].Value) {
			t.Fatalf("zero residual should collapse the bands")
		}
		if !approx(r[i].Value, 1) {
			t.Fatalf("r[%d] = %v want 1", i, r[i].Value)
		}
	}
}

func TestLinearRegressionFlatR(t *testing.T) {
	bars := barsFromCloses(4, 4, 4, 4, 4, 4)
	b := LinearRegression(bars, 4, 2, 2)
	r, _ := b.Get("r")
	for _, p := range r {
		if !approx(p.Value, 0) {
			t.Fatalf("zero variance window should report r=0, got %v", p.Value)
		}
	}
}
