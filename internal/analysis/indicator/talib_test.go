package indicator

import (
	"testing"

	"github.com/markcheno/go-talib"

	"chartcore/internal/market"
)

// talib 作为交叉校验的参考实现；它返回全长切片，前 n-1 位是
// 未定义的回看区，比较时跳过。

func oracleBars() []market.Bar {
	closes := []float64{
		100.1, 101.3, 99.8, 102.4, 103.0, 101.7, 104.2, 105.5, 104.9, 106.1,
		107.8, 106.3, 108.0, 109.4, 108.8, 110.2, 111.5, 110.1, 112.3, 113.0,
	}
	vols := []float64{
		900, 1200, 800, 1500, 1100, 950, 1700, 1300, 1000, 1600,
		1400, 1150, 1800, 1250, 990, 1450, 1350, 1050, 1550, 1650,
	}
	bars := make([]market.Bar, len(closes))
	for i := range closes {
		bars[i] = market.Bar{Time: int64(i) * 60, Open: closes[i], High: closes[i] + 1, Low: closes[i] - 1, Close: closes[i], Volume: vols[i]}
	}
	return bars
}

func TestSMAMatchesTalib(t *testing.T) {
	bars := oracleBars()
	n := 5
	ours := SMA(bars, n)
	ref := talib.Sma(market.Closes(bars), n)
	for i, p := range ours {
		if !approx(p.Value, ref[i+n-1]) {
			t.Fatalf("sma[%d] = %v, talib says %v", i, p.Value, ref[i+n-1])
		}
	}
}

func TestWMAMatchesTalib(t *testing.T) {
	bars := oracleBars()
	n := 7
	ours := WMA(bars, n)
	ref := talib.Wma(market.Closes(bars), n)
	for i, p := range ours {
		if !approx(p.Value, ref[i+n-1]) {
			t.Fatalf("wma[%d] = %v, talib says %v", i, p.Value, ref[i+n-1])
		}
	}
}

func TestOBVMatchesTalib(t *testing.T) {
	bars := oracleBars()
	ours := OBV(bars)
	ref := talib.Obv(market.Closes(bars), market.Volumes(bars))
	// 种子约定不同（我们从 0 起，talib 从首根成交量起），比较增量。
	for i := 1; i < len(ours); i++ {
		dOurs := ours[i].Value - ours[i-1].Value
		dRef := ref[i] - ref[i-1]
		if !approx(dOurs, dRef) {
			t.Fatalf("obv step %d = %v, talib says %v", i, dOurs, dRef)
		}
	}
}
