package swing

// FibRatios 自动斐波那契使用的固定比例集。
var FibRatios = []float64{0, 0.236, 0.382, 0.5, 0.618, 0.786, 1, 1.618, 2.618, 3.618, 4.236}

// FibLevel 一条斐波那契水平。
type FibLevel struct {
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// FibLevels 从 end 价向 start 价投影比例集；reversed 时从 start 向
// end 投影。ratio=0 总是落在投影起点上。
func FibLevels(start, end float64, reversed bool) []FibLevel {
	diff := end - start
	out := make([]FibLevel, 0, len(FibRatios))
	for _, r := range FibRatios {
		price := end - r*diff
		if reversed {
			price = start + r*diff
		}
		out = append(out, FibLevel{Ratio: r, Price: price})
	}
	return out
}
