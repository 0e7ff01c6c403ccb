package swing

import "chartcore/internal/market"

// Swing 一次已确认的摆动极值，附带与前一摆动之间的量价统计。
// 摆动没有跨重算的持久身份，只能按位置对应。
type Swing struct {
	IsHigh           bool    `json:"is_high"`
	Price            float64 `json:"price"`
	Index            int     `json:"index"`
	Time             int64   `json:"time"`
	CumulativeVolume float64 `json:"cumulative_volume"`
	PriceChange      float64 `json:"price_change"`
	PercentChange    float64 `json:"percent_change"`
}

// ZigZagConfig 滞回参数：deviation 为百分比阈值，depth 为两次确认
// 摆动之间的最小 K 线数。
type ZigZagConfig struct {
	Deviation       float64 `json:"deviation"`
	Depth           int     `json:"depth"`
	ExtendToLastBar bool    `json:"extend_to_last_bar"`
}

func DefaultZigZag() ZigZagConfig {
	return ZigZagConfig{Deviation: 5, Depth: 10}
}

type zigzagState int

const (
	seekingDirection zigzagState = iota
	uptrend
	downtrend
)

// zigzagMachine 显式状态机：状态 + (state,bar) → (state',swing?)，
// 避免用零散可变捕获变量表达趋势。
type zigzagMachine struct {
	cfg   ZigZagConfig
	bars  []market.Bar
	state zigzagState

	// tentative extremes while seeking the first direction
	hiPrice, loPrice float64
	hiIdx, loIdx     int

	// current trend extreme and last confirmed swing position
	extPrice float64
	extIdx   int
	lastIdx  int

	swings []Swing
}

// ZigZag 运行整个滞回状态机并返回已确认摆动（可选加一段延伸到最后
// 一根的未确认尾巴）。
func ZigZag(bars []market.Bar, cfg ZigZagConfig) []Swing {
	if len(bars) == 0 || cfg.Deviation <= 0 || cfg.Depth < 0 {
		return nil
	}
	m := &zigzagMachine{
		cfg:     cfg,
		bars:    bars,
		state:   seekingDirection,
		hiPrice: bars[0].High,
		loPrice: bars[0].Low,
	}
	for i := 1; i < len(bars); i++ {
		m.step(i)
	}
	if cfg.ExtendToLastBar {
		m.extend()
	}
	annotate(bars, m.swings)
	return m.swings
}

func (m *zigzagMachine) step(i int) {
	b := m.bars[i]
	switch m.state {
	case seekingDirection:
		if b.High > m.hiPrice {
			m.hiPrice, m.hiIdx = b.High, i
		}
		if b.Low < m.loPrice {
			m.loPrice, m.loIdx = b.Low, i
		}
		// 初始方向：两个暂定极值的偏离达到阈值后，较早的极值成为
		// 第一个确认摆动。
		base := m.loPrice
		if m.hiIdx < m.loIdx {
			base = m.hiPrice
		}
		if base == 0 || percentDev(m.hiPrice, m.loPrice, base) < m.cfg.Deviation {
			return
		}
		if m.hiIdx < m.loIdx {
			m.emit(Swing{IsHigh: true, Price: m.hiPrice, Index: m.hiIdx, Time: m.bars[m.hiIdx].Time})
			m.state = downtrend
			m.extPrice, m.extIdx = m.loPrice, m.loIdx
		} else {
			m.emit(Swing{IsHigh: false, Price: m.loPrice, Index: m.loIdx, Time: m.bars[m.loIdx].Time})
			m.state = uptrend
			m.extPrice, m.extIdx = m.hiPrice, m.hiIdx
		}

	case uptrend:
		if b.High > m.extPrice {
			m.extPrice, m.extIdx = b.High, i
		}
		if m.extPrice == 0 {
			return
		}
		dev := percentDev(m.extPrice, b.Low, m.extPrice)
		if dev >= m.cfg.Deviation && i-m.lastIdx >= m.cfg.Depth {
			m.emit(Swing{IsHigh: true, Price: m.extPrice, Index: m.extIdx, Time: m.bars[m.extIdx].Time})
			m.state = downtrend
			m.adoptLowest(i)
		}

	case downtrend:
		if b.Low < m.extPrice {
			m.extPrice, m.extIdx = b.Low, i
		}
		if m.extPrice == 0 {
			return
		}
		dev := percentDev(b.High, m.extPrice, m.extPrice)
		if dev >= m.cfg.Deviation && i-m.lastIdx >= m.cfg.Depth {
			m.emit(Swing{IsHigh: false, Price: m.extPrice, Index: m.extIdx, Time: m.bars[m.extIdx].Time})
			m.state = uptrend
			m.adoptHighest(i)
		}
	}
}

func (m *zigzagMachine) emit(s Swing) {
	m.swings = append(m.swings, s)
	m.lastIdx = s.Index
}

// adoptLowest seeds the new downtrend extreme with the lowest low after
// the swing just confirmed — depth can delay confirmation past the bar
// that actually set the extreme.
func (m *zigzagMachine) adoptLowest(upTo int) {
	if e := LowestIn(m.bars, m.lastIdx+1, upTo); e != nil {
		m.extPrice, m.extIdx = e.Price, e.Index
	}
}

func (m *zigzagMachine) adoptHighest(upTo int) {
	if e := HighestIn(m.bars, m.lastIdx+1, upTo); e != nil {
		m.extPrice, m.extIdx = e.Price, e.Index
	}
}

// extend 把最后一个未确认极值投影到最后一根（取自身与最后一根对应
// 极值中更极端者），产生会随新数据重绘的尾段。
func (m *zigzagMachine) extend() {
	if m.state == seekingDirection || len(m.swings) == 0 {
		return
	}
	last := len(m.bars) - 1
	s := Swing{Index: last, Time: m.bars[last].Time}
	if m.state == uptrend {
		s.IsHigh = true
		s.Price = m.extPrice
		if m.bars[last].High > s.Price {
			s.Price = m.bars[last].High
		}
	} else {
		s.Price = m.extPrice
		if m.bars[last].Low < s.Price {
			s.Price = m.bars[last].Low
		}
	}
	m.swings = append(m.swings, s)
}

// annotate 后处理：相邻摆动之间（严格开区间）的成交量合计与价格
// 变化。
func annotate(bars []market.Bar, swings []Swing) {
	for i := 1; i < len(swings); i++ {
		prev, cur := swings[i-1], swings[i]
		vol := 0.0
		for j := prev.Index + 1; j < cur.Index; j++ {
			vol += bars[j].Vol()
		}
		swings[i].CumulativeVolume = vol
		swings[i].PriceChange = cur.Price - prev.Price
		if prev.Price != 0 {
			swings[i].PercentChange = 100 * (cur.Price - prev.Price) / prev.Price
		}
	}
}

// percentDev percent distance between hi and lo relative to base.
func percentDev(hi, lo, base float64) float64 {
	if base == 0 {
		return 0
	}
	return 100 * (hi - lo) / base
}
