package engine

import (
	"sort"

	"chartcore/internal/analysis/divergence"
	"chartcore/internal/analysis/indicator"
	"chartcore/internal/analysis/swing"
	"chartcore/internal/market"
)

// Result 一次计算的产物。常规指标走 Lines；摆动、枢轴周期与背离
// 信号是几何标记，走各自的字段。
type Result struct {
	Lines   market.Bundle       `json:"lines"`
	Swings  []swing.Swing       `json:"swings,omitempty"`
	Pivots  []swing.Pivot       `json:"pivots,omitempty"`
	Periods []swing.PivotPeriod `json:"periods,omitempty"`
	Signals []divergence.Signal `json:"signals,omitempty"`
}

type computeFunc func(bars []market.Bar, p Params) Result

// hvAnnualization 进程级的 hv 年化系数默认值，启动时由配置覆盖；
// 请求参数里的 annualization 仍然逐次优先。
var hvAnnualization = indicator.DefaultHVAnnualization

// SetHVAnnualization 覆盖 hv 的默认年化系数，非正值忽略。
func SetHVAnnualization(v float64) {
	if v > 0 {
		hvAnnualization = v
	}
}

func single(name string, s market.Series) Result {
	return Result{Lines: market.Bundle{{Name: name, Points: s}}}
}

// registry 指标 kind → 计算函数。纯函数，不持有任何跨调用状态。
var registry = map[string]computeFunc{
	"sma": func(bars []market.Bar, p Params) Result {
		return single("sma", indicator.SMA(bars, p.Int("length", 9)))
	},
	"ema": func(bars []market.Bar, p Params) Result {
		return single("ema", indicator.EMA(bars, p.Int("length", 9)))
	},
	"rma": func(bars []market.Bar, p Params) Result {
		return single("rma", indicator.RMA(bars, p.Int("length", 9)))
	},
	"wma": func(bars []market.Bar, p Params) Result {
		return single("wma", indicator.WMA(bars, p.Int("length", 9)))
	},
	"rsi": func(bars []market.Bar, p Params) Result {
		return single("rsi", indicator.RSI(bars, p.Int("length", 14)))
	},
	"macd": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.MACD(bars, p.Int("fast", 12), p.Int("slow", 26), p.Int("signal", 9))}
	},
	"bollinger": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Bollinger(bars, p.Int("length", 20), p.Float("mult", 2))}
	},
	"atr": func(bars []market.Bar, p Params) Result {
		return single("atr", indicator.ATR(bars, p.Int("length", 14)))
	},
	"adx": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.ADX(bars, p.Int("di_length", 14), p.Int("adx_length", 14))}
	},
	"stochastic": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Stochastic(bars, p.Int("length", 14), p.Int("k_smooth", 1), p.Int("d_smooth", 3))}
	},
	"stochrsi": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.StochRSI(bars, p.Int("rsi_length", 14), p.Int("length", 14), p.Int("k_smooth", 3), p.Int("d_smooth", 3))}
	},
	"williams_r": func(bars []market.Bar, p Params) Result {
		return single("williams_r", indicator.WilliamsR(bars, p.Int("length", 14)))
	},
	"cci": func(bars []market.Bar, p Params) Result {
		return single("cci", indicator.CCI(bars, p.Int("length", 20)))
	},
	"aroon": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Aroon(bars, p.Int("length", 14))}
	},
	"vortex": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Vortex(bars, p.Int("length", 14))}
	},
	"hv": func(bars []market.Bar, p Params) Result {
		return single("hv", indicator.HistoricalVolatility(bars, p.Int("length", 10),
			p.Float("annualization", hvAnnualization)))
	},
	"ulcer": func(bars []market.Bar, p Params) Result {
		return single("ulcer", indicator.UlcerIndex(bars, p.Int("length", 14)))
	},
	"envelope": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Envelope(bars, p.Int("length", 20), p.Float("percent", 10))}
	},
	"median": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Median(bars, p.Int("length", 3), p.Float("mult", 2))}
	},
	"linreg": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.LinearRegression(bars, p.Int("length", 100),
			p.Float("upper_dev", 2), p.Float("lower_dev", 2))}
	},
	"alligator": func(bars []market.Bar, p Params) Result {
		cfg := indicator.DefaultAlligator()
		cfg.JawLen = p.Int("jaw_length", cfg.JawLen)
		cfg.JawOffset = p.Int("jaw_offset", cfg.JawOffset)
		cfg.TeethLen = p.Int("teeth_length", cfg.TeethLen)
		cfg.TeethOffset = p.Int("teeth_offset", cfg.TeethOffset)
		cfg.LipsLen = p.Int("lips_length", cfg.LipsLen)
		cfg.LipsOffset = p.Int("lips_offset", cfg.LipsOffset)
		return Result{Lines: indicator.Alligator(bars, cfg)}
	},
	"fractals": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Fractals(bars, p.Int("periods", 2))}
	},
	"obv": func(bars []market.Bar, p Params) Result {
		return single("obv", indicator.OBV(bars))
	},
	"pvt": func(bars []market.Bar, p Params) Result {
		return single("pvt", indicator.PVT(bars))
	},
	"pvi": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.PVI(bars, p.Int("ema_length", 255))}
	},
	"nvi": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.NVI(bars, p.Int("ema_length", 255))}
	},
	"cmf": func(bars []market.Bar, p Params) Result {
		return single("cmf", indicator.CMF(bars, p.Int("length", 20)))
	},
	"klinger": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.Klinger(bars, p.Int("fast", 34), p.Int("slow", 55), p.Int("signal", 13))}
	},
	"volume_delta": func(bars []market.Bar, p Params) Result {
		return Result{Lines: indicator.VolumeDelta(bars)}
	},
	"cvd": func(bars []market.Bar, p Params) Result {
		anchor, err := market.ParseAnchor(p.Str("anchor", "session"))
		if err != nil {
			anchor = market.AnchorSession
		}
		return single("cvd", indicator.CVD(bars, anchor))
	},
	"zigzag": func(bars []market.Bar, p Params) Result {
		cfg := swing.DefaultZigZag()
		cfg.Deviation = p.Float("deviation", cfg.Deviation)
		cfg.Depth = p.Int("depth", cfg.Depth)
		cfg.ExtendToLastBar = p.Bool("extend_to_last_bar", cfg.ExtendToLastBar)
		return Result{Swings: swing.ZigZag(bars, cfg)}
	},
	"pivots": func(bars []market.Bar, p Params) Result {
		left := p.Int("left_bars", 5)
		right := p.Int("right_bars", 5)
		out := append(swing.PivotHighs(bars, left, right), swing.PivotLows(bars, left, right)...)
		sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
		return Result{Pivots: out}
	},
	"pivot_points": func(bars []market.Bar, p Params) Result {
		typ, err := swing.ParsePivotType(p.Str("type", "traditional"))
		if err != nil {
			typ = swing.PivotTraditional
		}
		anchor := swing.AnchorForResolution(p.Str("resolution", ""))
		return Result{Periods: swing.PivotPoints(bars, typ, anchor)}
	},
	"rsi_divergence": func(bars []market.Bar, p Params) Result {
		cfg := divergence.DefaultRSIConfig()
		cfg.RSIPeriod = p.Int("rsi_length", cfg.RSIPeriod)
		cfg.PivotLeft = p.Int("pivot_left", cfg.PivotLeft)
		cfg.PivotRight = p.Int("pivot_right", cfg.PivotRight)
		cfg.Lookback = p.Int("lookback", cfg.Lookback)
		cfg.MaxPairDistance = p.Int("max_pair_distance", cfg.MaxPairDistance)
		return Result{Signals: divergence.RSIDivergence(bars, cfg)}
	},
	"knoxville": func(bars []market.Bar, p Params) Result {
		cfg := divergence.DefaultKnoxvilleConfig()
		cfg.RSIPeriod = p.Int("rsi_length", cfg.RSIPeriod)
		cfg.MomentumPeriod = p.Int("momentum_length", cfg.MomentumPeriod)
		cfg.Lookback = p.Int("lookback", cfg.Lookback)
		cfg.Overbought = p.Float("overbought", cfg.Overbought)
		cfg.Oversold = p.Float("oversold", cfg.Oversold)
		return Result{Signals: divergence.Knoxville(bars, cfg)}
	},
}

// breadthRegistry 消费市场宽度输入而不是 OHLCV 的指标。
var breadthRegistry = map[string]func(b []market.Breadth) market.Series{
	"ad_ratio": indicator.ADRatio,
	"ad_line":  indicator.ADLine,
	"cvi":      indicator.CVI,
}

// Kinds returns every registered kind, sorted.
func Kinds() []string {
	out := make([]string, 0, len(registry)+len(breadthRegistry))
	for k := range registry {
		out = append(out, k)
	}
	for k := range breadthRegistry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
