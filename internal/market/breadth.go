package market

// Breadth 市场宽度输入：每个时间点的涨跌家数与对应成交量。
// Advance/Decline 与 CVI 指标消费它，而不是普通 OHLCV。
type Breadth struct {
	Time            int64   `json:"time"`
	Advances        float64 `json:"advances"`
	Declines        float64 `json:"declines"`
	AdvancingVolume float64 `json:"advancing_volume"`
	DecliningVolume float64 `json:"declining_volume"`
}
