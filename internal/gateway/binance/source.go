// Package binance adapts the exchange REST API into the normalized
// bar-array provider the compute layer consumes. History only — live
// subscriptions are not this system's business.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gobinance "github.com/adshao/go-binance/v2"

	"chartcore/internal/logger"
	"chartcore/internal/market"
)

const maxHistoryLimit = 1000

// Source 对接 Binance 现货行情。
type Source struct {
	client *gobinance.Client
}

func New() *Source {
	// 公共行情接口不需要密钥。
	return &Source{client: gobinance.NewClient("", "")}
}

// NewWithBaseURL 指向自定义入口（镜像站或测试桩）。
func NewWithBaseURL(baseURL string) *Source {
	s := New()
	if baseURL != "" {
		s.client.BaseURL = baseURL
	}
	return s
}

// FetchHistory 拉取最近 limit 根 K 线，按时间升序返回，时间为 UTC 秒。
func (s *Source) FetchHistory(ctx context.Context, symbol, interval string, limit int) ([]market.Bar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	logger.Debugf("[binance] klines %s %s limit=%d", symbol, interval, limit)
	klines, err := s.client.NewKlinesService().
		Symbol(symbol).Interval(interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance history: %w", err)
	}
	out := make([]market.Bar, 0, len(klines))
	for _, k := range klines {
		out = append(out, market.Bar{
			Time:   k.OpenTime / 1000,
			Open:   parseFloat(k.Open),
			High:   parseFloat(k.High),
			Low:    parseFloat(k.Low),
			Close:  parseFloat(k.Close),
			Volume: parseFloat(k.Volume),
		})
	}
	return out, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
