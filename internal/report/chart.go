// Package report 把计算结果渲染成独立 HTML 快照，便于人工核对。
// 交互式图表层不在本仓库范围内，这里只产静态产物。
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"chartcore/internal/market"
)

// RenderHTML 输出一页：K 线 + 每个结果 bundle 一张折线图。
func RenderHTML(path, title string, bars []market.Bar, bundles map[string]market.Bundle) error {
	if path == "" {
		return fmt.Errorf("output path required")
	}
	page := components.NewPage()
	page.PageTitle = title

	if len(bars) > 0 {
		kline := charts.NewKLine()
		kline.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))
		xs := make([]string, len(bars))
		data := make([]opts.KlineData, len(bars))
		for i, b := range bars {
			xs[i] = formatTime(b.Time)
			data[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
		}
		kline.SetXAxis(xs).AddSeries("ohlc", data)
		page.AddCharts(kline)
	}

	for name, bundle := range bundles {
		line := charts.NewLine()
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: name}))
		first := true
		for _, l := range bundle {
			xs := make([]string, len(l.Points))
			data := make([]opts.LineData, len(l.Points))
			for i, p := range l.Points {
				xs[i] = formatTime(p.Time)
				data[i] = opts.LineData{Value: p.Value}
			}
			if first {
				line.SetXAxis(xs)
				first = false
			}
			line.AddSeries(l.Name, data)
		}
		page.AddCharts(line)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	return page.Render(f)
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}
