package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"

	"chartcore/internal/analysis/swing"
	"chartcore/internal/config"
	"chartcore/internal/engine"
	"chartcore/internal/gateway/binance"
	"chartcore/internal/logger"
	"chartcore/internal/market"
	"chartcore/internal/report"
	"chartcore/internal/store"
	httptransport "chartcore/internal/transport/http"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "compute":
		err = runCompute(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	case "kinds":
		err = runKinds(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "chartcore %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: chartcore <command> [flags]

commands:
  serve    run the compute HTTP server
  compute  compute an indicator over CSV or stored bars
  fetch    download klines into the local sqlite store
  kinds    list supported indicator kinds`)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to TOML config")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger.SetLevelByName(cfg.LogLevel)
	engine.SetHVAnnualization(cfg.Compute.HVAnnualization)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// sqlite_path 非空时服务端与 fetch 共用一份落地存储，留空则
	// 退回带上限的内存存储。
	var bs store.BarStore
	if cfg.Store.SQLitePath != "" {
		db, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		bs = db
	} else {
		bs = store.NewMemoryBarStore(cfg.Store.MaxBars)
	}

	srv := httptransport.NewServer(httptransport.Config{
		Addr:    cfg.Server.Addr,
		Workers: cfg.Server.Workers,
		Store:   bs,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("shutting down")
		os.Exit(0)
	}()

	logger.Infof("serving on %s", cfg.Server.Addr)
	return srv.Run()
}

func runCompute(args []string) error {
	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to TOML config")
	csvPath := fs.String("csv", "", "input CSV (time,open,high,low,close,volume)")
	symbol := fs.String("symbol", "", "read bars for this symbol from the sqlite store")
	interval := fs.String("interval", "1h", "kline interval for -symbol")
	kind := fs.String("kind", "sma", "indicator kind (see `chartcore kinds`)")
	paramsJSON := fs.String("params", "{}", "indicator params as JSON")
	format := fs.String("format", "table", "output format: table | ndjson")
	chartPath := fs.String("chart", "", "optional: write an HTML chart snapshot")
	tail := fs.Int("tail", 20, "table rows to show (0 = all)")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	engine.SetHVAnnualization(cfg.Compute.HVAnnualization)

	var bars []market.Bar
	var source string
	switch {
	case *csvPath != "":
		source = *csvPath
		f, err := os.Open(*csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		bars, err = market.LoadCSV(f)
		if err != nil {
			return err
		}
	case *symbol != "":
		source = *symbol + " " + *interval
		bars, err = loadStoredBars(cfg, *symbol, *interval)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("-csv or -symbol is required")
	}

	params := engine.Params{}
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		return fmt.Errorf("bad -params: %w", err)
	}

	result, err := engine.Compute(*kind, bars, params)
	if err != nil {
		return err
	}

	switch *format {
	case "ndjson":
		if err := writeNDJSON(os.Stdout, result); err != nil {
			return err
		}
	case "table":
		printResult(result, *tail)
	default:
		return fmt.Errorf("bad -format %q", *format)
	}

	if *chartPath != "" {
		title := fmt.Sprintf("%s %s", *kind, source)
		bundles := map[string]market.Bundle{*kind: result.Lines}
		if err := report.RenderHTML(*chartPath, title, bars, bundles); err != nil {
			return err
		}
		logger.Infof("chart written to %s", *chartPath)
	}
	return nil
}

func loadStoredBars(cfg config.Config, symbol, interval string) ([]market.Bar, error) {
	db, err := store.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	bars, err := db.Get(context.Background(), symbol, interval)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no stored bars for %s %s, run `chartcore fetch` first", symbol, interval)
	}
	return bars, nil
}

func writeNDJSON(w *os.File, result engine.Result) error {
	enc := json.NewEncoder(w)
	for _, line := range result.Lines {
		for _, p := range line.Points {
			if err := enc.Encode(map[string]any{"line": line.Name, "time": p.Time, "value": p.Value}); err != nil {
				return err
			}
		}
	}
	for _, s := range result.Swings {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	for _, p := range result.Pivots {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	for _, pp := range result.Periods {
		if err := enc.Encode(pp); err != nil {
			return err
		}
	}
	for _, sig := range result.Signals {
		if err := enc.Encode(sig); err != nil {
			return err
		}
	}
	return nil
}

func printResult(result engine.Result, tail int) {
	if len(result.Lines) > 0 {
		printLines(result.Lines, tail)
	}
	if len(result.Swings) > 0 {
		printSwings(result.Swings)
	}
	if len(result.Pivots) > 0 {
		printPivots(result.Pivots)
	}
	if len(result.Periods) > 0 {
		printPeriods(result.Periods)
	}
	if len(result.Signals) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"side", "start", "end", "price", "osc"})
		for _, s := range result.Signals {
			side := "bearish"
			if s.Bullish {
				side = "bullish"
			}
			t.AppendRow(table.Row{side, s.StartTime, s.EndTime,
				fmt.Sprintf("%.4f -> %.4f", s.PriceStart, s.PriceEnd),
				fmt.Sprintf("%.2f -> %.2f", s.OscStart, s.OscEnd)})
		}
		t.Render()
	}
}

func printLines(lines market.Bundle, tail int) {
	// 按时间对齐各条线，只展示尾部几行。
	times := map[int64]struct{}{}
	for _, line := range lines {
		for _, p := range line.Points {
			times[p.Time] = struct{}{}
		}
	}
	sorted := make([]int64, 0, len(times))
	for ts := range times {
		sorted = append(sorted, ts)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if tail > 0 && len(sorted) > tail {
		sorted = sorted[len(sorted)-tail:]
	}

	byTime := make([]map[int64]float64, len(lines))
	for i, line := range lines {
		byTime[i] = make(map[int64]float64, len(line.Points))
		for _, p := range line.Points {
			byTime[i][p.Time] = p.Value
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{"time"}
	for _, line := range lines {
		header = append(header, line.Name)
	}
	t.AppendHeader(header)
	for _, ts := range sorted {
		row := table.Row{ts}
		for i := range lines {
			if v, ok := byTime[i][ts]; ok {
				row = append(row, fmt.Sprintf("%.6f", v))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func printSwings(swings []swing.Swing) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"type", "time", "price", "volume", "change", "change %"})
	for _, s := range swings {
		kind := "low"
		if s.IsHigh {
			kind = "high"
		}
		t.AppendRow(table.Row{kind, s.Time, fmt.Sprintf("%.4f", s.Price),
			fmt.Sprintf("%.2f", s.CumulativeVolume),
			fmt.Sprintf("%+.4f", s.PriceChange),
			fmt.Sprintf("%+.2f%%", s.PercentChange)})
	}
	t.Render()
}

func printPivots(pivots []swing.Pivot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"type", "time", "price"})
	for _, p := range pivots {
		kind := "low"
		if p.IsHigh {
			kind = "high"
		}
		t.AppendRow(table.Row{kind, p.Time, fmt.Sprintf("%.4f", p.Price)})
	}
	t.Render()
}

func printPeriods(periods []swing.PivotPeriod) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{"start"}
	names := periodLevelNames(periods)
	for _, name := range names {
		header = append(header, name)
	}
	t.AppendHeader(header)
	for _, pp := range periods {
		row := table.Row{pp.StartTime}
		for _, name := range names {
			if v, ok := pp.Levels[name]; ok {
				row = append(row, fmt.Sprintf("%.4f", v))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func periodLevelNames(periods []swing.PivotPeriod) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, pp := range periods {
		for name := range pp.Levels {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "path to TOML config")
	symbol := fs.String("symbol", "BTCUSDT", "symbol to fetch")
	interval := fs.String("interval", "1h", "kline interval")
	limit := fs.Int("limit", 500, "number of bars")
	fs.Parse(args)

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger.SetLevelByName(cfg.LogLevel)

	db, err := store.OpenSQLite(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	src := binance.NewWithBaseURL(cfg.Provider.BaseURL)
	bars, err := src.FetchHistory(ctx, *symbol, *interval, *limit)
	if err != nil {
		return err
	}
	if err := db.Put(ctx, *symbol, *interval, bars); err != nil {
		return err
	}
	logger.Infof("stored %d bars for %s %s", len(bars), *symbol, *interval)
	return nil
}

func runKinds(args []string) error {
	fs := flag.NewFlagSet("kinds", flag.ExitOnError)
	fs.Parse(args)
	fmt.Println(strings.Join(engine.Kinds(), "\n"))
	return nil
}
