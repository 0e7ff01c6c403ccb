package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// LoadCSV 解析 time,open,high,low,close,volume 表头的 CSV。时间列
// 接受 Unix 秒或 "2006-01-02[ 15:04:05]"（按 UTC 解析）。
func LoadCSV(r io.Reader) ([]Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	cols := map[string]int{}
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"time", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing column %q", required)
		}
	}
	out := make([]Bar, 0, len(records)-1)
	for lineNo, rec := range records[1:] {
		ts, err := parseTime(rec[cols["time"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+2, err)
		}
		b := Bar{Time: ts}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &b.Open}, {"high", &b.High}, {"low", &b.Low},
			{"close", &b.Close}, {"volume", &b.Volume},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[f.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %s: %w", lineNo+2, f.name, err)
			}
			*f.dst = v
		}
		out = append(out, b)
	}
	return out, nil
}

func parseTime(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Unix(), nil
		}
	}
	return 0, fmt.Errorf("bad time %q", s)
}
