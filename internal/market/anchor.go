package market

import (
	"fmt"
	"strings"
	"time"
)

// Anchor 定义累计序列（如 CVD）归零的日历边界。
type Anchor int

const (
	AnchorSession Anchor = iota // UTC 自然日
	AnchorWeek
	AnchorMonth
	AnchorYear
)

func (a Anchor) String() string {
	switch a {
	case AnchorSession:
		return "session"
	case AnchorWeek:
		return "week"
	case AnchorMonth:
		return "month"
	case AnchorYear:
		return "year"
	}
	return "unknown"
}

// ParseAnchor maps a config/param string onto an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "session", "day", "d":
		return AnchorSession, nil
	case "week", "w":
		return AnchorWeek, nil
	case "month", "m":
		return AnchorMonth, nil
	case "year", "y":
		return AnchorYear, nil
	}
	return AnchorSession, fmt.Errorf("unknown anchor %q", s)
}

// SamePeriod reports whether two timestamps fall in the same anchor
// period. Comparison is by UTC calendar fields, never by elapsed
// seconds, so week/month/year boundaries stay DST-proof.
func (a Anchor) SamePeriod(t1, t2 int64) bool {
	u1 := time.Unix(t1, 0).UTC()
	u2 := time.Unix(t2, 0).UTC()
	switch a {
	case AnchorWeek:
		y1, w1 := u1.ISOWeek()
		y2, w2 := u2.ISOWeek()
		return y1 == y2 && w1 == w2
	case AnchorMonth:
		return u1.Year() == u2.Year() && u1.Month() == u2.Month()
	case AnchorYear:
		return u1.Year() == u2.Year()
	default:
		return u1.Year() == u2.Year() && u1.YearDay() == u2.YearDay()
	}
}
