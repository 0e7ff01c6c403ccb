package market

import (
	"testing"
	"time"
)

func ts(s string) int64 {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t.UTC().Unix()
}

func TestSamePeriodSession(t *testing.T) {
	if !AnchorSession.SamePeriod(ts("2024-03-05 00:00:00"), ts("2024-03-05 23:59:59")) {
		t.Fatalf("same UTC day should match")
	}
	if AnchorSession.SamePeriod(ts("2024-03-05 23:59:59"), ts("2024-03-06 00:00:00")) {
		t.Fatalf("midnight boundary should split sessions")
	}
}

func TestSamePeriodWeekISO(t *testing.T) {
	// 2023-12-31 是周日，2024-01-01 是周一：跨 ISO 周也跨年。
	if AnchorWeek.SamePeriod(ts("2023-12-31 12:00:00"), ts("2024-01-01 12:00:00")) {
		t.Fatalf("sunday→monday crosses the ISO week")
	}
	// 2024-01-01（周一）与 2024-01-07（周日）同属第 1 周。
	if !AnchorWeek.SamePeriod(ts("2024-01-01 00:00:00"), ts("2024-01-07 23:00:00")) {
		t.Fatalf("monday..sunday is one ISO week")
	}
}

func TestSamePeriodMonthAndYear(t *testing.T) {
	if !AnchorMonth.SamePeriod(ts("2024-02-01 00:00:00"), ts("2024-02-29 00:00:00")) {
		t.Fatalf("leap february is one month")
	}
	if AnchorMonth.SamePeriod(ts("2024-02-29 00:00:00"), ts("2024-03-01 00:00:00")) {
		t.Fatalf("month boundary should split")
	}
	if AnchorYear.SamePeriod(ts("2023-12-31 00:00:00"), ts("2024-01-01 00:00:00")) {
		t.Fatalf("year boundary should split")
	}
}

func TestParseAnchor(t *testing.T) {
	cases := map[string]Anchor{
		"":        AnchorSession,
		"session": AnchorSession,
		"d":       AnchorSession,
		"week":    AnchorWeek,
		"M":       AnchorMonth,
		"year":    AnchorYear,
	}
	for in, want := range cases {
		got, err := ParseAnchor(in)
		if err != nil || got != want {
			t.Fatalf("ParseAnchor(%q) = %v %v want %v", in, got, err, want)
		}
	}
	if _, err := ParseAnchor("fortnight"); err == nil {
		t.Fatalf("unknown anchor must error")
	}
}

func TestAnchorString(t *testing.T) {
	if AnchorWeek.String() != "week" || Anchor(99).String() != "unknown" {
		t.Fatalf("string form wrong")
	}
}
