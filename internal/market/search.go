package market

import "sort"

// FirstAtOrAfter 返回时间 >= ts 的第一根 K 线下标，不存在时返回 -1。
func FirstAtOrAfter(bars []Bar, ts int64) int {
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Time >= ts })
	if i == len(bars) {
		return -1
	}
	return i
}

// LastBefore 返回时间 < ts 的最后一根 K 线下标，不存在时返回 -1。
func LastBefore(bars []Bar, ts int64) int {
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Time >= ts })
	return i - 1
}

// Closest returns the index of the bar whose time is nearest to ts.
// Ties break toward the earlier bar. Returns -1 for an empty slice.
func Closest(bars []Bar, ts int64) int {
	if len(bars) == 0 {
		return -1
	}
	i := sort.Search(len(bars), func(i int) bool { return bars[i].Time >= ts })
	if i == 0 {
		return 0
	}
	if i == len(bars) {
		return len(bars) - 1
	}
	before := ts - bars[i-1].Time
	after := bars[i].Time - ts
	if before <= after {
		return i - 1
	}
	return i
}
