package model

import "math"

// Sentinel prices used by HighLowSummary before any visible bar has been
// scanned. They are absence markers, never real prices; consumers must call
// Valid before rendering either leg.
const (
	SentinelHighPrice = float64(math.MinInt64)
	SentinelLowPrice  = float64(math.MaxInt64)
)

// VisibleRange is the half-open index interval [RealFrom, RealTo) into the
// data sequence currently mapped onto the viewport.
type VisibleRange struct {
	RealFrom int
	RealTo   int
}

// Length returns the number of index slots covered by the range.
func (r VisibleRange) Length() int {
	if r.RealTo <= r.RealFrom {
		return 0
	}
	return r.RealTo - r.RealFrom
}

// Contains reports whether idx falls inside the half-open interval.
func (r VisibleRange) Contains(idx int) bool {
	return idx >= r.RealFrom && idx < r.RealTo
}

// PricePoint ties an extreme price to the x-coordinate of the bar it came from.
type PricePoint struct {
	Price float64
	X     float64
}

// HighLowSummary describes the maximum-high and minimum-low bars within the
// visible window.
type HighLowSummary struct {
	High PricePoint
	Low  PricePoint
}

// NewHighLowSummary returns a summary reset to the sentinel state.
func NewHighLowSummary() HighLowSummary {
	return HighLowSummary{
		High: PricePoint{Price: SentinelHighPrice},
		Low:  PricePoint{Price: SentinelLowPrice},
	}
}

// Valid reports whether the summary holds real prices rather than sentinels.
func (s HighLowSummary) Valid() bool {
	return s.High.Price != SentinelHighPrice && s.Low.Price != SentinelLowPrice
}

// LoadMoreState records whether the external source is known to hold more
// data beyond either end of the sequence.
type LoadMoreState struct {
	Forward  bool
	Backward bool
}
