package store

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
)

// TickWeight ranks how significant a time tick is; a bar that opens a new
// year outranks one that only opens a new minute. The axis renderer keeps
// the heaviest ticks when space runs out.
type TickWeight int

const (
	TickMinute TickWeight = iota
	TickHour
	TickDay
	TickMonth
	TickYear
)

// TimeTick is the classification of one bar for axis labelling.
type TimeTick struct {
	DataIndex int
	Timestamp int64
	Weight    TickWeight
}

const (
	minBarSpace = 1.0
	maxBarSpace = 50.0
)

// TimeScaleStore owns the mapping between data index and x-coordinate, the
// visible index range and the time-tick classification of the sequence. It
// is referenced, not owned, by ChartDataStore.
type TimeScaleStore struct {
	logger zerolog.Logger
	loc    *time.Location

	totalWidth          float64
	barSpace            float64
	offsetRightDistance float64

	// lastBarRightSideDiffBarCount is the signed distance, in bars, between
	// the last data bar and the right edge of the viewport. Negative values
	// mean the newest bars are scrolled off the right edge.
	lastBarRightSideDiffBarCount float64

	dataLen      int
	visibleRange model.VisibleRange
	ticks        []TimeTick
}

// NewTimeScaleStore creates a time scale for a viewport of totalWidth pixels
// with barSpace pixels per bar.
func NewTimeScaleStore(totalWidth, barSpace float64) *TimeScaleStore {
	if barSpace < minBarSpace {
		barSpace = minBarSpace
	}
	return &TimeScaleStore{
		logger:     log.With().Str("component", "time_scale_store").Logger(),
		loc:        time.UTC,
		totalWidth: totalWidth,
		barSpace:   barSpace,
	}
}

// SetTimezone switches tick classification to the named IANA timezone.
// Unknown names are ignored and the previous location is kept.
func (ts *TimeScaleStore) SetTimezone(name string) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		ts.logger.Warn().Str("timezone", name).Msg("Unknown timezone, keeping previous")
		return
	}
	ts.loc = loc
}

// VisibleRange returns the current half-open visible index interval.
func (ts *TimeScaleStore) VisibleRange() model.VisibleRange {
	return ts.visibleRange
}

// BarSpace returns the pixel width of one bar slot.
func (ts *TimeScaleStore) BarSpace() float64 {
	return ts.barSpace
}

// SetTotalWidth resizes the viewport and re-derives the visible range.
func (ts *TimeScaleStore) SetTotalWidth(width float64) {
	if width <= 0 {
		return
	}
	ts.totalWidth = width
	ts.AdjustVisibleRange(ts.dataLen)
}

// SetOffsetRightDistance sets the default pixel gap kept between the newest
// bar and the right edge after a reset.
func (ts *TimeScaleStore) SetOffsetRightDistance(px float64) {
	if px < 0 {
		return
	}
	ts.offsetRightDistance = px
}

// ResetOffsetRightDistance re-anchors the newest bar at its default distance
// from the right edge, discarding any scroll position.
func (ts *TimeScaleStore) ResetOffsetRightDistance() {
	ts.lastBarRightSideDiffBarCount = ts.offsetRightDistance / ts.barSpace
}

// LastBarRightSideDiffBarCount returns the signed bar distance between the
// last bar and the right edge.
func (ts *TimeScaleStore) LastBarRightSideDiffBarCount() float64 {
	return ts.lastBarRightSideDiffBarCount
}

// SetLastBarRightSideDiffBarCount overrides the right-edge anchor, used when
// a live bar appends while the user is scrolled back in history.
func (ts *TimeScaleStore) SetLastBarRightSideDiffBarCount(count float64) {
	ts.lastBarRightSideDiffBarCount = count
}

// Zoom scales the bar width by factor, clamped to sane pixel bounds, and
// re-derives the visible range.
func (ts *TimeScaleStore) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	space := ts.barSpace * factor
	if space < minBarSpace {
		space = minBarSpace
	}
	if space > maxBarSpace {
		space = maxBarSpace
	}
	ts.barSpace = space
	ts.AdjustVisibleRange(ts.dataLen)
}

// ScrollByBars moves the viewport by delta bars; negative delta scrolls back
// into history.
func (ts *TimeScaleStore) ScrollByBars(delta float64) {
	ts.lastBarRightSideDiffBarCount += delta
	ts.AdjustVisibleRange(ts.dataLen)
}

// AdjustVisibleRange recomputes the visible index interval for a sequence of
// dataLen bars, honouring the current right-edge anchor.
func (ts *TimeScaleStore) AdjustVisibleRange(dataLen int) {
	ts.dataLen = dataLen
	visibleBarCount := 0
	if ts.barSpace > 0 {
		visibleBarCount = int(math.Ceil(ts.totalWidth / ts.barSpace))
	}
	to := int(math.Round(float64(dataLen) + ts.lastBarRightSideDiffBarCount))
	if to > dataLen {
		to = dataLen
	}
	if to < 0 {
		to = 0
	}
	from := to - visibleBarCount
	if from < 0 {
		from = 0
	}
	ts.visibleRange = model.VisibleRange{RealFrom: from, RealTo: to}
}

// DataIndexToCoordinate maps a data index to the x-coordinate of the bar
// centre within the viewport.
func (ts *TimeScaleStore) DataIndexToCoordinate(index int) float64 {
	return (float64(index-ts.visibleRange.RealFrom) + 0.5) * ts.barSpace
}

// CoordinateToDataIndex maps a viewport x-coordinate back to a data index.
func (ts *TimeScaleStore) CoordinateToDataIndex(x float64) int {
	return ts.visibleRange.RealFrom + int(math.Floor(x/ts.barSpace))
}

// Ticks returns the current tick classification.
func (ts *TimeScaleStore) Ticks() []TimeTick {
	return ts.ticks
}

// ClassifyTimeTicks derives axis tick weights for bars. With appendTail true
// only the new slice is classified against the last known tick; otherwise
// the classification is rebuilt from scratch, which is required whenever
// indices shift.
func (ts *TimeScaleStore) ClassifyTimeTicks(bars []model.PriceBar, appendTail bool) {
	baseIndex := 0
	var prev *time.Time
	if appendTail && len(ts.ticks) > 0 {
		baseIndex = len(ts.ticks)
		t := time.UnixMilli(ts.ticks[len(ts.ticks)-1].Timestamp).In(ts.loc)
		prev = &t
	} else if !appendTail {
		ts.ticks = ts.ticks[:0]
	}
	for i, bar := range bars {
		cur := time.UnixMilli(bar.Timestamp).In(ts.loc)
		ts.ticks = append(ts.ticks, TimeTick{
			DataIndex: baseIndex + i,
			Timestamp: bar.Timestamp,
			Weight:    tickWeight(prev, cur),
		})
		c := cur
		prev = &c
	}
}

func tickWeight(prev *time.Time, cur time.Time) TickWeight {
	if prev == nil {
		return TickYear
	}
	switch {
	case prev.Year() != cur.Year():
		return TickYear
	case prev.Month() != cur.Month():
		return TickMonth
	case prev.Day() != cur.Day():
		return TickDay
	case prev.Hour() != cur.Hour():
		return TickHour
	default:
		return TickMinute
	}
}
