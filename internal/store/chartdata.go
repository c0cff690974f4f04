package store

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
)

// OverlayUpdater is notified of every sequence mutation so anchor indices
// can shift when data is concatenated before the front.
type OverlayUpdater interface {
	UpdatePointPosition(indexDelta int, mode model.DataMode)
}

// IndicatorCalculator recomputes derived series after a mutation and keeps
// their display precision in sync with chart options.
type IndicatorCalculator interface {
	CalcInstance(mode model.DataMode)
	SynchronizeSeriesPrecision()
}

// TooltipRefresher re-derives crosshair state against mutated data.
type TooltipRefresher interface {
	RecalculateCrosshair(force bool)
	Clear()
}

// LoadMoreCallback delivers a fetched page back into the store. It must be
// invoked on the chart goroutine.
type LoadMoreCallback func(bars []model.PriceBar, hasMore bool)

// LoadMoreRequest is handed to the external history collaborator. Boundary
// is a copy of the bar at the requested end of the sequence, nil when the
// sequence is empty.
type LoadMoreRequest struct {
	Direction model.LoadDirection
	Boundary  *model.PriceBar
	Callback  LoadMoreCallback
}

// HistoryLoader is the external load-more collaborator. Load must return
// immediately; the callback is invoked on some later turn of the chart
// goroutine with the fetched bars.
type HistoryLoader interface {
	Load(req LoadMoreRequest)
}

// ChartDataStore owns the canonical ordered price-bar sequence, the derived
// visible-window projection, the rolling high/low summary and the pagination
// state machine. It is the single mutation point for price data; every other
// store reads from it.
//
// All stores are confined to a single chart goroutine (see cmd/chartfeed for
// the event-loop wiring), so none of them carry locks. The loading flag is
// the only guard: it suppresses overlapping pagination requests whose
// callbacks would otherwise interleave.
type ChartDataStore struct {
	logger    zerolog.Logger
	timeScale *TimeScaleStore
	actions   *ActionStore

	overlay   OverlayUpdater
	indicator IndicatorCalculator
	tooltip   TooltipRefresher
	loader    HistoryLoader

	options              Options
	dataList             []model.PriceBar
	visibleRangeDataList []model.VisibleRangeData
	highLowPrice         model.HighLowSummary

	loadMore       model.LoadMoreState
	loading        bool
	loadingSince   time.Time
	loadingTimeout time.Duration
}

// NewChartDataStore creates the core bound to a time scale. Dependent stores
// are constructed afterwards with the core as their argument (explicit
// injection, no process-wide singleton).
func NewChartDataStore(timeScale *TimeScaleStore) *ChartDataStore {
	return &ChartDataStore{
		logger:       log.With().Str("component", "chart_data_store").Logger(),
		timeScale:    timeScale,
		actions:      NewActionStore(),
		options:      DefaultOptions(),
		highLowPrice: model.NewHighLowSummary(),
	}
}

func (s *ChartDataStore) bindOverlay(o OverlayUpdater) { s.overlay = o }

func (s *ChartDataStore) bindIndicator(i IndicatorCalculator) { s.indicator = i }

func (s *ChartDataStore) bindTooltip(t TooltipRefresher) { s.tooltip = t }

// SetLoader wires the external load-more collaborator.
func (s *ChartDataStore) SetLoader(l HistoryLoader) {
	s.loader = l
}

// SetLoadingTimeout arms a watchdog on the loading flag: when a pagination
// callback never re-enters within d, the next request resets the flag
// instead of staying suppressed forever. Zero disables the watchdog.
func (s *ChartDataStore) SetLoadingTimeout(d time.Duration) {
	if d < 0 {
		return
	}
	s.loadingTimeout = d
}

// Actions returns the action hub the host subscribes on.
func (s *ChartDataStore) Actions() *ActionStore {
	return s.actions
}

// TimeScale returns the referenced time scale store.
func (s *ChartDataStore) TimeScale() *TimeScaleStore {
	return s.timeScale
}

// DataList returns a copy of the canonical sequence.
func (s *ChartDataStore) DataList() []model.PriceBar {
	out := make([]model.PriceBar, len(s.dataList))
	copy(out, s.dataList)
	return out
}

// DataLength returns the canonical sequence length.
func (s *ChartDataStore) DataLength() int {
	return len(s.dataList)
}

// VisibleRangeDataList returns a copy of the visible-window projection.
func (s *ChartDataStore) VisibleRangeDataList() []model.VisibleRangeData {
	out := make([]model.VisibleRangeData, len(s.visibleRangeDataList))
	copy(out, s.visibleRangeDataList)
	return out
}

// HighLowPrice returns the extreme summary of the visible window. Check
// Valid before treating either leg as a real price.
func (s *ChartDataStore) HighLowPrice() model.HighLowSummary {
	return s.highLowPrice
}

// LoadMoreState returns the pagination availability flags.
func (s *ChartDataStore) LoadMoreState() model.LoadMoreState {
	return s.loadMore
}

// Loading reports whether a pagination request is in flight.
func (s *ChartDataStore) Loading() bool {
	return s.loading
}

// Options returns a copy of the per-instance chart options.
func (s *ChartDataStore) Options() Options {
	return s.options
}

// Precision returns the display precision settings.
func (s *ChartDataStore) Precision() Precision {
	return s.options.Precision
}

// Locale returns the configured locale tag.
func (s *ChartDataStore) Locale() string {
	return s.options.Locale
}

// SetOptions merges a partial options update. Invalid values fall back to
// the previous ones; a precision change resynchronizes indicator series and
// a timezone change rebuilds the tick classification.
func (s *ChartDataStore) SetOptions(upd *OptionsUpdate) {
	prevTZ := s.options.Timezone
	precisionChanged := s.options.Merge(upd)
	if precisionChanged && s.indicator != nil {
		s.indicator.SynchronizeSeriesPrecision()
	}
	if s.options.Timezone != prevTZ && s.timeScale != nil {
		s.timeScale.SetTimezone(s.options.Timezone)
		s.timeScale.ClassifyTimeTicks(s.dataList, false)
	}
}

func (s *ChartDataStore) barAt(idx int) *model.PriceBar {
	if idx < 0 || idx >= len(s.dataList) {
		return nil
	}
	return &s.dataList[idx]
}

// RecomputeVisibleWindow fully rebuilds the visible-window projection and
// the high/low summary in one linear pass over the visible range. It
// performs no fan-out; AddData and AddBar drive the downstream
// notifications in the required order.
func (s *ChartDataStore) RecomputeVisibleWindow() {
	vr := s.timeScale.VisibleRange()
	s.visibleRangeDataList = make([]model.VisibleRangeData, 0, vr.Length())
	summary := model.NewHighLowSummary()
	for i := vr.RealFrom; i < vr.RealTo; i++ {
		x := s.timeScale.DataIndexToCoordinate(i)
		bar := s.barAt(i)
		s.visibleRangeDataList = append(s.visibleRangeDataList, model.VisibleRangeData{
			DataIndex: i,
			X:         x,
			Bar:       bar,
		})
		if bar == nil {
			continue
		}
		// Strict comparisons: the earliest bar in scan order wins ties.
		if bar.High > summary.High.Price {
			summary.High = model.PricePoint{Price: bar.High, X: x}
		}
		if bar.Low < summary.Low.Price {
			summary.Low = model.PricePoint{Price: bar.Low, X: x}
		}
	}
	s.highLowPrice = summary
}

// AddData ingests a pagination payload. Init replaces the whole sequence,
// Backward concatenates after it with an incremental tick classification,
// Forward concatenates before it and rebuilds the classification because
// every index shifts. The returned outcome only names what happened; state
// transitions match the silent behavior of the original widget.
func (s *ChartDataStore) AddData(bars []model.PriceBar, mode model.DataMode, hint *model.MoreHint) model.UpdateOutcome {
	switch mode {
	case model.DataModeInit:
		s.reset()
		s.dataList = append([]model.PriceBar(nil), bars...)
		s.timeScale.ClassifyTimeTicks(s.dataList, false)
		s.timeScale.ResetOffsetRightDistance()
		if hint != nil {
			// Both directions are driven from the one hint field on initial
			// load, matching the original widget.
			s.loadMore.Backward = hint.Forward
			s.loadMore.Forward = hint.Forward
		}
		s.logger.Debug().Int("bars", len(bars)).Msg("Installed initial data")
		s.finishMutation(mode, 0, true)
		return model.UpdateApplied

	case model.DataModeBackward:
		s.loading = false
		s.timeScale.ClassifyTimeTicks(bars, true)
		s.dataList = append(s.dataList, bars...)
		if hint != nil {
			s.loadMore.Backward = hint.Forward
		}
		recompute := len(bars) > 0
		s.finishMutation(mode, 0, recompute)
		if !recompute {
			return model.UpdateIgnored
		}
		return model.UpdateApplied

	case model.DataModeForward:
		s.loading = false
		merged := make([]model.PriceBar, 0, len(bars)+len(s.dataList))
		merged = append(merged, bars...)
		merged = append(merged, s.dataList...)
		s.dataList = merged
		s.timeScale.ClassifyTimeTicks(s.dataList, false)
		if hint != nil {
			s.loadMore.Forward = hint.Forward
		}
		recompute := len(bars) > 0
		s.finishMutation(mode, len(bars), recompute)
		if !recompute {
			return model.UpdateIgnored
		}
		return model.UpdateApplied

	default:
		s.logger.Warn().Stringer("mode", mode).Msg("Unsupported ingestion mode ignored")
		return model.UpdateIgnored
	}
}

// AddBar applies a single live-bar update: newer timestamps append, an equal
// timestamp replaces the live bar in place and an older timestamp is dropped
// without touching any state.
func (s *ChartDataStore) AddBar(bar model.PriceBar) model.UpdateOutcome {
	n := len(s.dataList)
	if n > 0 {
		last := s.dataList[n-1]
		switch {
		case bar.Timestamp > last.Timestamp:
			s.dataList = append(s.dataList, bar)
			s.timeScale.ClassifyTimeTicks([]model.PriceBar{bar}, true)
			// Keep the viewport anchored when the user is scrolled back in
			// history: the new tail bar must not push the view rightwards.
			if diff := s.timeScale.LastBarRightSideDiffBarCount(); diff < 0 {
				s.timeScale.SetLastBarRightSideDiffBarCount(diff - 1)
			}
		case bar.Timestamp == last.Timestamp:
			s.dataList[n-1] = bar
		default:
			s.logger.Warn().
				Int64("timestamp", bar.Timestamp).
				Int64("live_timestamp", last.Timestamp).
				Msg("Stale bar update dropped")
			return model.UpdateStaleDropped
		}
	} else {
		s.dataList = append(s.dataList, bar)
		s.timeScale.ClassifyTimeTicks([]model.PriceBar{bar}, true)
	}
	s.finishMutation(model.DataModeUpdate, 0, true)
	return model.UpdateApplied
}

// RequestMoreData asks the external collaborator for another page in the
// given direction. A request already in flight or an exhausted direction
// leaves all state untouched; the outcome tells the caller which guard hit.
func (s *ChartDataStore) RequestMoreData(direction model.LoadDirection) model.LoadRequestOutcome {
	if s.loading {
		if s.loadingTimeout > 0 && time.Since(s.loadingSince) >= s.loadingTimeout {
			s.logger.Warn().
				Stringer("direction", direction).
				Dur("timeout", s.loadingTimeout).
				Msg("Load-more callback never arrived, resetting loading flag")
			s.loading = false
		} else {
			return model.LoadAlreadyLoading
		}
	}
	available := s.loadMore.Backward
	if direction == model.LoadForward {
		available = s.loadMore.Forward
	}
	if !available || s.loader == nil {
		return model.LoadNoMoreData
	}

	s.loading = true
	s.loadingSince = time.Now()
	var boundary *model.PriceBar
	if n := len(s.dataList); n > 0 {
		b := s.dataList[n-1]
		if direction == model.LoadForward {
			b = s.dataList[0]
		}
		boundary = &b
	}
	mode := direction.Mode()
	s.actions.Execute(ActionOnLoadMore, direction)
	s.logger.Debug().Stringer("direction", direction).Msg("Requesting more data")
	s.loader.Load(LoadMoreRequest{
		Direction: direction,
		Boundary:  boundary,
		Callback: func(bars []model.PriceBar, hasMore bool) {
			s.AddData(bars, mode, &model.MoreHint{Forward: hasMore})
		},
	})
	return model.LoadStarted
}

func (s *ChartDataStore) reset() {
	s.dataList = nil
	s.visibleRangeDataList = nil
	s.highLowPrice = model.NewHighLowSummary()
	s.loadMore = model.LoadMoreState{}
	s.loading = false
	if s.tooltip != nil {
		s.tooltip.Clear()
	}
}

// finishMutation runs the post-mutation fan-out. Order matters: overlay
// anchors shift first, then the axis range is re-derived from the new
// length, then the window and extremes, then the tooltip against consistent
// window data, then the indicator series. Consumers assume the axis range is
// already correct when indicators recompute.
func (s *ChartDataStore) finishMutation(mode model.DataMode, indexDelta int, recompute bool) {
	if s.overlay != nil {
		s.overlay.UpdatePointPosition(indexDelta, mode)
	}
	if !recompute {
		return
	}
	s.timeScale.AdjustVisibleRange(len(s.dataList))
	s.RecomputeVisibleWindow()
	if s.tooltip != nil {
		s.tooltip.RecalculateCrosshair(true)
	}
	if s.indicator != nil {
		s.indicator.CalcInstance(mode)
	}
	s.actions.Execute(ActionOnVisibleRangeChange, s.timeScale.VisibleRange())
	s.actions.Execute(ActionOnDataReady, mode)
}
