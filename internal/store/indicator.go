package store

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
)

// IndicatorCalcFunc computes one full-length series for a period; warmup
// slots are NaN so the series stays index-aligned with the bar sequence.
type IndicatorCalcFunc func(bars []model.PriceBar, period int) []float64

// Indicator is one configured indicator instance. Series holds one slice per
// period in Params, each index-aligned with the canonical bar sequence.
type Indicator struct {
	Name      string
	Params    []int
	Precision int
	Series    [][]float64

	calc        IndicatorCalcFunc
	volumeBased bool
}

// IndicatorStore owns the indicator instances derived from the canonical
// sequence and recomputes them on every data mutation the core reports.
type IndicatorStore struct {
	logger    zerolog.Logger
	core      *ChartDataStore
	order     []string
	instances map[string]*Indicator
}

// NewIndicatorStore creates an indicator store bound to core.
func NewIndicatorStore(core *ChartDataStore) *IndicatorStore {
	s := &IndicatorStore{
		logger:    log.With().Str("component", "indicator_store").Logger(),
		core:      core,
		instances: make(map[string]*Indicator),
	}
	if core != nil {
		core.bindIndicator(s)
	}
	return s
}

// CreateInstance registers a built-in indicator ("MA", "EMA" or "VOL") with
// the given periods and computes its initial series.
func (s *IndicatorStore) CreateInstance(name string, params []int) error {
	if _, ok := s.instances[name]; ok {
		return fmt.Errorf("indicator %q already exists", name)
	}
	var calc IndicatorCalcFunc
	volumeBased := false
	switch name {
	case "MA":
		calc = CalculateMA
	case "EMA":
		calc = CalculateEMA
	case "VOL":
		calc = CalculateVolMA
		volumeBased = true
	default:
		return fmt.Errorf("unknown indicator %q", name)
	}
	for _, p := range params {
		if p <= 0 {
			return fmt.Errorf("indicator %q: period must be positive, got %d", name, p)
		}
	}
	inst := &Indicator{
		Name:        name,
		Params:      params,
		Precision:   s.precisionFor(volumeBased),
		calc:        calc,
		volumeBased: volumeBased,
	}
	s.instances[name] = inst
	s.order = append(s.order, name)
	s.recompute(inst)
	return nil
}

// RemoveInstance drops an indicator instance.
func (s *IndicatorStore) RemoveInstance(name string) {
	if _, ok := s.instances[name]; !ok {
		return
	}
	delete(s.instances, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Instance returns the named indicator, or nil.
func (s *IndicatorStore) Instance(name string) *Indicator {
	return s.instances[name]
}

// CalcInstance recomputes every indicator series against the current
// canonical sequence. mode names the mutation that triggered the recompute.
func (s *IndicatorStore) CalcInstance(mode model.DataMode) {
	for _, name := range s.order {
		s.recompute(s.instances[name])
	}
	if len(s.order) > 0 {
		s.logger.Debug().Stringer("mode", mode).Int("instances", len(s.order)).Msg("Recomputed indicator series")
	}
}

// SynchronizeSeriesPrecision refreshes each instance's display precision
// from the chart options, called when price or volume precision changes.
func (s *IndicatorStore) SynchronizeSeriesPrecision() {
	for _, name := range s.order {
		inst := s.instances[name]
		inst.Precision = s.precisionFor(inst.volumeBased)
	}
}

func (s *IndicatorStore) precisionFor(volumeBased bool) int {
	if s.core == nil {
		return 2
	}
	if volumeBased {
		return s.core.options.Precision.Volume
	}
	return s.core.options.Precision.Price
}

func (s *IndicatorStore) recompute(inst *Indicator) {
	var bars []model.PriceBar
	if s.core != nil {
		bars = s.core.dataList
	}
	inst.Series = make([][]float64, len(inst.Params))
	for i, period := range inst.Params {
		inst.Series[i] = inst.calc(bars, period)
	}
}

// CalculateMA computes a simple moving average of closes. Slots before the
// period fills are NaN.
func CalculateMA(bars []model.PriceBar, period int) []float64 {
	out := warmupSeries(len(bars), period)
	var sum float64
	for i, bar := range bars {
		sum += bar.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// CalculateEMA computes an exponential moving average of closes seeded with
// the simple average of the first period closes.
func CalculateEMA(bars []model.PriceBar, period int) []float64 {
	out := warmupSeries(len(bars), period)
	if len(bars) < period {
		return out
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += bars[i].Close
	}
	ema := sum / float64(period)
	out[period-1] = ema
	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(bars); i++ {
		ema = (bars[i].Close-ema)*multiplier + ema
		out[i] = ema
	}
	return out
}

// CalculateVolMA computes a simple moving average of volumes.
func CalculateVolMA(bars []model.PriceBar, period int) []float64 {
	out := warmupSeries(len(bars), period)
	var sum float64
	for i, bar := range bars {
		sum += bar.Volume
		if i >= period {
			sum -= bars[i-period].Volume
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func warmupSeries(n, period int) []float64 {
	out := make([]float64, n)
	limit := period - 1
	if limit > n {
		limit = n
	}
	for i := 0; i < limit; i++ {
		out[i] = math.NaN()
	}
	return out
}
