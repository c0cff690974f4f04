package store

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/format"
	"github.com/quantview/chartcore/internal/model"
)

// Crosshair is the active pointer position in chart coordinates.
type Crosshair struct {
	Visible   bool
	X         float64
	DataIndex int
}

// TooltipStore derives the crosshair target bar and the legend text from the
// core's visible window.
type TooltipStore struct {
	logger    zerolog.Logger
	core      *ChartDataStore
	timeScale *TimeScaleStore
	crosshair Crosshair
	legend    []string
}

// NewTooltipStore creates a tooltip store bound to core and its time scale.
func NewTooltipStore(core *ChartDataStore, timeScale *TimeScaleStore) *TooltipStore {
	t := &TooltipStore{
		logger:    log.With().Str("component", "tooltip_store").Logger(),
		core:      core,
		timeScale: timeScale,
	}
	if core != nil {
		core.bindTooltip(t)
	}
	return t
}

// Crosshair returns the current crosshair state.
func (t *TooltipStore) Crosshair() Crosshair {
	return t.crosshair
}

// Legend returns the legend lines for the crosshair bar.
func (t *TooltipStore) Legend() []string {
	return t.legend
}

// SetCrosshair places the crosshair at viewport x and recalculates the
// target bar and legend.
func (t *TooltipStore) SetCrosshair(x float64) {
	t.crosshair.Visible = true
	t.crosshair.X = x
	t.RecalculateCrosshair(true)
}

// RecalculateCrosshair re-derives the crosshair data index and legend from
// the current window. Without force an invisible crosshair stays untouched;
// with force the derivation runs anyway, which the core uses after every
// sequence mutation so a later reveal shows consistent values.
func (t *TooltipStore) RecalculateCrosshair(force bool) {
	if !t.crosshair.Visible && !force {
		return
	}
	if t.core == nil || t.timeScale == nil {
		return
	}
	vr := t.timeScale.VisibleRange()
	if vr.Length() == 0 {
		t.legend = nil
		return
	}
	idx := t.timeScale.CoordinateToDataIndex(t.crosshair.X)
	if idx < vr.RealFrom {
		idx = vr.RealFrom
	}
	if idx > vr.RealTo-1 {
		idx = vr.RealTo - 1
	}
	t.crosshair.DataIndex = idx
	bar := t.core.barAt(idx)
	if bar == nil {
		t.legend = nil
		return
	}
	t.legend = t.buildLegend(bar)
	if t.core.actions != nil {
		t.core.actions.Execute(ActionOnCrosshairChange, t.crosshair)
	}
}

// Clear hides the crosshair and drops the legend.
func (t *TooltipStore) Clear() {
	t.crosshair = Crosshair{}
	t.legend = nil
}

func (t *TooltipStore) buildLegend(bar *model.PriceBar) []string {
	opts := t.core.options
	custom := opts.Styles.CustomTooltipLegend
	if len(custom) == 0 {
		return []string{
			"O: " + t.formatPrice(bar.Open),
			"H: " + t.formatPrice(bar.High),
			"L: " + t.formatPrice(bar.Low),
			"C: " + t.formatPrice(bar.Close),
			"V: " + t.formatVolume(bar.Volume),
		}
	}
	lines := make([]string, 0, len(custom))
	for _, entry := range custom {
		lines = append(lines, entry.Title+t.substitute(entry.Template, bar))
	}
	return lines
}

func (t *TooltipStore) substitute(template string, bar *model.PriceBar) string {
	r := strings.NewReplacer(
		"{open}", t.formatPrice(bar.Open),
		"{high}", t.formatPrice(bar.High),
		"{low}", t.formatPrice(bar.Low),
		"{close}", t.formatPrice(bar.Close),
		"{volume}", t.formatVolume(bar.Volume),
	)
	return r.Replace(template)
}

func (t *TooltipStore) formatPrice(v float64) string {
	opts := t.core.options
	s := format.Precision(v, opts.Precision.Price)
	s = format.Thousands(s, opts.ThousandsSeparator)
	return format.FoldDecimal(s, opts.DecimalFoldThreshold)
}

func (t *TooltipStore) formatVolume(v float64) string {
	opts := t.core.options
	s := format.Precision(v, opts.Precision.Volume)
	return format.Thousands(s, opts.ThousandsSeparator)
}
