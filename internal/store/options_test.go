package store

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestOptionsMerge(t *testing.T) {
	tests := []struct {
		name   string
		update *OptionsUpdate
		check  func(t *testing.T, o Options, precisionChanged bool)
	}{
		{
			name:   "nil update keeps defaults",
			update: nil,
			check: func(t *testing.T, o Options, changed bool) {
				if !reflect.DeepEqual(o, DefaultOptions()) {
					t.Errorf("options = %+v, want defaults", o)
				}
				if changed {
					t.Error("nil update must not report a precision change")
				}
			},
		},
		{
			name:   "scalar overrides",
			update: &OptionsUpdate{Locale: strPtr("de-DE"), ThousandsSeparator: strPtr(" ")},
			check: func(t *testing.T, o Options, changed bool) {
				if o.Locale != "de-DE" || o.ThousandsSeparator != " " {
					t.Errorf("locale/separator = %q/%q", o.Locale, o.ThousandsSeparator)
				}
				if o.Timezone != "UTC" {
					t.Errorf("untouched timezone = %q, want UTC", o.Timezone)
				}
			},
		},
		{
			name:   "invalid values ignored",
			update: &OptionsUpdate{Locale: strPtr("  "), PricePrecision: intPtr(-3), DecimalFoldThreshold: intPtr(-1)},
			check: func(t *testing.T, o Options, changed bool) {
				def := DefaultOptions()
				if o.Locale != def.Locale || o.Precision.Price != def.Precision.Price || o.DecimalFoldThreshold != def.DecimalFoldThreshold {
					t.Errorf("invalid values leaked into options: %+v", o)
				}
				if changed {
					t.Error("ignored precision must not report a change")
				}
			},
		},
		{
			name:   "precision change reported",
			update: &OptionsUpdate{PricePrecision: intPtr(5)},
			check: func(t *testing.T, o Options, changed bool) {
				if o.Precision.Price != 5 {
					t.Errorf("price precision = %d, want 5", o.Precision.Price)
				}
				if !changed {
					t.Error("precision change not reported")
				}
			},
		},
		{
			name:   "same precision not reported",
			update: &OptionsUpdate{PricePrecision: intPtr(DefaultOptions().Precision.Price)},
			check: func(t *testing.T, o Options, changed bool) {
				if changed {
					t.Error("unchanged precision reported as change")
				}
			},
		},
		{
			name:   "style scalars merge",
			update: &OptionsUpdate{Styles: &StylesUpdate{CandleType: strPtr("ohlc")}},
			check: func(t *testing.T, o Options, changed bool) {
				if o.Styles.CandleType != "ohlc" {
					t.Errorf("candle type = %q, want ohlc", o.Styles.CandleType)
				}
				if o.Styles.TooltipRule != "always" {
					t.Errorf("untouched tooltip rule = %q", o.Styles.TooltipRule)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			changed := o.Merge(tt.update)
			tt.check(t, o, changed)
		})
	}
}

func TestCustomTooltipLegendReplacedWholesale(t *testing.T) {
	o := DefaultOptions()
	o.Styles.CustomTooltipLegend = []LegendEntry{
		{Title: "Open", Template: "{open}"},
		{Title: "Close", Template: "{close}"},
	}

	o.Merge(&OptionsUpdate{Styles: &StylesUpdate{
		CustomTooltipLegend: []LegendEntry{{Title: "High", Template: "{high}"}},
	}})
	want := []LegendEntry{{Title: "High", Template: "{high}"}}
	if !reflect.DeepEqual(o.Styles.CustomTooltipLegend, want) {
		t.Errorf("legend = %+v, want replaced wholesale with %+v", o.Styles.CustomTooltipLegend, want)
	}

	// A non-nil empty slice clears the legend; nil leaves it alone.
	o.Merge(&OptionsUpdate{Styles: &StylesUpdate{CustomTooltipLegend: []LegendEntry{}}})
	if len(o.Styles.CustomTooltipLegend) != 0 {
		t.Errorf("legend = %+v, want cleared by empty replacement", o.Styles.CustomTooltipLegend)
	}
	o.Merge(&OptionsUpdate{Styles: &StylesUpdate{}})
	if o.Styles.CustomTooltipLegend == nil {
		// cleared state must survive a merge that does not mention the legend
		t.Error("nil legend in update must not touch the stored legend")
	}
}

func TestSetOptionsSynchronizesPrecision(t *testing.T) {
	core, _ := newTestCore()
	rec := &callRecorder{}
	core.bindIndicator(rec)

	core.SetOptions(&OptionsUpdate{PricePrecision: intPtr(4)})

	found := false
	for _, c := range rec.calls {
		if c == "indicator:precision" {
			found = true
		}
	}
	if !found {
		t.Error("precision change did not trigger SynchronizeSeriesPrecision")
	}
}
