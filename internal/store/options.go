package store

import "strings"

// Precision holds fraction-digit counts for display formatting.
type Precision struct {
	Price  int
	Volume int
}

// LegendEntry is one custom tooltip legend line. Title is shown as-is;
// Template may reference bar fields like {open}, {close}, {high}, {low},
// {volume} which are substituted with formatted values.
type LegendEntry struct {
	Title    string
	Template string
}

// Styles is the mergeable style tree consumed by the data core. Only the
// fields the core itself reads are modelled; pixel styling stays with the
// render layer.
type Styles struct {
	CandleType  string
	TooltipRule string

	// CustomTooltipLegend is replaced wholesale on update, never merged:
	// a partial merge of legend lines produces nonsense rows.
	CustomTooltipLegend []LegendEntry
}

// Options is the per-instance configuration of a chart data core.
type Options struct {
	Locale               string
	Timezone             string
	Precision            Precision
	ThousandsSeparator   string
	DecimalFoldThreshold int
	Styles               Styles
}

// DefaultOptions mirrors the widget defaults.
func DefaultOptions() Options {
	return Options{
		Locale:               "en-US",
		Timezone:             "UTC",
		Precision:            Precision{Price: 2, Volume: 0},
		ThousandsSeparator:   ",",
		DecimalFoldThreshold: 3,
		Styles: Styles{
			CandleType:  "candle_solid",
			TooltipRule: "always",
		},
	}
}

// OptionsUpdate is a partial override; nil fields keep the previous value.
// Invalid values (negative precision, blank locale) are ignored rather than
// rejected.
type OptionsUpdate struct {
	Locale               *string
	Timezone             *string
	PricePrecision       *int
	VolumePrecision      *int
	ThousandsSeparator   *string
	DecimalFoldThreshold *int
	Styles               *StylesUpdate
}

// StylesUpdate is a partial style override. A non-nil CustomTooltipLegend
// replaces the whole legend slice, even when empty.
type StylesUpdate struct {
	CandleType          *string
	TooltipRule         *string
	CustomTooltipLegend []LegendEntry
}

// Merge applies upd on top of o and reports whether price or volume
// precision changed, which obliges the caller to resynchronize indicator
// series precision.
func (o *Options) Merge(upd *OptionsUpdate) (precisionChanged bool) {
	if upd == nil {
		return false
	}
	if upd.Locale != nil && strings.TrimSpace(*upd.Locale) != "" {
		o.Locale = *upd.Locale
	}
	if upd.Timezone != nil && strings.TrimSpace(*upd.Timezone) != "" {
		o.Timezone = *upd.Timezone
	}
	if upd.PricePrecision != nil && *upd.PricePrecision >= 0 {
		if o.Precision.Price != *upd.PricePrecision {
			precisionChanged = true
		}
		o.Precision.Price = *upd.PricePrecision
	}
	if upd.VolumePrecision != nil && *upd.VolumePrecision >= 0 {
		if o.Precision.Volume != *upd.VolumePrecision {
			precisionChanged = true
		}
		o.Precision.Volume = *upd.VolumePrecision
	}
	if upd.ThousandsSeparator != nil {
		o.ThousandsSeparator = *upd.ThousandsSeparator
	}
	if upd.DecimalFoldThreshold != nil && *upd.DecimalFoldThreshold >= 0 {
		o.DecimalFoldThreshold = *upd.DecimalFoldThreshold
	}
	if upd.Styles != nil {
		if upd.Styles.CandleType != nil && *upd.Styles.CandleType != "" {
			o.Styles.CandleType = *upd.Styles.CandleType
		}
		if upd.Styles.TooltipRule != nil && *upd.Styles.TooltipRule != "" {
			o.Styles.TooltipRule = *upd.Styles.TooltipRule
		}
		if upd.Styles.CustomTooltipLegend != nil {
			legend := make([]LegendEntry, len(upd.Styles.CustomTooltipLegend))
			copy(legend, upd.Styles.CustomTooltipLegend)
			o.Styles.CustomTooltipLegend = legend
		}
	}
	return precisionChanged
}
