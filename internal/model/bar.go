package model

// PriceBar represents a single OHLCV observation. Timestamp is the bar open
// time in milliseconds and is the identity of the bar within a sequence.
type PriceBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume,omitempty"`
	Turnover  float64 `json:"turnover,omitempty"`
}

// VisibleRangeData is the projection of one data index into the current
// coordinate space. Bar is nil for sparse placeholder slots; the slot still
// occupies an index so x-alignment of its neighbours is preserved.
type VisibleRangeData struct {
	DataIndex int
	X         float64
	Bar       *PriceBar
}
