package store

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
)

// OverlayPoint anchors an overlay to a bar index and a price value.
type OverlayPoint struct {
	DataIndex int
	Value     float64
}

// Overlay is a drawing (trend line, fibonacci, annotation) anchored to the
// data sequence by index.
type Overlay struct {
	ID     string
	Name   string
	Points []OverlayPoint
}

// OverlayStore keeps overlays consistent with the data sequence; when data
// is concatenated before index zero every anchor index must shift with it.
type OverlayStore struct {
	logger   zerolog.Logger
	overlays []*Overlay
}

// NewOverlayStore creates an empty overlay store attached to core.
func NewOverlayStore(core *ChartDataStore) *OverlayStore {
	o := &OverlayStore{logger: log.With().Str("component", "overlay_store").Logger()}
	if core != nil {
		core.bindOverlay(o)
	}
	return o
}

// Add registers an overlay. Overlays with an already-used ID are ignored.
func (o *OverlayStore) Add(ov *Overlay) {
	if ov == nil || ov.ID == "" {
		return
	}
	for _, existing := range o.overlays {
		if existing.ID == ov.ID {
			o.logger.Warn().Str("id", ov.ID).Msg("Duplicate overlay id ignored")
			return
		}
	}
	o.overlays = append(o.overlays, ov)
}

// Remove deletes the overlay with the given ID, if present.
func (o *OverlayStore) Remove(id string) {
	for i, ov := range o.overlays {
		if ov.ID == id {
			o.overlays = append(o.overlays[:i], o.overlays[i+1:]...)
			return
		}
	}
}

// Get returns the overlay with the given ID, or nil.
func (o *OverlayStore) Get(id string) *Overlay {
	for _, ov := range o.overlays {
		if ov.ID == id {
			return ov
		}
	}
	return nil
}

// List returns the stored overlays in insertion order.
func (o *OverlayStore) List() []*Overlay {
	out := make([]*Overlay, len(o.overlays))
	copy(out, o.overlays)
	return out
}

// UpdatePointPosition shifts every anchor index by indexDelta when mode
// indicates data was concatenated before the front of the sequence. Other
// modes never move existing indices.
func (o *OverlayStore) UpdatePointPosition(indexDelta int, mode model.DataMode) {
	if mode != model.DataModeForward || indexDelta <= 0 {
		return
	}
	for _, ov := range o.overlays {
		for i := range ov.Points {
			ov.Points[i].DataIndex += indexDelta
		}
	}
	o.logger.Debug().Int("index_delta", indexDelta).Int("overlays", len(o.overlays)).Msg("Shifted overlay anchors")
}
