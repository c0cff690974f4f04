package store

import (
	"testing"
	"time"

	"github.com/quantview/chartcore/internal/model"
)

func TestAdjustVisibleRange(t *testing.T) {
	tests := []struct {
		name     string
		width    float64
		barSpace float64
		diff     float64
		dataLen  int
		want     model.VisibleRange
	}{
		{name: "anchored at newest", width: 100, barSpace: 10, diff: 0, dataLen: 30, want: model.VisibleRange{RealFrom: 20, RealTo: 30}},
		{name: "fewer bars than viewport", width: 100, barSpace: 10, diff: 0, dataLen: 4, want: model.VisibleRange{RealFrom: 0, RealTo: 4}},
		{name: "scrolled back into history", width: 100, barSpace: 10, diff: -12, dataLen: 30, want: model.VisibleRange{RealFrom: 8, RealTo: 18}},
		{name: "right gap clamps to data length", width: 100, barSpace: 10, diff: 3, dataLen: 30, want: model.VisibleRange{RealFrom: 20, RealTo: 30}},
		{name: "scrolled past the start", width: 100, barSpace: 10, diff: -200, dataLen: 30, want: model.VisibleRange{RealFrom: 0, RealTo: 0}},
		{name: "empty data", width: 100, barSpace: 10, diff: 0, dataLen: 0, want: model.VisibleRange{RealFrom: 0, RealTo: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTimeScaleStore(tt.width, tt.barSpace)
			ts.SetLastBarRightSideDiffBarCount(tt.diff)
			ts.AdjustVisibleRange(tt.dataLen)
			if got := ts.VisibleRange(); got != tt.want {
				t.Errorf("visible range = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	ts := NewTimeScaleStore(100, 10)
	ts.AdjustVisibleRange(30)
	vr := ts.VisibleRange()
	for i := vr.RealFrom; i < vr.RealTo; i++ {
		x := ts.DataIndexToCoordinate(i)
		if got := ts.CoordinateToDataIndex(x); got != i {
			t.Errorf("round trip of index %d through x=%v gave %d", i, x, got)
		}
	}
}

func TestZoomClampsBarSpace(t *testing.T) {
	ts := NewTimeScaleStore(100, 10)
	ts.AdjustVisibleRange(100)

	ts.Zoom(1000)
	if got := ts.BarSpace(); got != maxBarSpace {
		t.Errorf("bar space after zoom in = %v, want clamp at %v", got, maxBarSpace)
	}
	ts.Zoom(0.0001)
	if got := ts.BarSpace(); got != minBarSpace {
		t.Errorf("bar space after zoom out = %v, want clamp at %v", got, minBarSpace)
	}
}

func TestSetTimezoneInvalidKeepsPrevious(t *testing.T) {
	ts := NewTimeScaleStore(100, 10)
	ts.SetTimezone("Europe/Berlin")
	ts.SetTimezone("Not/AZone")
	if got := ts.loc.String(); got != "Europe/Berlin" {
		t.Errorf("location = %q, want Europe/Berlin kept", got)
	}
}

func TestClassifyTimeTicksWeights(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	bars := []model.PriceBar{
		{Timestamp: base.UnixMilli()},
		{Timestamp: base.Add(time.Minute).UnixMilli()},
		{Timestamp: base.Add(time.Hour).UnixMilli()},
		{Timestamp: base.AddDate(0, 0, 1).UnixMilli()},
		{Timestamp: base.AddDate(0, 1, 1).UnixMilli()},
		{Timestamp: base.AddDate(1, 1, 1).UnixMilli()},
	}
	ts := NewTimeScaleStore(100, 10)
	ts.ClassifyTimeTicks(bars, false)

	want := []TickWeight{TickYear, TickMinute, TickHour, TickDay, TickMonth, TickYear}
	ticks := ts.Ticks()
	if len(ticks) != len(want) {
		t.Fatalf("tick count = %d, want %d", len(ticks), len(want))
	}
	for i, w := range want {
		if ticks[i].Weight != w {
			t.Errorf("tick %d weight = %v, want %v", i, ticks[i].Weight, w)
		}
		if ticks[i].DataIndex != i {
			t.Errorf("tick %d data index = %d, want %d", i, ticks[i].DataIndex, i)
		}
	}
}

func TestClassifyTimeTicksIncrementalAppend(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	ts := NewTimeScaleStore(100, 10)
	ts.ClassifyTimeTicks([]model.PriceBar{
		{Timestamp: base.UnixMilli()},
		{Timestamp: base.Add(time.Minute).UnixMilli()},
	}, false)

	ts.ClassifyTimeTicks([]model.PriceBar{
		{Timestamp: base.Add(25 * time.Hour).UnixMilli()},
	}, true)

	ticks := ts.Ticks()
	if len(ticks) != 3 {
		t.Fatalf("tick count = %d, want 3", len(ticks))
	}
	if ticks[2].DataIndex != 2 {
		t.Errorf("appended tick index = %d, want 2", ticks[2].DataIndex)
	}
	if ticks[2].Weight != TickDay {
		t.Errorf("appended tick weight = %v, want %v", ticks[2].Weight, TickDay)
	}
}

func TestResetOffsetRightDistance(t *testing.T) {
	ts := NewTimeScaleStore(100, 10)
	ts.SetOffsetRightDistance(30)
	ts.SetLastBarRightSideDiffBarCount(-8)

	ts.ResetOffsetRightDistance()

	if got := ts.LastBarRightSideDiffBarCount(); got != 3 {
		t.Errorf("right-side diff after reset = %v, want 3", got)
	}
}
