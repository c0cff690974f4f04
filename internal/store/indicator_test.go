package store

import (
	"math"
	"testing"

	"github.com/quantview/chartcore/internal/model"
)

func closesToBars(closes []float64) []model.PriceBar {
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Timestamp: int64((i + 1) * 60_000), Close: c, Volume: c * 10}
	}
	return bars
}

func TestCalculateMA(t *testing.T) {
	bars := closesToBars([]float64{1, 2, 3, 4, 5})
	got := CalculateMA(bars, 3)
	want := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	assertSeries(t, got, want)
}

func TestCalculateEMA(t *testing.T) {
	bars := closesToBars([]float64{1, 2, 3, 4, 5})
	got := CalculateEMA(bars, 3)
	// seeded with SMA(1,2,3)=2, multiplier 0.5
	want := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	assertSeries(t, got, want)
}

func TestCalculateVolMA(t *testing.T) {
	bars := closesToBars([]float64{1, 2, 3})
	got := CalculateVolMA(bars, 2)
	want := []float64{math.NaN(), 15, 25}
	assertSeries(t, got, want)
}

func assertSeries(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("series length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("series[%d] = %v, want NaN", i, got[i])
			}
			continue
		}
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIndicatorStoreRecomputesOnDataChange(t *testing.T) {
	core, _ := newTestCore()
	ind := NewIndicatorStore(core)
	if err := ind.CreateInstance("MA", []int{2}); err != nil {
		t.Fatal(err)
	}

	core.AddData(closesToBars([]float64{1, 2, 3}), model.DataModeInit, nil)

	inst := ind.Instance("MA")
	if inst == nil {
		t.Fatal("instance missing")
	}
	assertSeries(t, inst.Series[0], []float64{math.NaN(), 1.5, 2.5})

	core.AddBar(model.PriceBar{Timestamp: 4 * 60_000, Close: 5})
	assertSeries(t, ind.Instance("MA").Series[0], []float64{math.NaN(), 1.5, 2.5, 4})
}

func TestIndicatorStoreRejectsBadInstances(t *testing.T) {
	core, _ := newTestCore()
	ind := NewIndicatorStore(core)
	if err := ind.CreateInstance("WHAT", []int{3}); err == nil {
		t.Error("unknown indicator accepted")
	}
	if err := ind.CreateInstance("MA", []int{0}); err == nil {
		t.Error("non-positive period accepted")
	}
	if err := ind.CreateInstance("EMA", []int{3}); err != nil {
		t.Fatal(err)
	}
	if err := ind.CreateInstance("EMA", []int{5}); err == nil {
		t.Error("duplicate instance accepted")
	}
}

func TestSynchronizeSeriesPrecision(t *testing.T) {
	core, _ := newTestCore()
	ind := NewIndicatorStore(core)
	if err := ind.CreateInstance("MA", []int{2}); err != nil {
		t.Fatal(err)
	}
	if err := ind.CreateInstance("VOL", []int{2}); err != nil {
		t.Fatal(err)
	}

	core.SetOptions(&OptionsUpdate{PricePrecision: intPtr(6), VolumePrecision: intPtr(1)})

	if got := ind.Instance("MA").Precision; got != 6 {
		t.Errorf("MA precision = %d, want 6", got)
	}
	if got := ind.Instance("VOL").Precision; got != 1 {
		t.Errorf("VOL precision = %d, want 1", got)
	}
}
