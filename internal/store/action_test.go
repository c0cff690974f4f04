package store

import (
	"testing"

	"github.com/quantview/chartcore/internal/model"
)

func TestActionSubscribeEmitUnsubscribe(t *testing.T) {
	a := NewActionStore()
	var got []any
	id := a.Subscribe(ActionOnDataReady, func(payload any) {
		got = append(got, payload)
	})

	a.Execute(ActionOnDataReady, model.DataModeInit)
	a.Execute(ActionOnVisibleRangeChange, nil) // different action, not delivered
	a.Unsubscribe(ActionOnDataReady, id)
	a.Execute(ActionOnDataReady, model.DataModeUpdate)

	if len(got) != 1 || got[0] != model.DataModeInit {
		t.Errorf("delivered payloads = %v, want exactly [init]", got)
	}
}

func TestActionNilCallbackIgnored(t *testing.T) {
	a := NewActionStore()
	if id := a.Subscribe(ActionOnLoadMore, nil); id != 0 {
		t.Errorf("nil callback got token %d, want 0", id)
	}
	if a.HasSubscribers(ActionOnLoadMore) {
		t.Error("nil callback registered as subscriber")
	}
}

func TestCoreEmitsActions(t *testing.T) {
	core, _ := newTestCore()
	var modes []model.DataMode
	core.Actions().Subscribe(ActionOnDataReady, func(payload any) {
		modes = append(modes, payload.(model.DataMode))
	})

	core.AddData(flatBars(2), model.DataModeInit, nil)
	core.AddBar(model.PriceBar{Timestamp: 3 * 60_000, Close: 1, High: 1, Low: 1})

	if len(modes) != 2 || modes[0] != model.DataModeInit || modes[1] != model.DataModeUpdate {
		t.Errorf("emitted modes = %v, want [init update]", modes)
	}
}
