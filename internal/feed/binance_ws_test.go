package feed

import (
	"encoding/json"
	"testing"
)

func TestKlineEventToBar(t *testing.T) {
	raw := `{"e":"kline","E":1700000000123,"s":"BTCUSDT","k":{"t":1700000000000,"T":1700000059999,"s":"BTCUSDT","i":"1m","o":"42000.10","c":"42050.00","h":"42100.00","l":"41900.50","v":"12.5","q":"525625.00","x":false}}`
	var event klineEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatal(err)
	}
	if event.Type != "kline" {
		t.Fatalf("event type = %q", event.Type)
	}

	bar, err := event.Kline.toBar()
	if err != nil {
		t.Fatal(err)
	}
	if bar.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %d", bar.Timestamp)
	}
	if bar.Open != 42000.10 || bar.Close != 42050 || bar.High != 42100 || bar.Low != 41900.5 {
		t.Errorf("OHLC = %+v", bar)
	}
	if bar.Volume != 12.5 || bar.Turnover != 525625 {
		t.Errorf("volume/turnover = %v/%v", bar.Volume, bar.Turnover)
	}
}

func TestKlineEventBadPriceRejected(t *testing.T) {
	k := klinePayload{Open: "x", High: "1", Low: "1", Close: "1", Volume: "1", Turnover: "1"}
	if _, err := k.toBar(); err == nil {
		t.Error("malformed payload accepted")
	}
}
