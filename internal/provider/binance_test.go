package provider

import (
	"testing"

	"github.com/adshao/go-binance/v2"
)

func TestConvertKlines(t *testing.T) {
	klines := []*binance.Kline{
		{
			OpenTime:         1_700_000_000_000,
			Open:             "42000.10",
			High:             "42100.00",
			Low:              "41900.50",
			Close:            "42050.00",
			Volume:           "12.5",
			QuoteAssetVolume: "525625.00",
		},
		{
			OpenTime:         1_700_000_060_000,
			Open:             "42050.00",
			High:             "42200.00",
			Low:              "42000.00",
			Close:            "42180.00",
			Volume:           "8.25",
			QuoteAssetVolume: "347985.00",
		},
	}

	bars, err := convertKlines(klines)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("bar count = %d, want 2", len(bars))
	}
	first := bars[0]
	if first.Timestamp != 1_700_000_000_000 {
		t.Errorf("timestamp = %d", first.Timestamp)
	}
	if first.Open != 42000.10 || first.High != 42100 || first.Low != 41900.5 || first.Close != 42050 {
		t.Errorf("OHLC = %+v", first)
	}
	if first.Volume != 12.5 || first.Turnover != 525625 {
		t.Errorf("volume/turnover = %v/%v", first.Volume, first.Turnover)
	}
}

func TestConvertKlinesBadNumber(t *testing.T) {
	klines := []*binance.Kline{{Open: "not-a-price", High: "1", Low: "1", Close: "1", Volume: "1", QuoteAssetVolume: "1"}}
	if _, err := convertKlines(klines); err == nil {
		t.Error("malformed kline accepted")
	}
}
