package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
	httpclient "github.com/quantview/chartcore/internal/platform/http"
	"github.com/quantview/chartcore/internal/store"
)

// BinanceOptions configures a Binance klines history provider.
type BinanceOptions struct {
	Symbol         string
	Interval       string
	PageSize       int
	RequestTimeout time.Duration
	RequestsPerSec int
	Dispatch       Dispatch
}

// Binance serves pagination pages from the Binance spot klines endpoint.
type Binance struct {
	client   *binance.Client
	symbol   string
	interval string
	pageSize int
	timeout  time.Duration
	dispatch Dispatch
	logger   zerolog.Logger
}

// NewBinance creates a Binance history provider. Klines are public market
// data, so no API credentials are required.
func NewBinance(opts BinanceOptions) *Binance {
	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	// Rate limiting and retries live in the transport, so the SDK calls
	// below stay plain.
	hc := httpclient.NewClient(httpclient.ClientOptions{
		Timeout:         opts.RequestTimeout,
		RequestsPerSec:  opts.RequestsPerSec,
		MaxRetryTimeout: opts.RequestTimeout,
	})
	client := binance.NewClient("", "")
	client.HTTPClient = hc.HTTPClient

	return &Binance{
		client:   client,
		symbol:   opts.Symbol,
		interval: opts.Interval,
		pageSize: opts.PageSize,
		timeout:  opts.RequestTimeout,
		dispatch: opts.Dispatch,
		logger:   log.With().Str("component", "binance_provider").Logger(),
	}
}

// LoadInitial synchronously fetches the most recent page, used to seed the
// store before the event loop starts.
func (p *Binance) LoadInitial(ctx context.Context) ([]model.PriceBar, bool, error) {
	return p.fetch(ctx, store.LoadMoreRequest{Direction: model.LoadForward})
}

// Load fetches one pagination page asynchronously and re-enters the store
// through the request callback. A failed fetch delivers an empty page with
// the availability flag left on, so the direction is retried rather than
// permanently exhausted.
func (p *Binance) Load(req store.LoadMoreRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		bars, hasMore, err := p.fetch(ctx, req)
		if err != nil {
			p.logger.Error().Err(err).Stringer("direction", req.Direction).Msg("Klines fetch failed")
			deliver(p.dispatch, req.Callback, nil, true)
			return
		}
		p.logger.Debug().Stringer("direction", req.Direction).Int("bars", len(bars)).Msg("Fetched klines page")
		deliver(p.dispatch, req.Callback, bars, hasMore)
	}()
}

func (p *Binance) fetch(ctx context.Context, req store.LoadMoreRequest) ([]model.PriceBar, bool, error) {
	svc := p.client.NewKlinesService().
		Symbol(p.symbol).
		Interval(p.interval).
		Limit(p.pageSize)
	if req.Boundary != nil {
		if req.Direction == model.LoadForward {
			svc = svc.EndTime(req.Boundary.Timestamp - 1)
		} else {
			svc = svc.StartTime(req.Boundary.Timestamp + 1)
		}
	}

	klines, err := svc.Do(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("fetching klines: %w", err)
	}

	bars, err := convertKlines(klines)
	if err != nil {
		return nil, false, err
	}
	return bars, len(bars) == p.pageSize, nil
}

func convertKlines(klines []*binance.Kline) ([]model.PriceBar, error) {
	bars := make([]model.PriceBar, 0, len(klines))
	for _, k := range klines {
		bar, err := convertKline(k)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func convertKline(k *binance.Kline) (model.PriceBar, error) {
	var (
		bar model.PriceBar
		err error
	)
	bar.Timestamp = k.OpenTime
	if bar.Open, err = strconv.ParseFloat(k.Open, 64); err != nil {
		return bar, fmt.Errorf("parsing open %q: %w", k.Open, err)
	}
	if bar.High, err = strconv.ParseFloat(k.High, 64); err != nil {
		return bar, fmt.Errorf("parsing high %q: %w", k.High, err)
	}
	if bar.Low, err = strconv.ParseFloat(k.Low, 64); err != nil {
		return bar, fmt.Errorf("parsing low %q: %w", k.Low, err)
	}
	if bar.Close, err = strconv.ParseFloat(k.Close, 64); err != nil {
		return bar, fmt.Errorf("parsing close %q: %w", k.Close, err)
	}
	if bar.Volume, err = strconv.ParseFloat(k.Volume, 64); err != nil {
		return bar, fmt.Errorf("parsing volume %q: %w", k.Volume, err)
	}
	if bar.Turnover, err = strconv.ParseFloat(k.QuoteAssetVolume, 64); err != nil {
		return bar, fmt.Errorf("parsing turnover %q: %w", k.QuoteAssetVolume, err)
	}
	return bar, nil
}
