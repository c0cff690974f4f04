// Package feed streams live bar updates into the chart event loop. Each bar
// emitted for an open candle replaces the live bar in place; the first bar
// of a new candle appends.
package feed

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
)

// DefaultBinanceWSEndpoint is the public spot market stream host.
const DefaultBinanceWSEndpoint = "wss://stream.binance.com:9443/ws"

// KlineFeed subscribes to a Binance kline stream over websocket and forwards
// each update as a PriceBar on Out.
type KlineFeed struct {
	endpoint string
	symbol   string
	interval string
	out      chan<- model.PriceBar
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// NewKlineFeed creates a feed for one symbol/interval pair. Bars are
// delivered on out; the caller owns the channel and drains it on the chart
// goroutine.
func NewKlineFeed(endpoint, symbol, interval string, out chan<- model.PriceBar) *KlineFeed {
	if endpoint == "" {
		endpoint = DefaultBinanceWSEndpoint
	}
	return &KlineFeed{
		endpoint: endpoint,
		symbol:   symbol,
		interval: interval,
		out:      out,
		logger:   log.With().Str("component", "kline_feed").Str("symbol", symbol).Logger(),
	}
}

// Start launches the stream worker. It returns immediately; the worker
// reconnects with exponential backoff until ctx is cancelled.
func (f *KlineFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return fmt.Errorf("kline feed already running")
	}
	f.running = true
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(ctx)
	f.logger.Info().Str("interval", f.interval).Msg("Kline feed started")
	return nil
}

// Wait blocks until the stream worker has exited.
func (f *KlineFeed) Wait() {
	f.wg.Wait()
}

func (f *KlineFeed) run(ctx context.Context) {
	defer f.wg.Done()

	url := fmt.Sprintf("%s/%s@kline_%s", f.endpoint, strings.ToLower(f.symbol), f.interval)
	reconnect := backoff.NewExponentialBackOff()
	reconnect.MaxElapsedTime = 0 // keep reconnecting until cancelled

	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			wait := reconnect.NextBackOff()
			f.logger.Warn().Err(err).Dur("retry_in", wait).Msg("Websocket dial failed")
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return
			}
		}
		reconnect.Reset()
		f.logger.Debug().Str("url", url).Msg("Websocket connected")

		if err := f.readLoop(ctx, conn); err != nil && ctx.Err() == nil {
			f.logger.Warn().Err(err).Msg("Websocket read failed, reconnecting")
		}
		conn.Close()
		if ctx.Err() != nil {
			return
		}
	}
}

func (f *KlineFeed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event klineEvent
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		if event.Type != "kline" {
			continue
		}
		bar, err := event.Kline.toBar()
		if err != nil {
			f.logger.Warn().Err(err).Msg("Malformed kline event dropped")
			continue
		}
		select {
		case f.out <- bar:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type klineEvent struct {
	Type  string       `json:"e"`
	Kline klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	Turnover string `json:"q"`
	Closed   bool   `json:"x"`
}

func (k klinePayload) toBar() (model.PriceBar, error) {
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
	if bar.Turnover, err = strconv.ParseFloat(k.Turnover, 64); err != nil {
		return bar, fmt.Errorf("parsing turnover %q: %w", k.Turnover, err)
	}
	return bar, nil
}
