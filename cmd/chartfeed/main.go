// chartfeed wires the chart data core to a history provider and a live
// kline feed, runs the single chart goroutine as an event loop and logs the
// visible window extremes as data flows in. All store mutations happen on
// that one goroutine; providers and the feed hand their results over through
// the loop channel.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/config"
	"github.com/quantview/chartcore/internal/feed"
	"github.com/quantview/chartcore/internal/model"
	"github.com/quantview/chartcore/internal/provider"
	"github.com/quantview/chartcore/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	logger := log.With().Str("component", "chartfeed").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeScale := store.NewTimeScaleStore(cfg.ChartWidth, cfg.BarSpace)
	timeScale.SetOffsetRightDistance(cfg.OffsetRightDistance)

	core := store.NewChartDataStore(timeScale)
	core.SetLoadingTimeout(cfg.LoadingTimeout)
	core.SetOptions(&store.OptionsUpdate{
		Locale:               &cfg.Locale,
		Timezone:             &cfg.Timezone,
		PricePrecision:       &cfg.PricePrecision,
		VolumePrecision:      &cfg.VolumePrecision,
		ThousandsSeparator:   &cfg.ThousandsSeparator,
		DecimalFoldThreshold: &cfg.DecimalFoldThreshold,
	})

	indicators := store.NewIndicatorStore(core)
	if err := indicators.CreateInstance("MA", []int{5, 10, 30}); err != nil {
		log.Fatal().Err(err).Msg("Creating MA indicator")
	}
	if err := indicators.CreateInstance("VOL", []int{5}); err != nil {
		log.Fatal().Err(err).Msg("Creating VOL indicator")
	}
	store.NewOverlayStore(core)
	tooltip := store.NewTooltipStore(core, timeScale)

	// The event loop channel: everything scheduled here runs on the chart
	// goroutine, which is the only goroutine allowed to touch the stores.
	loop := make(chan func(), 128)
	dispatch := func(fn func()) {
		select {
		case loop <- fn:
		case <-ctx.Done():
		}
	}

	var recorder *provider.Postgres
	pgOpts := provider.PostgresOptions{
		Connection: provider.ConnectionParams{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			DBName:   cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		},
		Symbol:   cfg.Symbol,
		PageSize: cfg.PageSize,
		Dispatch: dispatch,
	}

	type initialLoader interface {
		store.HistoryLoader
		LoadInitial(ctx context.Context) ([]model.PriceBar, bool, error)
	}
	var history initialLoader
	switch cfg.Provider {
	case "postgres":
		pg, err := provider.NewPostgres(pgOpts)
		if err != nil {
			log.Fatal().Err(err).Msg("Connecting to PostgreSQL")
		}
		defer pg.Close()
		history = pg
		recorder = pg
	default:
		history = provider.NewBinance(provider.BinanceOptions{
			Symbol:         cfg.Symbol,
			Interval:       cfg.Interval,
			PageSize:       cfg.PageSize,
			RequestTimeout: cfg.RequestTimeout,
			RequestsPerSec: cfg.RequestsPerSec,
			Dispatch:       dispatch,
		})
		if cfg.RecordBars {
			pg, err := provider.NewPostgres(pgOpts)
			if err != nil {
				log.Fatal().Err(err).Msg("Connecting to PostgreSQL for recording")
			}
			defer pg.Close()
			recorder = pg
		}
	}
	core.SetLoader(history)

	core.Actions().Subscribe(store.ActionOnDataReady, func(payload any) {
		hl := core.HighLowPrice()
		if !hl.Valid() {
			return
		}
		logger.Info().
			Stringer("mode", payload.(model.DataMode)).
			Int("bars", core.DataLength()).
			Float64("window_high", hl.High.Price).
			Float64("window_low", hl.Low.Price).
			Strs("legend", tooltip.Legend()).
			Msg("Window recomputed")
	})

	bars, hasMore, err := history.LoadInitial(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Initial data load")
	}
	core.AddData(bars, model.DataModeInit, &model.MoreHint{Forward: hasMore})

	live := make(chan model.PriceBar, 64)
	klines := feed.NewKlineFeed(cfg.WSEndpoint, cfg.Symbol, cfg.Interval, live)
	if err := klines.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Starting kline feed")
	}

	logger.Info().Str("symbol", cfg.Symbol).Str("interval", cfg.Interval).Str("provider", cfg.Provider).Msg("chartfeed running")

	for {
		select {
		case <-ctx.Done():
			klines.Wait()
			logger.Info().Msg("chartfeed stopped")
			return
		case fn := <-loop:
			fn()
		case bar := <-live:
			core.AddBar(bar)
			if recorder != nil {
				go func(b model.PriceBar) {
					if err := recorder.SaveBar(ctx, b); err != nil {
						logger.Warn().Err(err).Msg("Recording bar failed")
					}
				}(bar)
			}
			// Pull another history page whenever the viewport has reached
			// the front of the sequence.
			if timeScale.VisibleRange().RealFrom == 0 {
				core.RequestMoreData(model.LoadForward)
			}
		}
	}
}
