package provider

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantview/chartcore/internal/model"
	"github.com/quantview/chartcore/internal/store"
)

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Postgres serves pagination pages from a local bars table, useful for
// replaying recorded sessions without touching an exchange.
type Postgres struct {
	db       *sql.DB
	symbol   string
	pageSize int
	timeout  time.Duration
	dispatch Dispatch
	logger   zerolog.Logger
}

// PostgresOptions configures a Postgres history provider.
type PostgresOptions struct {
	Connection ConnectionParams
	Symbol     string
	PageSize   int
	Timeout    time.Duration
	Dispatch   Dispatch
}

// NewPostgres connects to PostgreSQL and ensures the bars table exists.
func NewPostgres(opts PostgresOptions) (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		opts.Connection.Host, opts.Connection.Port, opts.Connection.User,
		opts.Connection.Password, opts.Connection.DBName, opts.Connection.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createBarsTable(db); err != nil {
		return nil, err
	}

	if opts.PageSize <= 0 {
		opts.PageSize = 500
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Postgres{
		db:       db,
		symbol:   opts.Symbol,
		pageSize: opts.PageSize,
		timeout:  opts.Timeout,
		dispatch: opts.Dispatch,
		logger:   log.With().Str("component", "postgres_provider").Logger(),
	}, nil
}

func createBarsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT NOT NULL,
			timestamp BIGINT NOT NULL,
			open DOUBLE PRECISION NOT NULL,
			high DOUBLE PRECISION NOT NULL,
			low DOUBLE PRECISION NOT NULL,
			close DOUBLE PRECISION NOT NULL,
			volume DOUBLE PRECISION NOT NULL DEFAULT 0,
			turnover DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (symbol, timestamp)
		)
	`)
	return err
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// SaveBar upserts one bar, letting a live feed record while charting.
func (p *Postgres) SaveBar(ctx context.Context, bar model.PriceBar) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bars (symbol, timestamp, open, high, low, close, volume, turnover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timestamp)
		DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			turnover = EXCLUDED.turnover
	`, p.symbol, bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.Turnover)
	return err
}

// LoadInitial synchronously fetches the most recent page, used to seed the
// store before the event loop starts.
func (p *Postgres) LoadInitial(ctx context.Context) ([]model.PriceBar, bool, error) {
	return p.fetch(ctx, store.LoadMoreRequest{Direction: model.LoadForward})
}

// Load fetches one pagination page asynchronously and re-enters the store
// through the request callback.
func (p *Postgres) Load(req store.LoadMoreRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		bars, hasMore, err := p.fetch(ctx, req)
		if err != nil {
			p.logger.Error().Err(err).Stringer("direction", req.Direction).Msg("Bars query failed")
			deliver(p.dispatch, req.Callback, nil, true)
			return
		}
		deliver(p.dispatch, req.Callback, bars, hasMore)
	}()
}

func (p *Postgres) fetch(ctx context.Context, req store.LoadMoreRequest) ([]model.PriceBar, bool, error) {
	// Forward pages sit before the front boundary, backward pages after the
	// tail boundary; both are returned in ascending timestamp order so they
	// concatenate onto the sequence unchanged.
	query := `
		SELECT timestamp, open, high, low, close, volume, turnover
		FROM bars
		WHERE symbol = $1 AND timestamp > $2
		ORDER BY timestamp ASC
		LIMIT $3`
	boundary := int64(0)
	if req.Direction == model.LoadForward {
		query = `
			SELECT timestamp, open, high, low, close, volume, turnover
			FROM (
				SELECT timestamp, open, high, low, close, volume, turnover
				FROM bars
				WHERE symbol = $1 AND timestamp < $2
				ORDER BY timestamp DESC
				LIMIT $3
			) page
			ORDER BY timestamp ASC`
		boundary = int64(1<<63 - 1)
	}
	if req.Boundary != nil {
		boundary = req.Boundary.Timestamp
	}

	rows, err := p.db.QueryContext(ctx, query, p.symbol, boundary, p.pageSize)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var bar model.PriceBar
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &bar.Turnover); err != nil {
			return nil, false, err
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return bars, len(bars) == p.pageSize, nil
}
