package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TokenPulse/internal/domain/models"
	pkgch "TokenPulse/pkg/clickhouse"
	applogger "TokenPulse/pkg/logger"
)

// CHSignalStore implements SignalStore backed by ClickHouse.
type CHSignalStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHSignalStore(ch *pkgch.Client, l *applogger.Logger) *CHSignalStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSignalStore{client: ch, db: ch.DB(), l: l}
}

// Init ensures the signal_records table exists (idempotent).
func (s *CHSignalStore) Init(ctx context.Context) error {
	stmts := []string{`
        CREATE TABLE IF NOT EXISTS signal_records (
            run_id      String,
            token       String,
            source      String,
            as_of       DateTime64(3, 'UTC'),
            price       Float64,
            rsi         Nullable(Float64),
            ema_short   Nullable(Float64),
            ema_long    Nullable(Float64),
            macd_line   Nullable(Float64),
            macd_signal Nullable(Float64),
            confidence  Nullable(Float64),
            decision    LowCardinality(String),
            rationale   Array(String),
            error       String
        )
        ENGINE = MergeTree()
        PARTITION BY toYYYYMM(as_of)
        ORDER BY (token, as_of, run_id)
    `}
	return s.client.InitSchema(ctx, stmts)
}

// SaveRun inserts every record of one scan as a batch.
func (s *CHSignalStore) SaveRun(ctx context.Context, result *models.ScanResult) error {
	if result == nil || len(result.Records) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO signal_records
            (run_id, token, source, as_of, price, rsi, ema_short, ema_long,
             macd_line, macd_signal, confidence, decision, rationale, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range result.Records {
		var rsi, emaS, emaL, macd, macdSig sql.NullFloat64
		if r.Indicators != nil {
			rsi = nullFloat(r.Indicators.RSI)
			emaS = nullFloat(r.Indicators.EMAShort)
			emaL = nullFloat(r.Indicators.EMALong)
			macd = nullFloat(r.Indicators.MACDLine)
			macdSig = nullFloat(r.Indicators.MACDSignal)
		}
		var conf sql.NullFloat64
		if r.Confidence != nil {
			conf = sql.NullFloat64{Float64: *r.Confidence, Valid: true}
		}
		rationale := r.Rationale
		if rationale == nil {
			rationale = []string{}
		}
		if _, err := stmt.ExecContext(ctx,
			result.RunID, r.Token, r.Source, r.AsOf, r.Price,
			rsi, emaS, emaL, macd, macdSig,
			conf, string(r.Decision), rationale, r.Error,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert record %s: %w", r.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.l.Info("signal run saved",
		applogger.String("run_id", result.RunID),
		applogger.Int("records", len(result.Records)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// History returns stored records for a token in [from, to], newest first.
func (s *CHSignalStore) History(ctx context.Context, token string, from, to time.Time, limit int) ([]models.SignalRecord, error) {
	const q = `
        SELECT token, source, as_of, price, rsi, ema_short, ema_long,
               macd_line, macd_signal, confidence, decision, rationale, error
        FROM signal_records
        WHERE token = ? AND as_of >= ? AND as_of <= ?
        ORDER BY as_of DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, token, from, to, limit)
	if err != nil {
		s.l.Error("signal history query error",
			applogger.String("token", token),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("signal history: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0, limit)
	for rows.Next() {
		var (
			r                           models.SignalRecord
			rsi, emaS, emaL, macd, mSig sql.NullFloat64
			conf                        sql.NullFloat64
			decision                    string
			rationale                   []string
		)
		if err := rows.Scan(&r.Token, &r.Source, &r.AsOf, &r.Price,
			&rsi, &emaS, &emaL, &macd, &mSig,
			&conf, &decision, &rationale, &r.Error); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.Error == "" {
			r.Decision = models.Decision(decision)
			r.Rationale = rationale
			if conf.Valid {
				c := conf.Float64
				r.Confidence = &c
			}
			r.Indicators = &models.SnapshotLatest{
				Price:      r.Price,
				RSI:        fromNull(rsi),
				EMAShort:   fromNull(emaS),
				EMALong:    fromNull(emaL),
				MACDLine:   fromNull(macd),
				MACDSignal: fromNull(mSig),
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Health performs a ping.
func (s *CHSignalStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close closes the connection pool.
func (s *CHSignalStore) Close() error {
	return s.client.Close()
}

func nullFloat(v models.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.Float64, Valid: v.Valid}
}

func fromNull(v sql.NullFloat64) models.Value {
	if !v.Valid {
		return models.Missing()
	}
	return models.Some(v.Float64)
}
