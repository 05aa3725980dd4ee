package postgres

import (
	"context"

	"github.com/exaring/otelpgx"
	pgxuuid "github.com/jackc/pgx-gofrs-uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/yutrace/log"
)

type PoolConfigOption func(cfg *pgxpool.Config)

// WithTracer logs each query on the given level.
func WithTracer(logger *log.Logger, level log.Level) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.Tracer = &myQueryTracer{log: logger.Named("sql"), level: level}
	}
}

// WithOtlpTracer creates spans for queries via the global tracer provider.
func WithOtlpTracer() PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	}
}

func InitWithURL(ctx context.Context, url string, opts ...PoolConfigOption) (
	*pgxpool.Pool, error,
) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	dbConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxuuid.Register(conn.TypeMap())
		return nil
	}
	for _, opt := range opts {
		opt(dbConfig)
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

type myQueryTracer struct {
	log   *log.Logger
	level log.Level
}

type queryStartKey struct{}

func (tracer *myQueryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	if tracer.level >= log.InfoLevel {
		tracer.log.Info("Executing", log.String("sql", data.SQL), log.Any("args", data.Args))
	} else {
		tracer.log.Debug("Executing", log.String("sql", data.SQL), log.Any("args", data.Args))
	}
	return context.WithValue(ctx, queryStartKey{}, data.SQL)
}

//nolint:whitespace // can't make the linters happy
func (tracer *myQueryTracer) TraceQueryEnd(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	if data.Err != nil {
		sql, _ := ctx.Value(queryStartKey{}).(string)
		tracer.log.Warn("Query failed", log.String("sql", sql), log.ErrorField(data.Err))
	}
}
