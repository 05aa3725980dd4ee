package util

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/config"
	"github.com/mpapenbr/yutrace/pkg/db/postgres"
	"github.com/mpapenbr/yutrace/pkg/utils"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func newLogger(level string, defaultVal log.Level) *log.Logger {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(level, defaultVal),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(level, defaultVal),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	return logger
}

// SetupLogger installs the default logger according to the log flags.
func SetupLogger() *log.Logger {
	logger := newLogger(config.LogLevel, log.InfoLevel)
	if filtered, err := logger.WithFilter(config.LogFilter); err == nil {
		logger = filtered
	} else {
		logger.Warn("Ignoring invalid log filter",
			log.String("filter", config.LogFilter),
			log.ErrorField(err))
	}
	log.ResetDefault(logger)
	return logger
}

// SetupTelemetry installs the otel providers if telemetry is enabled.
// The returned value may be nil.
func SetupTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry")
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return telemetry
}

// WaitForDB waits until the database given by config.DB accepts connections.
func WaitForDB() error {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return utils.WaitForTCP(utils.ExtractFromDBURL(config.DB), timeout)
}

// OpenDB waits for the database and creates a pool with a query tracer.
func OpenDB(ctx context.Context, withOtel bool) (*pgxpool.Pool, error) {
	if err := WaitForDB(); err != nil {
		return nil, err
	}
	sqlLogger := newLogger(config.SQLLogLevel, log.DebugLevel)
	traceOption := postgres.WithTracer(sqlLogger, parseLogLevel(config.SQLLogLevel, log.DebugLevel))
	if withOtel {
		traceOption = postgres.WithOtlpTracer()
	}
	return postgres.InitWithURL(ctx, config.DB, traceOption)
}
