package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string   // connection string for the database
	WaitForServices    string   // duration to wait for other services to be ready
	LogLevel           string   // sets the log level (zap log level values)
	SQLLogLevel        string   // sets the log level for sql subsystem
	LogFormat          string   // text vs json
	LogFilter          string   // zapfilter rules, e.g. "debug:race.engine info+:*"
	MigrationSourceURL string   // location of migration files (empty: embedded)
	EnableTelemetry    bool     // enable telemetry
	TelemetryEndpoint  string   // endpoint for telemetry (empty: stdout)
	RulesFile          string   // path to a yaml file with game rules
	Seed               int64    // seed for throws and simulated activities (0: time based)
	Teams              []string // team names for a simulation
	Rounds             int      // number of simulated rounds
	SessionName        string   // name used to store/load a session snapshot
	NatsURL            string   // if set, ledger entries are published to this NATS server
	RecentLimit        int      // number of ledger entries to show
)
