package constants

import "time"

const (
	// ServiceName OpenTelemetry service name
	ServiceName = "flakewatch"
	// MysqlMaxIdleConnection max mysql idle connections.
	MysqlMaxIdleConnection = 25
	// MysqlMaxOpenConnection max mysql open connections.
	MysqlMaxOpenConnection = 25
	// MysqlMaxConnectionLifetime max mysql connection lifetime.
	MysqlMaxConnectionLifetime = 5 * time.Minute
	// TestNameSeparator joins retained suite titles and the spec title into
	// the fully qualified test name. The joined name is the test's public
	// identity used for history lookups, changing this token is a breaking
	// change.
	TestNameSeparator = " › "
	// DefaultWindowDays trailing window in days for one analysis run.
	DefaultWindowDays = 14
	// DefaultFlakeThreshold inclusive flake rate above which a test is
	// classified flaky.
	DefaultFlakeThreshold = 0.05
	// DefaultMinRuns minimum in-window runs required before a test is
	// classified at all.
	DefaultMinRuns = 3
	// FlakeRatePrecision decimal places kept on persisted flake rates.
	FlakeRatePrecision = 4
	// DefaultAnalysisQueueTopic kafka topic for analysis jobs.
	DefaultAnalysisQueueTopic = "fw-analysis-queue"
	// DefaultAnalysisConsumerGroup kafka consumer group for analysis jobs.
	DefaultAnalysisConsumerGroup = "fw-analysis-consumers"
	// DefaultShutDownDelay is the delay for graceful shutdown of all queue consumers
	DefaultShutDownDelay = 15e9 // 15 seconds, value is int64 nanoseconds due to issue in viper.
	// DefaultGracefulTimeout is default timeout for graceful shutdown of the app.
	DefaultGracefulTimeout = 5 * 6e10 // 5 minutes
)

// All possible env values
const (
	Dev   = "dev"
	Prod  = "prod"
	Stage = "stage"
)

// BinaryVersion is the version of the flakewatch binary, set at build time.
var BinaryVersion = "dev"
