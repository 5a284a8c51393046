package config

import (
	"time"

	"github.com/flakewatch/flakewatch/pkg/lumber"
)

type (
	// ConfigWrapper is a wrapper for the config
	ConfigWrapper struct {
		Config `json:"data"`
	}

	// Config the application's configuration
	Config struct {
		DB              DBConfig
		Kafka           KafkaConfig
		Redis           Redis
		Port            string
		LogFile         string
		LogConfig       lumber.LoggingConfig
		Env             string
		Verbose         bool
		Flaky           FlakyConfig
		Tracing         TracingConfig
		GracefulTimeout time.Duration
		ShutDownDelay   time.Duration
	}

	// TracingConfig provides opentelemetry configurations
	TracingConfig struct {
		// OtelEndpoint for storing host name for otel collector
		OtelEndpoint string
	}

	// DBConfig providers the mysql db configuration.
	DBConfig struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}

	// FlakyConfig provides the defaults for the flakiness analysis window.
	// These values are threaded into every analysis run as an explicit
	// core.AnalyzerConfig, never read ambiently by the analyzer itself.
	FlakyConfig struct {
		// WindowDays trailing window considered by one analysis run
		WindowDays int `json:"window_days"`
		// Threshold inclusive flake rate above which a test is flaky
		Threshold float64 `json:"threshold"`
		// MinRuns minimum in-window runs needed to classify a test
		MinRuns int `json:"min_runs"`
	}

	// Redis represents the redis configuration.
	Redis struct {
		// Redis host:port address.
		Addr string
		// Redis username.
		Username string
		// Redis password.
		Password string
		// TLS enabled
		TLS bool
	}

	// KafkaConfig provides the kafka configuration.
	KafkaConfig struct {
		Brokers             string              `json:"brokers"`
		AnalysisQueueConfig KafkaConsumerConfig `json:"analysis_queue"`
	}

	// KafkaConsumerConfig provides the kafka configuration.
	KafkaConsumerConfig struct {
		Topic         string `json:"topic"`
		ConsumerGroup string `json:"consumer_group"`
	}
)
