package config

import (
	"github.com/flakewatch/flakewatch/pkg/constants"
	"github.com/spf13/viper"
)

func setDefaultConfig() {
	viper.SetDefault("Data.LogConfig.EnableConsole", true)
	viper.SetDefault("Data.LogConfig.ConsoleJSONFormat", false)
	viper.SetDefault("Data.LogConfig.ConsoleLevel", "debug")
	viper.SetDefault("Data.LogConfig.EnableFile", true)
	viper.SetDefault("Data.LogConfig.FileJSONFormat", true)
	viper.SetDefault("Data.LogConfig.FileLevel", "debug")
	viper.SetDefault("Data.LogConfig.FileLocation", "./flakewatch.log")
	viper.SetDefault("Data.Env", "prod")
	viper.SetDefault("Data.Port", "9876")
	viper.SetDefault("Data.Verbose", true)
	viper.SetDefault("Data.Flaky.WindowDays", constants.DefaultWindowDays)
	viper.SetDefault("Data.Flaky.Threshold", constants.DefaultFlakeThreshold)
	viper.SetDefault("Data.Flaky.MinRuns", constants.DefaultMinRuns)
	viper.SetDefault("Data.Kafka.AnalysisQueueConfig.Topic", constants.DefaultAnalysisQueueTopic)
	viper.SetDefault("Data.Kafka.AnalysisQueueConfig.ConsumerGroup", constants.DefaultAnalysisConsumerGroup)
	viper.SetDefault("Data.GracefulTimeout", constants.DefaultGracefulTimeout)
	viper.SetDefault("Data.ShutDownDelay", constants.DefaultShutDownDelay)
}
