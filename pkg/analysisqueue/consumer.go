package analysisqueue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/core"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/segmentio/kafka-go"
)

type consumer struct {
	cfg          *config.Config
	topicName    string
	reader       *kafka.Reader
	logger       lumber.Logger
	flakyMonitor core.FlakyMonitor
}

// NewConsumer returns a new analysis queue consumer.
func NewConsumer(cfg *config.Config, flakyMonitor core.FlakyMonitor, logger lumber.Logger) core.QueueConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:               strings.Split(cfg.Kafka.Brokers, ","),
		Topic:                 cfg.Kafka.AnalysisQueueConfig.Topic,
		ErrorLogger:           kafka.LoggerFunc(logger.Errorf),
		GroupID:               cfg.Kafka.AnalysisQueueConfig.ConsumerGroup,
		WatchPartitionChanges: true,
		GroupBalancers:        []kafka.GroupBalancer{kafka.RoundRobinGroupBalancer{}}})
	logger.Infof("Kafka Consumer Group %s created successfully", reader.Config().GroupID)

	return &consumer{
		cfg:          cfg,
		topicName:    reader.Config().Topic,
		logger:       logger,
		reader:       reader,
		flakyMonitor: flakyMonitor,
	}
}

func (c *consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			c.logger.Errorf("Kafka ReadMessage of topic: %v failed: %v", c.topicName, err)
			continue
		}
		c.logger.Debugf("Kafka: Message received on partition: %d, offset: %d, topic: %s", msg.Partition, msg.Offset, msg.Topic)
		// analysis failures are logged only, a later run re-derives the
		// project's flaky-state wholesale
		go func(msg kafka.Message) {
			var data core.AnalysisQueuePayload
			if err := json.Unmarshal(msg.Value, &data); err != nil {
				c.logger.Errorf("failed to unmarshal analysis payload, error: %v", err)
				return
			}
			if err := c.flakyMonitor.RunAnalysis(ctx, data.ProjectID); err != nil {
				c.logger.Errorf("flakiness analysis failed for projectID %s, submissionID %s, error: %v",
					data.ProjectID, data.SubmissionID, err)
			}
		}(msg)
	}

	if err := c.Close(); err != nil {
		c.logger.Errorf("failed to close kafka reader, error: %v", err)
		return
	}
	c.logger.Debugf("Kafka consumer closed successfully for topic %s", c.topicName)
}

func (c *consumer) Close() error {
	return c.reader.Close()
}
