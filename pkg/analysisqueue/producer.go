// Package analysisqueue carries flakiness analysis triggers from report
// ingestion to the background pipeline over kafka.
package analysisqueue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/flakewatch/flakewatch/config"
	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/segmentio/kafka-go"
)

type producer struct {
	topicName         string
	kafkaWriter       *kafka.Writer
	logger            lumber.Logger
	producerStartTime time.Time
}

// NewProducer returns a new analysis queue producer.
func NewProducer(cfg *config.Config, logger lumber.Logger) core.QueueProducer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:          strings.Split(cfg.Kafka.Brokers, ","),
		Topic:            cfg.Kafka.AnalysisQueueConfig.Topic,
		ErrorLogger:      kafka.LoggerFunc(logger.Errorf),
		// partition by message key so one project's triggers stay ordered
		Balancer:         &kafka.Hash{},
		CompressionCodec: kafka.Snappy.Codec(),
		RequiredAcks:     int(kafka.RequireOne), // will wait for acknowledgement from only master.
	})
	logger.Infof("Kafka Producer connection created successfully for topic %s", writer.Topic)
	return &producer{
		logger:            logger,
		topicName:         writer.Topic,
		producerStartTime: time.Now(),
		kafkaWriter:       writer,
	}
}

// Enqueue publishes an analysis trigger. Dequeue pacing is controlled by
// kafka itself.
func (p *producer) Enqueue(item interface{}) error {
	payload, ok := item.(*core.AnalysisQueuePayload)
	if !ok {
		p.logger.Errorf("Invalid analysis queue payload %v", item)
		return errs.ErrInvalidQueuePayload
	}
	rawMessage, err := json.Marshal(payload)
	if err != nil {
		p.logger.Errorf("failed to marshal message for projectID %s, submissionID %s, error: %v",
			payload.ProjectID, payload.SubmissionID, err)
		return err
	}
	msg := kafka.Message{Key: []byte(payload.ProjectID), Value: rawMessage}
	if err = p.kafkaWriter.WriteMessages(context.Background(), msg); err != nil {
		p.logger.Errorf("failed to write message in kafka topic %s, projectID %s, submissionID %s, error: %v",
			p.topicName, payload.ProjectID, payload.SubmissionID, err)
		return err
	}
	return nil
}

func (p *producer) Close() error {
	return p.kafkaWriter.Close()
}
