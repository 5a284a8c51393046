package core

import "context"

// QueueProducer pushes items onto a queue.
type QueueProducer interface {
	// Enqueue writes the item on the queue.
	Enqueue(item interface{}) error
	// Close closes the underlying writer.
	Close() error
}

// QueueConsumer reads items off a queue until the context is canceled.
type QueueConsumer interface {
	// Run starts the consume loop.
	Run(ctx context.Context)
	// Close closes the underlying reader.
	Close() error
}

// AnalysisQueuePayload is the message enqueued after a report submission
// commits. The consumer re-derives all flaky state for the project, so a
// lost or duplicated message is corrected by the next one.
type AnalysisQueuePayload struct {
	ProjectID    string `json:"project_id"`
	SubmissionID string `json:"submission_id"`
}
