package core

// ReportRequestPayload is the body accepted by the report ingestion API.
type ReportRequestPayload struct {
	Branch     string     `json:"branch" binding:"required"`
	CommitSHA  string     `json:"commitSha" binding:"required"`
	PipelineID string     `json:"pipelineId"`
	Report     *RawReport `json:"report" binding:"required"`
}

// ReportResponsePayload is returned after a report is ingested.
type ReportResponsePayload struct {
	SubmissionID string            `json:"submission_id"`
	Summary      SubmissionSummary `json:"summary"`
}

// CreateProjectPayload is the body accepted by the project creation API.
type CreateProjectPayload struct {
	Name string `json:"name" binding:"required"`
}
