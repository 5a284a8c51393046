// Package report contains the report ingestion and listing handlers.
package report

import (
	"context"
	"errors"
	"net/http"

	apiutils "github.com/flakewatch/flakewatch/pkg/api/utils"
	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
	"github.com/gin-gonic/gin"
	"gopkg.in/guregu/null.v4/zero"
)

// HandleCreate is the ingestion boundary. It validates and flattens the raw
// report tree, persists the submission with its outcome rows atomically and
// enqueues a flakiness analysis trigger for the project.
func HandleCreate(
	submissionStore core.SubmissionStore,
	reportNormalizer core.ReportNormalizer,
	analysisQueueProducer core.QueueProducer,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, false)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		var payload core.ReportRequestPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errs.ValidationErr(err)})
			return
		}
		normalized, err := reportNormalizer.Normalize(payload.Report)
		if err != nil {
			if errs.IsReportValidationError(err) {
				c.JSON(http.StatusBadRequest, errs.New(err.Error()))
				return
			}
			logger.Errorf("error while normalizing report for projectID %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}

		submission := &core.ReportSubmission{
			ID:         utils.GenerateUUID(),
			ProjectID:  cd.ProjectID,
			Branch:     payload.Branch,
			CommitSHA:  payload.CommitSHA,
			PipelineID: zero.StringFrom(payload.PipelineID),
			Total:      normalized.Summary.Total,
			Passed:     normalized.Summary.Passed,
			Failed:     normalized.Summary.Failed,
			Skipped:    normalized.Summary.Skipped,
			Flaky:      normalized.Summary.Flaky,
			StartedAt:  normalized.StartedAt,
			FinishedAt: normalized.FinishedAt,
		}
		for _, outcome := range normalized.Outcomes {
			outcome.ID = utils.GenerateUUID()
			outcome.SubmissionID = submission.ID
			outcome.ProjectID = cd.ProjectID
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		if err := submissionStore.Create(ctx, submission, normalized.Outcomes); err != nil {
			logger.Errorf("error while persisting submission for projectID %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}

		// fire and forget, a failed enqueue is corrected by the run triggered
		// by the next ingestion
		queuePayload := &core.AnalysisQueuePayload{ProjectID: cd.ProjectID, SubmissionID: submission.ID}
		if err := analysisQueueProducer.Enqueue(queuePayload); err != nil {
			logger.Errorf("failed to enqueue analysis trigger for projectID %s, submissionID %s, error: %v",
				cd.ProjectID, submission.ID, err)
		}

		c.JSON(http.StatusCreated, &core.ReportResponsePayload{
			SubmissionID: submission.ID,
			Summary:      normalized.Summary,
		})
	}
}

// HandleList returns the project's submissions, newest first.
func HandleList(
	submissionStore core.SubmissionStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, true)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		submissions, err := submissionStore.FindByProject(ctx, cd.ProjectID, cd.Offset, cd.Limit+1)
		if err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) {
				c.JSON(http.StatusNotFound, errs.EntityNotFoundErr("Submissions", "project"))
				return
			}
			logger.Errorf("error while finding submissions for projectID %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		responseMetadata := new(core.ResponseMetadata)
		if len(submissions) == cd.Limit+1 {
			responseMetadata.NextCursor = utils.EncodeOffset(cd.Offset + cd.Limit)
			submissions = submissions[:len(submissions)-1]
		}
		c.JSON(http.StatusOK, gin.H{"submissions": submissions, "response_metadata": responseMetadata})
	}
}

// HandleListOutcomes returns the outcome rows of one submission.
func HandleListOutcomes(
	outcomeStore core.TestOutcomeStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, true)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		submissionID := c.Param("submissionID")
		statusFilter := c.Query("status")
		if statusFilter != "" && !core.TestOutcomeStatus(statusFilter).Valid() {
			c.JSON(http.StatusBadRequest, errs.InvalidQueryErr("status"))
			return
		}
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		outcomes, err := outcomeStore.FindBySubmission(ctx, cd.ProjectID, submissionID, statusFilter,
			cd.Offset, cd.Limit+1)
		if err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) {
				c.JSON(http.StatusNotFound, errs.EntityNotFoundErr("Test outcomes", "submission"))
				return
			}
			logger.Errorf("error while finding outcomes for projectID %s, submissionID %s, %v",
				cd.ProjectID, submissionID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		responseMetadata := new(core.ResponseMetadata)
		if len(outcomes) == cd.Limit+1 {
			responseMetadata.NextCursor = utils.EncodeOffset(cd.Offset + cd.Limit)
			outcomes = outcomes[:len(outcomes)-1]
		}
		c.JSON(http.StatusOK, gin.H{"outcomes": outcomes, "response_metadata": responseMetadata})
	}
}
