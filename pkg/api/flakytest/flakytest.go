// Package flakytest contains the flaky test record query and pinning handlers.
package flakytest

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
)

// HandleList returns the project's flaky test records ordered by flake rate
// descending, optionally filtered by status.
func HandleList(
	flakyTestStore core.FlakyTestStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, true)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		statusFilter := c.Query("status")
		if statusFilter != "" && !core.FlakyTestStatus(statusFilter).Valid() {
			c.JSON(http.StatusBadRequest, errs.InvalidQueryErr("status"))
			return
		}
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		records, err := flakyTestStore.List(ctx, cd.ProjectID, statusFilter, cd.Offset, cd.Limit+1)
		if err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) {
				c.JSON(http.StatusNotFound, errs.EntityNotFoundErr("Flaky tests", "project"))
				return
			}
			logger.Errorf("error while finding flaky tests for projectID %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		responseMetadata := new(core.ResponseMetadata)
		if len(records) == cd.Limit+1 {
			responseMetadata.NextCursor = utils.EncodeOffset(cd.Offset + cd.Limit)
			records = records[:len(records)-1]
		}
		c.JSON(http.StatusOK, gin.H{"flaky_tests": records, "response_metadata": responseMetadata})
	}
}

// HandleIgnore pins a record as ignored. The background reconciliation never
// transitions an ignored record in either direction.
func HandleIgnore(
	flakyTestStore core.FlakyTestStore,
	logger lumber.Logger) gin.HandlerFunc {
	return updateStatus(flakyTestStore, core.FlakyStatusIgnored, logger)
}

// HandleUnignore lifts the pin and returns the record to active. Only this
// operator path reverses an ignore.
func HandleUnignore(
	flakyTestStore core.FlakyTestStore,
	logger lumber.Logger) gin.HandlerFunc {
	return updateStatus(flakyTestStore, core.FlakyStatusActive, logger)
}

func updateStatus(flakyTestStore core.FlakyTestStore, status core.FlakyTestStatus,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, false)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		recordID := c.Param("recordID")
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		if err := flakyTestStore.UpdateStatus(ctx, cd.ProjectID, recordID, status); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				c.JSON(http.StatusNotFound, errs.EntityNotFoundErr("Flaky test", "project"))
				return
			}
			logger.Errorf("error while updating flaky test %s status for projectID %s, %v",
				recordID, cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		record, err := flakyTestStore.FindByID(ctx, cd.ProjectID, recordID)
		if err != nil {
			logger.Errorf("error while fetching flaky test %s for projectID %s, %v",
				recordID, cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}
