// Package utils holds helpers shared by the api handlers.
package utils

import (
	"net/http"
	"strconv"

	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ContextData represents the data added to the gin context by middleware.
type ContextData struct {
	ProjectID string
	Limit     int
	Offset    int
}

// ExtractData returns the authenticated project and page parameters set by
// the middleware chain.
func ExtractData(c *gin.Context, paginationRequired bool) (*ContextData, int, error) {
	cd := &ContextData{ProjectID: c.GetString("projectID")}
	if cd.ProjectID == "" {
		return nil, http.StatusInternalServerError, errs.ErrMissingProjectID
	}
	if !paginationRequired {
		return cd, http.StatusOK, nil
	}
	limit := c.GetInt("limit")
	if limit == 0 {
		return nil, http.StatusBadRequest, errs.MissingInQueryErr("limit")
	}
	cd.Limit = limit

	if offsetStr := c.GetString("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return nil, http.StatusBadRequest, errs.InvalidQueryErr("offset")
		}
		cd.Offset = offset
	}
	return cd, http.StatusOK, nil
}
