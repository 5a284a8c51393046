// Package project contains the project provisioning handlers.
package project

import (
	"errors"
	"net/http"

	apiutils "github.com/flakewatch/flakewatch/pkg/api/utils"
	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/flakewatch/flakewatch/pkg/utils"
	"github.com/gin-gonic/gin"
)

// HandleCreate provisions a new project and returns its API token. The token
// is shown only in this response.
func HandleCreate(
	projectStore core.ProjectStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload core.CreateProjectPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errs.ValidationErr(err)})
			return
		}
		project := &core.Project{
			ID:       utils.GenerateUUID(),
			Name:     payload.Name,
			APIToken: utils.GenerateToken(),
		}
		if err := projectStore.Create(c, project); err != nil {
			if errors.Is(err, errs.ErrDupeKey) {
				c.JSON(http.StatusConflict, errs.New("Project with this name already exists."))
				return
			}
			logger.Errorf("error while creating project %s, %v", payload.Name, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

// HandleFind returns the authenticated project's details.
func HandleFind(
	projectStore core.ProjectStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, false)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		project, err := projectStore.FindByID(c, cd.ProjectID)
		if err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) {
				c.JSON(http.StatusNotFound, errs.ErrNotFound)
				return
			}
			logger.Errorf("error while finding project %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		// the token is never echoed back after creation
		project.APIToken = ""
		c.JSON(http.StatusOK, project)
	}
}

// HandleDelete removes the authenticated project along with all of its
// submissions, outcomes and flaky test records.
func HandleDelete(
	projectStore core.ProjectStore,
	logger lumber.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cd, statusCode, err := apiutils.ExtractData(c, false)
		if err != nil {
			c.AbortWithStatusJSON(statusCode, err)
			return
		}
		if err := projectStore.Delete(c, cd.ProjectID); err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) || errors.Is(err, errs.ErrNotFound) {
				c.JSON(http.StatusNotFound, errs.ErrNotFound)
				return
			}
			logger.Errorf("error while deleting project %s, %v", cd.ProjectID, err)
			c.JSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully."})
	}
}
