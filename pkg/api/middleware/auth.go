package middleware

import (
	"errors"
	"net/http"

	"github.com/flakewatch/flakewatch/pkg/core"
	errs "github.com/flakewatch/flakewatch/pkg/errors"
	"github.com/flakewatch/flakewatch/pkg/lumber"
	"github.com/gin-gonic/gin"
)

const (
	projectIDKey   = "projectID"
	apiTokenHeader = "X-API-Token"
)

// HandleProjectAuthentication returns a middleware that resolves the project
// owning the API token header and stores its id in the request context.
func HandleProjectAuthentication(
	projectStore core.ProjectStore,
	logger lumber.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get(apiTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, errs.ErrMissingToken)
			return
		}
		project, err := projectStore.FindByToken(c, token)
		if err != nil {
			if errors.Is(err, errs.ErrRowsNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, errs.ErrForbidden)
				return
			}
			logger.Errorf("error while finding project by token, %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errs.GenericErrorMessage)
			return
		}
		c.Set(projectIDKey, project.ID)
		c.Next()
	}
}
