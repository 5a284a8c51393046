package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestExtractDataWithoutProjectID(t *testing.T) {
	c := testContext(t)
	cd, statusCode, err := ExtractData(c, false)
	assert.Nil(t, cd)
	assert.Equal(t, http.StatusInternalServerError, statusCode)
	assert.EqualError(t, err, "Missing projectID in request context")
}

func TestExtractDataWithoutPagination(t *testing.T) {
	c := testContext(t)
	c.Set("projectID", "project-1")
	cd, statusCode, err := ExtractData(c, false)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, "project-1", cd.ProjectID)
}

func TestExtractDataMissingLimit(t *testing.T) {
	c := testContext(t)
	c.Set("projectID", "project-1")
	cd, statusCode, err := ExtractData(c, true)
	assert.Nil(t, cd)
	assert.Equal(t, http.StatusBadRequest, statusCode)
	assert.EqualError(t, err, "Missing limit in request query parameters.")
}

func TestExtractDataPagination(t *testing.T) {
	c := testContext(t)
	c.Set("projectID", "project-1")
	c.Set("limit", 25)
	c.Set("offset", "50")
	cd, statusCode, err := ExtractData(c, true)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.Equal(t, 25, cd.Limit)
	assert.Equal(t, 50, cd.Offset)
}

func TestExtractDataInvalidOffset(t *testing.T) {
	c := testContext(t)
	c.Set("projectID", "project-1")
	c.Set("limit", 25)
	c.Set("offset", "-3")
	cd, statusCode, err := ExtractData(c, true)
	assert.Nil(t, cd)
	assert.Equal(t, http.StatusBadRequest, statusCode)
	assert.EqualError(t, err, "Invalid offset in request query parameters.")
}
