package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performPageRequest(t *testing.T, query string) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/reports"+query, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	c.Request = req
	HandlePage()(c)
	return w, c
}

func TestHandlePageDefaults(t *testing.T) {
	w, c := performPageRequest(t, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultPerPageLimit, c.GetInt("limit"))
	assert.Empty(t, c.GetString("offset"))
}

func TestHandlePageClampsLimit(t *testing.T) {
	tests := []struct {
		name    string
		perPage string
		want    int
	}{
		{name: "above_max", perPage: "500", want: maxPerPageLimit},
		{name: "below_min", perPage: "0", want: defaultPerPageLimit},
		{name: "in_range", perPage: "25", want: 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := performPageRequest(t, "?per_page="+tt.perPage)
			assert.Equal(t, tt.want, c.GetInt("limit"))
		})
	}
}

func TestHandlePageOffsetCursor(t *testing.T) {
	cursor := base64.StdEncoding.EncodeToString([]byte("offset:20"))
	w, c := performPageRequest(t, "?next_cursor="+cursor)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20", c.GetString("offset"))
}

func TestHandlePageInvalidCursor(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not_base64", cursor: "!!not-base64!!"},
		{name: "unknown_type", cursor: base64.StdEncoding.EncodeToString([]byte("page:2"))},
		{name: "no_delimiter", cursor: base64.StdEncoding.EncodeToString([]byte("20"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := performPageRequest(t, "?next_cursor="+tt.cursor)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandlePageInvalidPerPage(t *testing.T) {
	w, _ := performPageRequest(t, "?per_page=ten")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
