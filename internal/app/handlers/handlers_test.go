package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/researchmem/researchmem/internal/domain/statemachine"
	"github.com/researchmem/researchmem/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func makeRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	var reqBody bytes.Buffer
	if body != nil {
		json.NewEncoder(&reqBody).Encode(body)
	}

	req, _ := http.NewRequest(method, url, &reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPaginationParsing(t *testing.T) {
	handler := NewBaseHandler()
	router := setupTestRouter()

	router.GET("/test", func(c *gin.Context) {
		page, pageSize := handler.ParsePagination(c)
		c.JSON(http.StatusOK, gin.H{
			"page":     page,
			"per_page": pageSize,
		})
	})

	var response map[string]interface{}

	w := makeRequest(router, "GET", "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["page"])
	assert.Equal(t, float64(20), response["per_page"])

	// Oversized per_page is clamped, negative page resets to 1
	w = makeRequest(router, "GET", "/test?page=-3&per_page=5000", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["page"])
	assert.Equal(t, float64(100), response["per_page"])
}

func TestSortingParsing(t *testing.T) {
	handler := NewBaseHandler()
	router := setupTestRouter()

	router.GET("/test", func(c *gin.Context) {
		sortBy, sortDesc := handler.ParseSorting(c, "created_at")
		c.JSON(http.StatusOK, gin.H{"sort_by": sortBy, "sort_desc": sortDesc})
	})

	var response map[string]interface{}

	w := makeRequest(router, "GET", "/test", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "created_at", response["sort_by"])
	assert.Equal(t, true, response["sort_desc"])

	w = makeRequest(router, "GET", "/test?sort_by=name&sort_desc=false", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "name", response["sort_by"])
	assert.Equal(t, false, response["sort_desc"])
}

func TestBoolPtrParam(t *testing.T) {
	router := setupTestRouter()

	router.GET("/test", func(c *gin.Context) {
		ptr := getBoolPtrParam(c, "is_pinned")
		if ptr == nil {
			c.JSON(http.StatusOK, gin.H{"value": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"value": *ptr})
	})

	var response map[string]interface{}

	// Absent parameter means "not filtered", not false
	w := makeRequest(router, "GET", "/test", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Nil(t, response["value"])

	w = makeRequest(router, "GET", "/test?is_pinned=false", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["value"])

	w = makeRequest(router, "GET", "/test?is_pinned=true", nil)
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["value"])
}

func TestServiceErrorMapping(t *testing.T) {
	handler := NewBaseHandler()
	router := setupTestRouter()

	errs := map[string]error{
		"/validation": services.NewValidationError("name", "must not be empty"),
		"/transition": &statemachine.InvalidTransitionError{
			Entity: "file", From: "failed", To: "draft",
		},
		"/notfound":    services.ErrFileNotFound,
		"/email":       services.ErrEmailTaken,
		"/credentials": services.ErrInvalidCredentials,
		"/internal":    errors.New("pg connection reset"),
	}
	for path, err := range errs {
		err := err
		router.GET(path, func(c *gin.Context) {
			handler.RespondServiceError(c, err)
		})
	}

	cases := []struct {
		path string
		code int
	}{
		{"/validation", http.StatusBadRequest},
		{"/transition", http.StatusConflict},
		{"/notfound", http.StatusNotFound},
		{"/email", http.StatusConflict},
		{"/credentials", http.StatusUnauthorized},
		{"/internal", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := makeRequest(router, "GET", tc.path, nil)
		assert.Equal(t, tc.code, w.Code, "path %s", tc.path)
	}

	// Internal failures never leak the underlying error message
	w := makeRequest(router, "GET", "/internal", nil)
	var response ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Request failed", response.Message)
	assert.NotContains(t, response.Message, "pg connection")
}

func TestFileExtensionValidation(t *testing.T) {
	config := NewHandlerConfig()

	assert.True(t, config.ValidateFileExtension(".pdf"))
	assert.True(t, config.ValidateFileExtension("PDF"))
	assert.True(t, config.ValidateFileExtension(".md"))
	assert.False(t, config.ValidateFileExtension(".exe"))
	assert.False(t, config.ValidateFileExtension(""))
}

func TestPageSizeValidation(t *testing.T) {
	config := NewHandlerConfig()

	assert.Equal(t, config.DefaultPageSize, config.ValidatePageSize(0))
	assert.Equal(t, config.DefaultPageSize, config.ValidatePageSize(-5))
	assert.Equal(t, 50, config.ValidatePageSize(50))
	assert.Equal(t, config.MaxPageSize, config.ValidatePageSize(100000))
}

func TestInvalidStateMapsToConflict(t *testing.T) {
	handler := NewBaseHandler()
	router := setupTestRouter()

	router.GET("/test", func(c *gin.Context) {
		handler.RespondServiceError(c, &services.InvalidStateError{
			Operation: "attach",
			Status:    models.FileStatusPending,
		})
	})

	w := makeRequest(router, "GET", "/test", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var response ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "invalid_state", response.Error)
}
