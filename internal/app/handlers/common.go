package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the wire shape of every error this API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Helper functions for parsing query parameters

// getIntParam safely parses an integer query parameter with a default value
func getIntParam(c *gin.Context, param string, defaultValue int) int {
	value := c.Query(param)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

// getBoolPtrParam parses an optional boolean query parameter. Absence means
// "no filter", which is distinct from an explicit false.
func getBoolPtrParam(c *gin.Context, param string) *bool {
	value := c.Query(param)
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// getTimeParam parses an optional RFC 3339 query parameter.
func getTimeParam(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
