package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nissaya/reader/internal/querycache"
)

// --- Response Types ---

// Envelope is the response shape of every read. State carries the query
// lifecycle so a client can tell loading, failed and empty apart.
type Envelope struct {
	State string `json:"state"`
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse is the error format for endpoints outside the envelope
// (validation failures, auth rejections).
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const stateEmpty = "empty"

// --- Envelope Helpers ---

// respondQuery answers a read. A failed read is a 502 carrying the backend
// message unchanged.
func respondQuery(c *gin.Context, data any, err error, context string) {
	if err != nil {
		log.Printf("Query failed (%s): %v", context, err)
		c.JSON(http.StatusBadGateway, Envelope{
			State: querycache.StateFailed.String(),
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, Envelope{State: querycache.StateReady.String(), Data: data})
}

// respondFound is respondQuery for single-row reads: a nil row is a 404
// with state "empty".
func respondFound[T any](c *gin.Context, row *T, err error, resource string) {
	if err == nil && row == nil {
		c.JSON(http.StatusNotFound, Envelope{State: stateEmpty, Error: resource + " not found"})
		return
	}
	respondQuery(c, row, err, resource)
}

// respondReady sends local, synchronous state.
func respondReady(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{State: querycache.StateReady.String(), Data: data})
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 without exposing it.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondWriteError maps a failed mutation. Missing rows become 404; any
// other backend error is a 500 with its message unchanged.
func respondWriteError(c *gin.Context, err error, resource string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, resource)
		return
	}
	log.Printf("Write failed (%s): %v", resource, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// requireParam extracts a non-blank path parameter or responds with 400.
func requireParam(c *gin.Context, paramName string) (string, bool) {
	value := strings.TrimSpace(c.Param(paramName))
	if value == "" {
		respondBadRequest(c, paramName+" is required")
		return "", false
	}
	return value, true
}

// bindJSON decodes the request body or responds with 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}
