package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitebski/odh-assistant/internal/assistant"
	"github.com/vitebski/odh-assistant/internal/datasource"
	"github.com/vitebski/odh-assistant/internal/selection"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, statusCode int, err error, message string) {
	resp := APIResponse{
		Status:  "error",
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(statusCode, resp)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, assistant.ErrSessionNotFound),
		errors.Is(err, assistant.ErrTableNotSelected),
		errors.Is(err, datasource.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrInvalidRelationship):
		return http.StatusBadRequest
	case errors.Is(err, selection.ErrManualEditConflict):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrIncompleteSelection):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
