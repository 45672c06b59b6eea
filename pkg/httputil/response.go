package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vivispa/catalog-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) Response {
	return Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a 200 success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// RespondWithError sends an error response, using the AppError's status
// when err carries one. Other errors are logged and reported as 500.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.As(err); ok {
		if appErr.Code == errors.ErrInternal {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		}
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// RespondWithValidation sends a 400 listing every failed rule.
func RespondWithValidation(c *gin.Context, message string, details []string) {
	resp := NewErrorResponse(message)
	resp.Errors = details
	c.JSON(http.StatusBadRequest, resp)
}
