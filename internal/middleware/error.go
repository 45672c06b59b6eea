package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vivispa/catalog-api/pkg/errors"
	"github.com/vivispa/catalog-api/pkg/httputil"
)

// ErrorHandler renders the last error a handler attached with c.Error when
// the handler did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			log.Debug().
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		err := last.Err
		if last.IsType(gin.ErrorTypeBind) {
			err = errors.BadRequest(err.Error(), err)
		}
		httputil.RespondWithError(c, err)
	}
}
