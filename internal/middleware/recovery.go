package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vivispa/catalog-api/pkg/errors"
	"github.com/vivispa/catalog-api/pkg/httputil"
)

// Recovery turns a panicking handler into a 500 envelope. Nothing is
// written when the handler already started the response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			log.Error().
				Str("panic", fmt.Sprint(p)).
				Bytes("stack", debug.Stack()).
				Str("route", c.FullPath()).
				Str("catalog", c.Param("name")).
				Str("request_id", c.GetString(ContextRequestID)).
				Msg("Handler panicked")

			c.Abort()
			if !c.Writer.Written() {
				httputil.RespondWithError(c, errors.Internal(fmt.Errorf("panic: %v", p)))
			}
		}()
		c.Next()
	}
}
