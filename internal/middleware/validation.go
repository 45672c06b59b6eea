package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/pkg/httputil"
	pkgvalidator "github.com/vivispa/catalog-api/pkg/validator"
)

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	keys := make([]string, 0, len(model.SortKeys))
	for _, k := range model.SortKeys {
		keys = append(keys, string(k))
	}
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"sortkey": func(fl validator.FieldLevel) bool {
				return model.SortKey(fl.Field().String()).Valid()
			},
		},
		CustomErrorMessages: map[string]string{
			"sortkey": "must be one of: " + strings.Join(keys, " "),
		},
	}
}

// RegisterValidators installs the custom rules on gin's binding engine. It
// is safe to call more than once.
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return nil
}

// Validation renders binding errors that handlers attached with c.Error as
// a 400 listing every failed rule.
func Validation(config ValidationConfig) gin.HandlerFunc {
	if err := RegisterValidators(config); err != nil {
		panic(err)
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors.ByType(gin.ErrorTypeBind) {
			if details := pkgvalidator.Messages(e.Err, config.CustomErrorMessages); len(details) > 0 {
				httputil.RespondWithValidation(c, "invalid query parameters", details)
				c.Abort()
				return
			}
		}
	}
}
