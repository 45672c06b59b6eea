package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

type structValidator struct {
	v *validator.Validate
}

// New returns a Validator that reports fields by their yaml or json name.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
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
	return &structValidator{v: v}
}

func (s *structValidator) Validate(obj interface{}) error {
	if err := s.v.Struct(obj); err != nil {
		return translate(err)
	}
	return nil
}

func (s *structValidator) ValidateField(field string, value interface{}, rules ...string) error {
	if err := s.v.Var(value, strings.Join(rules, ",")); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s %s", field, describe(verrs[0]))
		}
		return err
	}
	return nil
}

// Errors lists every failed rule of one validation.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s %s", fieldPath(fe), describe(fe)))
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

// Messages describes each failed rule of err, or returns nil when err does
// not come from go-playground/validator. overrides replaces the text for
// specific tags.
func Messages(err error, overrides map[string]string) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := overrides[fe.Tag()]
		if !ok {
			msg = describe(fe)
		}
		out = append(out, fmt.Sprintf("%s %s", fieldPath(fe), msg))
	}
	return out
}
