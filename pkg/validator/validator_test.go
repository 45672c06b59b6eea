package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type location struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"omitempty,email"`
}

type document struct {
	Title     string     `json:"title" validate:"required"`
	Locations []location `yaml:"locations" validate:"dive"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(document{Title: "ok", Locations: []location{{Name: "Downtown"}}}))

	err := v.Validate(document{Locations: []location{{Email: "nope"}}})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, Errors{
		"title is required",
		"locations[0].name is required",
		"locations[0].email must be a valid email",
	}, errs)
}

func TestValidateField(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateField("port", 8080, "min=1", "max=65535"))
	assert.EqualError(t, v.ValidateField("port", 0, "min=1"), "port must be at least 1")
	assert.EqualError(t, v.ValidateField("source", "s3", "oneof=file postgres"), "source must be one of: file postgres")
}

func TestMessages(t *testing.T) {
	v := New()
	err := v.Validate(document{Locations: []location{{Email: "nope"}}})

	// Validate already translated the errors.
	assert.Nil(t, Messages(err, nil))

	raw := validator.New().Struct(struct {
		Port int    `validate:"min=1"`
		Sort string `validate:"oneof=a b"`
	}{})
	assert.Equal(t, []string{"Port must be at least 1", "Sort is not sortable"},
		Messages(raw, map[string]string{"oneof": "is not sortable"}))
}
