package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Phone     string `json:"phone" validate:"required,notblank"`
	Code      string `json:"code,omitempty" validate:"required"`
	RequestID string `validate:"max=4"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		input  sample
		fields []string
	}{
		{name: "valid", input: sample{Phone: "15550001111", Code: "123456"}},
		{name: "missing both", input: sample{}, fields: []string{"phone", "code"}},
		{name: "blank phone", input: sample{Phone: "   ", Code: "1"}, fields: []string{"phone"}},
		{name: "go name fallback", input: sample{Phone: "1", Code: "1", RequestID: "too-long"}, fields: []string{"request_id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Values(), len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Values(), f)
			}
		})
	}
}

func TestV10Validator_NotBlankMessage(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate(sample{Phone: " ", Code: "1"})

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "phone must not be blank", verr["phone"])
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"phone":"phone is a required field"}`, V10ValidationError{"phone": "phone is a required field"}.Error())
}
