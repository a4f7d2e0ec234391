package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *UserError
		expected string
	}{
		{"message only", &UserError{Code: ErrCodeConfigParse, Message: "bad file"}, "bad file"},
		{"with context", &UserError{Code: ErrCodeConfigParse, Message: "bad file", Context: "extmgr.yaml"}, "bad file (at extmgr.yaml)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUserError_Format(t *testing.T) {
	t.Parallel()

	err := &UserError{Code: ErrCodeConfigNotFound, Message: "missing", Context: "a.yaml", Suggestion: "create it"}

	assert.Equal(t, "[CONFIG_NOT_FOUND] missing\n  Location: a.yaml\n  Suggestion: create it", err.Format())
}

func TestUserError_ChainHelpers(t *testing.T) {
	t.Parallel()

	cause := errors.New("permission denied")
	err := fmt.Errorf("load: %w", &UserError{Code: ErrCodeConfigParse, Underlying: cause})

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, &UserError{Code: ErrCodeConfigParse})
	assert.NotErrorIs(t, err, &UserError{Code: ErrCodeConfigNotFound})
	assert.NotNil(t, GetUserError(err))
	assert.Nil(t, GetUserError(cause))
}

func TestErrorList(t *testing.T) {
	t.Parallel()

	var list ErrorList
	assert.NoError(t, list.AsError())

	list.Add("interpreter", "must not be empty", "")
	assert.Equal(t, "interpreter: must not be empty (at interpreter)", list.Error())
	assert.Error(t, list.AsError())
}
