package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NewValidationError("Du kannst nicht mit dir selbst verhandeln."))

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorNotFound))
	assert.Equal(t, "Du kannst nicht mit dir selbst verhandeln.", UserMessage(err, "x"))
}

func TestUserMessage_Fallback(t *testing.T) {
	assert.Equal(t, "fallback", UserMessage(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", UserMessage(nil, "fallback"))
}
