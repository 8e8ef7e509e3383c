package mailer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(errors.New("535 5.7.8 Username and Password not accepted")))
	assert.True(t, isAuthError(errors.New("smtp: AUTH failed")))

	assert.False(t, isAuthError(errors.New("dial tcp: connection refused")))
	assert.False(t, isAuthError(errors.New("421 service not available")))
}
