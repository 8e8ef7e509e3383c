package openai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsRateLimited(t *testing.T) {
	tooMany := &openai.APIError{HTTPStatusCode: 429}
	assert.True(t, isRateLimited(tooMany))
	assert.True(t, isRateLimited(fmt.Errorf("request failed: %w", tooMany)))

	assert.False(t, isRateLimited(&openai.APIError{HTTPStatusCode: 500}))
	assert.False(t, isRateLimited(errors.New("connection refused")))
	assert.False(t, isRateLimited(nil))
}
