package ai

import "errors"

// ErrRateLimited indicates the provider returned a quota/limit error
// (HTTP 429 or similar). It is the only error class the caller retries.
var ErrRateLimited = errors.New("ai rate limited")
