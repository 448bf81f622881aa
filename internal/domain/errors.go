package domain

import "errors"

var (
	// ErrInvalidIssuance signals a token request without an identity hint.
	ErrInvalidIssuance = errors.New("identity hint is required")
	// ErrUnknownToken signals a token the ledger never issued.
	ErrUnknownToken = errors.New("unknown token")
	// ErrQuotaExceeded signals a consumption that would exceed the word quota.
	ErrQuotaExceeded = errors.New("word quota exceeded")
	// ErrInvalidWordCount signals a negative word count.
	ErrInvalidWordCount = errors.New("invalid word count")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrPayloadTooLarge signals a request body over the configured limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)
