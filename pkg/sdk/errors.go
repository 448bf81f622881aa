package justext

import "github.com/kailas-cloud/justext/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidIssuance  = domain.ErrInvalidIssuance
	ErrUnknownToken     = domain.ErrUnknownToken
	ErrQuotaExceeded    = domain.ErrQuotaExceeded
	ErrInvalidWordCount = domain.ErrInvalidWordCount
)
