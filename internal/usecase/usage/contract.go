package usage

import "github.com/kailas-cloud/justext/internal/domain"

// TokenReader provides read-only access to ledger records.
type TokenReader interface {
	Lookup(tokenID string) (domain.TokenRecord, bool)
	Limit() int64
}
