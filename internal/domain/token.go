package domain

import "time"

const (
	// MaxWords is the cumulative word quota of a single token.
	MaxWords int64 = 80000
	// LineWidth is the width of a justified line, in bytes.
	LineWidth = 80
)

// TokenRecord is the ledger entry behind an issued token.
type TokenRecord struct {
	ID        string
	WordsUsed int64
	CreatedAt time.Time
}

// Remaining returns how many words the token may still consume under limit.
func (r TokenRecord) Remaining(limit int64) int64 {
	if left := limit - r.WordsUsed; left > 0 {
		return left
	}
	return 0
}

// ShortTokenID truncates a token ID for log output. Full IDs are bearer
// credentials and never reach the logs.
func ShortTokenID(id string) string {
	const keep = 8
	if len(id) <= keep {
		return id
	}
	return id[:keep] + "…"
}
