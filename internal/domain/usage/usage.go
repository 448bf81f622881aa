package usage

import (
	"time"

	"github.com/kailas-cloud/justext/internal/domain/usage/budget"
)

// Report is the word usage of a single token.
type Report struct {
	tokenID   string
	createdAt time.Time
	budget    budget.Budget
}

// NewReport creates a usage report.
func NewReport(tokenID string, createdAt time.Time, b budget.Budget) Report {
	return Report{
		tokenID:   tokenID,
		createdAt: createdAt,
		budget:    b,
	}
}

// TokenID returns the token the report describes.
func (r *Report) TokenID() string { return r.tokenID }

// CreatedAt returns when the token was issued.
func (r *Report) CreatedAt() time.Time { return r.createdAt }

// Budget returns the quota status.
func (r *Report) Budget() budget.Budget { return r.budget }
