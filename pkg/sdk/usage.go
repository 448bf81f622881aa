package justext

import (
	"context"
	"fmt"
	"time"
)

// UsageReport is the quota state of a token.
type UsageReport struct {
	Token          string
	CreatedAt      time.Time
	WordsLimit     int64
	WordsUsed      int64
	WordsRemaining int64
	IsExhausted    bool
}

// Usage returns the quota state of token.
func (c *Client) Usage(ctx context.Context, token string) (rep UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	report, err := c.usageSvc.GetReport(ctx, token)
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage: %w", err)
	}
	b := report.Budget()

	return UsageReport{
		Token:          report.TokenID(),
		CreatedAt:      report.CreatedAt(),
		WordsLimit:     b.WordsLimit(),
		WordsUsed:      b.WordsUsed(),
		WordsRemaining: b.WordsRemaining(),
		IsExhausted:    b.IsExhausted(),
	}, nil
}
