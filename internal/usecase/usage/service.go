package usage

import (
	"context"

	"github.com/kailas-cloud/justext/internal/domain"
	domusage "github.com/kailas-cloud/justext/internal/domain/usage"
	"github.com/kailas-cloud/justext/internal/domain/usage/budget"
)

// Service handles usage reporting.
type Service struct {
	tokens TokenReader
}

// New creates a Service.
func New(tokens TokenReader) *Service {
	return &Service{tokens: tokens}
}

// GetReport builds the quota report of a token.
func (s *Service) GetReport(_ context.Context, tokenID string) (domusage.Report, error) {
	rec, ok := s.tokens.Lookup(tokenID)
	if !ok {
		return domusage.Report{}, domain.ErrUnknownToken
	}

	b := budget.New(s.tokens.Limit(), rec.WordsUsed)
	return domusage.NewReport(rec.ID, rec.CreatedAt, b), nil
}
