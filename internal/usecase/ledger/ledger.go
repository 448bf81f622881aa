// Package ledger issues usage tokens and meters words against their quota.
package ledger

import (
	"context"
	"fmt"
	"hash/maphash"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/justext/internal/domain"
	logpkg "github.com/kailas-cloud/justext/internal/logger"
	"github.com/kailas-cloud/justext/internal/metrics"
)

const (
	shardCount    = 32
	recordTimeout = 2 * time.Second
)

// Ledger is an in-memory token store. Records are spread over shards; the
// shard mutex serializes check-then-add for every token it owns.
// Mutations are mirrored write-behind to an optional UsageRecorder.
type Ledger struct {
	shards   [shardCount]shard
	seed     maphash.Seed
	limit    int64
	recorder UsageRecorder
	logger   *zap.Logger

	newID func() (string, error)
	now   func() time.Time
}

type shard struct {
	mu      sync.Mutex
	records map[string]*domain.TokenRecord
}

// New creates a ledger enforcing limit words per token.
// A non-positive limit falls back to domain.MaxWords.
func New(limit int64, logger *zap.Logger) *Ledger {
	if limit <= 0 {
		limit = domain.MaxWords
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		seed:   maphash.MakeSeed(),
		limit:  limit,
		logger: logger,
		newID:  randomID,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for i := range l.shards {
		l.shards[i].records = make(map[string]*domain.TokenRecord)
	}
	return l
}

// WithRecorder attaches a write-behind usage mirror.
func (l *Ledger) WithRecorder(r UsageRecorder) *Ledger {
	l.recorder = r
	return l
}

// Limit returns the per-token word quota.
func (l *Ledger) Limit() int64 { return l.limit }

// Issue returns a fresh token ID, or "" when identityHint is empty.
func (l *Ledger) Issue(identityHint string) string {
	rec, err := l.IssueToken(context.Background(), identityHint)
	if err != nil {
		return ""
	}
	return rec.ID
}

// IssueToken creates a record with zero usage for a new random ID.
func (l *Ledger) IssueToken(ctx context.Context, identityHint string) (domain.TokenRecord, error) {
	if strings.TrimSpace(identityHint) == "" {
		return domain.TokenRecord{}, domain.ErrInvalidIssuance
	}

	var rec domain.TokenRecord
	for {
		id, err := l.newID()
		if err != nil {
			return domain.TokenRecord{}, fmt.Errorf("generate token id: %w", err)
		}
		if r, ok := l.insert(id); ok {
			rec = r
			break
		}
		l.logger.Warn("Token id collision, regenerating")
	}

	metrics.LedgerTokensIssuedTotal.Inc()
	metrics.LedgerTokens.Inc()
	l.logger.Debug("Token issued", logpkg.Token(rec.ID))

	if l.recorder != nil {
		l.mirror(ctx, "issue", func(ctx context.Context) error {
			return l.recorder.RecordIssue(ctx, rec.ID, rec.CreatedAt.Unix())
		})
	}
	return rec, nil
}

func (l *Ledger) insert(id string) (domain.TokenRecord, bool) {
	s := l.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return domain.TokenRecord{}, false
	}
	rec := &domain.TokenRecord{ID: id, CreatedAt: l.now()}
	s.records[id] = rec
	return *rec, true
}

// TryConsume charges wordCount words to tokenID. It returns false, leaving
// the record untouched, when the token is unknown or the charge would take
// it past the quota.
func (l *Ledger) TryConsume(tokenID string, wordCount int) bool {
	_, err := l.Consume(context.Background(), tokenID, wordCount)
	return err == nil
}

// Consume charges wordCount words to tokenID and returns the updated record.
// Errors: domain.ErrUnknownToken, domain.ErrQuotaExceeded, domain.ErrInvalidWordCount.
func (l *Ledger) Consume(ctx context.Context, tokenID string, wordCount int) (domain.TokenRecord, error) {
	if wordCount < 0 {
		metrics.LedgerConsumptionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return domain.TokenRecord{}, fmt.Errorf("%w: %d", domain.ErrInvalidWordCount, wordCount)
	}
	words := int64(wordCount)

	s := l.shardFor(tokenID)
	s.mu.Lock()
	rec, ok := s.records[tokenID]
	if !ok {
		s.mu.Unlock()
		metrics.LedgerConsumptionsTotal.WithLabelValues(metrics.OutcomeUnknownToken).Inc()
		return domain.TokenRecord{}, domain.ErrUnknownToken
	}
	if rec.WordsUsed+words > l.limit {
		snapshot := *rec
		s.mu.Unlock()
		metrics.LedgerConsumptionsTotal.WithLabelValues(metrics.OutcomeQuotaExceeded).Inc()
		l.logger.Info("Word quota exceeded",
			logpkg.Token(snapshot.ID),
			zap.Int64("words_used", snapshot.WordsUsed),
			zap.Int64("words_requested", words),
			zap.Int64("limit", l.limit),
		)
		return snapshot, domain.ErrQuotaExceeded
	}
	rec.WordsUsed += words
	snapshot := *rec
	s.mu.Unlock()

	metrics.LedgerConsumptionsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	metrics.LedgerWordsConsumedTotal.Add(float64(words))

	if l.recorder != nil && words > 0 {
		l.mirror(ctx, "consume", func(ctx context.Context) error {
			return l.recorder.RecordConsume(ctx, tokenID, words)
		})
	}
	return snapshot, nil
}

// Lookup returns a snapshot of the record behind tokenID.
func (l *Ledger) Lookup(tokenID string) (domain.TokenRecord, bool) {
	s := l.shardFor(tokenID)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[tokenID]
	if !ok {
		return domain.TokenRecord{}, false
	}
	return *rec, true
}

// Count returns the number of issued tokens.
func (l *Ledger) Count() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.records)
		s.mu.Unlock()
	}
	return n
}

func (l *Ledger) shardFor(tokenID string) *shard {
	return &l.shards[maphash.String(l.seed, tokenID)%shardCount]
}

// mirror runs a write-behind store call. Failures are logged and counted;
// the in-memory ledger stays authoritative.
func (l *Ledger) mirror(ctx context.Context, op string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		metrics.UsageStoreErrorsTotal.WithLabelValues(op).Inc()
		l.logger.Warn("Failed to mirror usage", zap.String("op", op), zap.Error(err))
	}
}

// randomID returns a version 4 UUID: 122 bits from crypto/rand.
func randomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
