package justext

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/justext/internal/db"
	dbRedis "github.com/kailas-cloud/justext/internal/db/redis"
	"github.com/kailas-cloud/justext/internal/domain"
	domusage "github.com/kailas-cloud/justext/internal/domain/usage"
	"github.com/kailas-cloud/justext/internal/justify"
	usagerepo "github.com/kailas-cloud/justext/internal/repository/usage"
	healthuc "github.com/kailas-cloud/justext/internal/usecase/health"
	"github.com/kailas-cloud/justext/internal/usecase/ledger"
	usageuc "github.com/kailas-cloud/justext/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "justext:"
	defaultUsageTTL         = 30 * 24 * time.Hour
)

// Internal interfaces, swapped out in tests.
type tokenLedger interface {
	IssueToken(ctx context.Context, identityHint string) (domain.TokenRecord, error)
	Consume(ctx context.Context, tokenID string, wordCount int) (domain.TokenRecord, error)
	Limit() int64
}

type usageUseCase interface {
	GetReport(ctx context.Context, tokenID string) (domusage.Report, error)
}

// Client is the justext SDK entry point.
type Client struct {
	store     db.Store
	ledger    tokenLedger
	usageSvc  usageUseCase
	healthSvc healthUseCase
	width     int
	obs       *observer
}

// New creates a Client. When a usage mirror is configured the provided
// context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		maxWords:  domain.MaxWords,
		width:     domain.LineWidth,
		keyPrefix: defaultKeyPrefix,
		usageTTL:  defaultUsageTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.width <= 0 {
		return nil, fmt.Errorf("justext: width must be positive, got %d", cfg.width)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	if cfg.driver == "" {
		return wireClient(nil, cfg, obs), nil
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("justext: usage store not ready: %w", err)
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("justext: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("justext: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	tokens := ledger.New(cfg.maxWords, nil)

	// Pass nil interface (not typed nil pointer!) if the store is not configured.
	var pinger healthuc.StorePinger
	if store != nil {
		tokens.WithRecorder(usagerepo.New(store, cfg.keyPrefix, cfg.usageTTL))
		pinger = store
	}

	return &Client{
		store:     store,
		ledger:    tokens,
		usageSvc:  usageuc.New(tokens),
		healthSvc: healthuc.New(tokens, pinger),
		width:     cfg.width,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// IssueToken creates a usage token with a fresh word quota.
// email is required but not stored.
func (c *Client) IssueToken(ctx context.Context, email string) (token string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("issue_token", start, err) }()

	rec, err := c.ledger.IssueToken(ctx, email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return rec.ID, nil
}

// JustifyResult is the outcome of an accepted Justify call.
type JustifyResult struct {
	Text           string
	Words          int
	WordsUsed      int64
	WordsRemaining int64
}

// Justify charges the words of text to token and returns the justified text.
// A request over the remaining quota fails with ErrQuotaExceeded and charges nothing.
func (c *Client) Justify(ctx context.Context, token, text string) (res JustifyResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("justify", start, err) }()

	words := justify.CountWords(text)
	rec, err := c.ledger.Consume(ctx, token, words)
	if err != nil {
		return JustifyResult{}, fmt.Errorf("justify: %w", err)
	}
	c.obs.observeWords(words)

	return JustifyResult{
		Text:           justify.Justify(text, c.width),
		Words:          words,
		WordsUsed:      rec.WordsUsed,
		WordsRemaining: rec.Remaining(c.ledger.Limit()),
	}, nil
}
