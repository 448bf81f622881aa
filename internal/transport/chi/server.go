package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/justext/internal/domain"
	"github.com/kailas-cloud/justext/internal/justify"
	logpkg "github.com/kailas-cloud/justext/internal/logger"
	healthuc "github.com/kailas-cloud/justext/internal/usecase/health"
	"github.com/kailas-cloud/justext/internal/usecase/ledger"
	usageuc "github.com/kailas-cloud/justext/internal/usecase/usage"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeTokenRequired    = "token_required"
	CodeUnknownToken     = "unknown_token"
	CodeQuotaExceeded    = "quota_exceeded"
	CodePayloadTooLarge  = "payload_too_large"
	CodeRateLimited      = "rate_limited"
	CodeNotFound         = "not_found"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternalError    = "internal_error"
)

// Response headers set by POST /api/justify.
const (
	HeaderWordsUsed      = "X-Words-Used"
	HeaderWordsRemaining = "X-Words-Remaining"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TokenRequest is the body of POST /api/token.
type TokenRequest struct {
	Email string `json:"email"`
}

// TokenResponse is the body returned by POST /api/token.
type TokenResponse struct {
	Token string `json:"token"`
}

// UsageResponse is the body returned by GET /api/usage.
type UsageResponse struct {
	Token          string    `json:"token"`
	CreatedAt      time.Time `json:"created_at"`
	WordsLimit     int64     `json:"words_limit"`
	WordsUsed      int64     `json:"words_used"`
	WordsRemaining int64     `json:"words_remaining"`
	IsExhausted    bool      `json:"is_exhausted"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Tokens int               `json:"tokens"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the token, justify and usage API.
type Server struct {
	ledger        *ledger.Ledger
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	width         int
	maxBodyBytes  int64
	issueLimiter  *IPRateLimiter
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ledger *ledger.Ledger,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ledger:       ledger,
		usage:        usage,
		health:       health,
		logger:       logger,
		width:        domain.LineWidth,
		maxBodyBytes: 4 << 20,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidIssuance, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrInvalidWordCount, http.StatusBadRequest, CodeBadRequest),
		sentinelHandler(domain.ErrUnknownToken, http.StatusUnauthorized, CodeUnknownToken),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded),
		sentinelHandler(domain.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, CodePayloadTooLarge),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
	}
	return s
}

// WithWidth overrides the justification width.
func (s *Server) WithWidth(width int) *Server {
	if width > 0 {
		s.width = width
	}
	return s
}

// WithMaxBodyBytes overrides the request body limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// WithIssueLimiter enables per-IP rate limiting of POST /api/token.
func (s *Server) WithIssueLimiter(l *IPRateLimiter) *Server {
	s.issueLimiter = l
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.NotFound(s.NotFound)
	r.MethodNotAllowed(s.MethodNotAllowed)

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.With(s.issueLimiter.Middleware()).Post("/token", s.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(BearerTokenMiddleware)
			r.Post("/justify", s.Justify)
			r.Get("/usage", s.GetUsage)
		})
	})
}

// IssueToken handles POST /api/token.
func (s *Server) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes)).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			s.handleDomainError(w, domain.ErrPayloadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rec, err := s.ledger.IssueToken(r.Context(), req.Email)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: rec.ID})
}

// Justify handles POST /api/justify. The request body is charged against the
// caller's quota as a whole; a rejected request consumes nothing.
func (s *Server) Justify(w http.ResponseWriter, r *http.Request) {
	tokenID := TokenFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		if isBodyTooLarge(err) {
			s.handleDomainError(w, domain.ErrPayloadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Failed to read request body")
		return
	}
	text := string(body)
	words := justify.CountWords(text)

	rec, err := s.ledger.Consume(r.Context(), tokenID, words)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	logpkg.FromContext(r.Context()).Debug("Text justified",
		logpkg.Token(rec.ID),
		zap.Int("words", words),
		zap.Int64("words_used", rec.WordsUsed),
	)

	out := justify.Justify(text, s.width)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(HeaderWordsUsed, strconv.FormatInt(rec.WordsUsed, 10))
	w.Header().Set(HeaderWordsRemaining, strconv.FormatInt(rec.Remaining(s.ledger.Limit()), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.GetReport(r.Context(), TokenFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	b := report.Budget()
	writeJSON(w, http.StatusOK, UsageResponse{
		Token:          report.TokenID(),
		CreatedAt:      report.CreatedAt(),
		WordsLimit:     b.WordsLimit(),
		WordsUsed:      b.WordsUsed(),
		WordsRemaining: b.WordsRemaining(),
		IsExhausted:    b.IsExhausted(),
	})
}

// HealthCheck handles GET /health. A degraded usage mirror does not affect
// the API, so the status code stays 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
		Tokens: report.Tokens,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NotFound answers unknown routes.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path))
}

// MethodNotAllowed answers known routes called with the wrong method.
func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidIssuance,
		domain.ErrInvalidWordCount,
		domain.ErrUnknownToken,
		domain.ErrQuotaExceeded,
		domain.ErrPayloadTooLarge,
		domain.ErrRateLimited,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Debug("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
