package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func tokenEchoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(TokenFromContext(r.Context())))
	})
}

func TestBearerTokenMiddleware_Missing_401(t *testing.T) {
	handler := BearerTokenMiddleware(tokenEchoHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/justify", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != CodeTokenRequired {
		t.Errorf("error code: got %s, want %s", errResp.Code, CodeTokenRequired)
	}
}

func TestBearerTokenMiddleware_PassesToken(t *testing.T) {
	handler := BearerTokenMiddleware(tokenEchoHandler())

	tests := []struct {
		name   string
		header string
	}{
		{"canonical", "Bearer abc-123"},
		{"lowercase scheme", "bearer abc-123"},
		{"extra spaces", "  Bearer   abc-123  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/justify", http.NoBody)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("got %d, want %d", rr.Code, http.StatusOK)
			}
			if got := rr.Body.String(); got != "abc-123" {
				t.Errorf("token: got %q, want %q", got, "abc-123")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"Token abc", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
