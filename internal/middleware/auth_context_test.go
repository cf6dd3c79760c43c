package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"plant-photo-gallery/internal/ports/auth"
)

type fakeVerifier struct {
	claims auth.Claims
	err    error
	tokens []string
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	v.tokens = append(v.tokens, token)
	if v.err != nil {
		return auth.Claims{}, v.err
	}
	return v.claims, nil
}

func claimsProbe(got *auth.Claims, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := GetClaims(r.Context())
		*got, *found = c, ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthContext_DevModeDebugHeader(t *testing.T) {
	var got auth.Claims
	var found bool
	h := AuthContext(nil)(claimsProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set("X-Debug-User-ID", "u1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !found || got.UserID != "u1" {
		t.Fatalf("expected dev claims for u1, got found=%v claims=%+v", found, got)
	}
}

func TestAuthContext_DevModeWithoutHeader(t *testing.T) {
	var got auth.Claims
	var found bool
	h := AuthContext(nil)(claimsProbe(&got, &found))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/gallery", nil))

	if found {
		t.Fatalf("expected no claims, got %+v", got)
	}
}

func TestAuthContext_VerifierSetsClaims(t *testing.T) {
	v := &fakeVerifier{claims: auth.Claims{UserID: "u1", Email: "u1@example.com"}}
	var got auth.Claims
	var found bool
	h := AuthContext(v)(claimsProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !found || got.UserID != "u1" {
		t.Fatalf("expected verified claims, got found=%v claims=%+v", found, got)
	}
	if len(v.tokens) != 1 || v.tokens[0] != "tok-1" {
		t.Fatalf("verifier saw tokens %v", v.tokens)
	}
}

func TestAuthContext_VerifierFailureLeavesRequestAnonymous(t *testing.T) {
	v := &fakeVerifier{err: errors.New("bad token")}
	var got auth.Claims
	var found bool
	h := AuthContext(v)(claimsProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set("Authorization", "Bearer tok-bad")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatalf("expected no claims after failed verify, got %+v", got)
	}
}

func TestAuthContext_IgnoresDebugHeaderWithVerifier(t *testing.T) {
	v := &fakeVerifier{claims: auth.Claims{UserID: "u1"}}
	var got auth.Claims
	var found bool
	h := AuthContext(v)(claimsProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set("X-Debug-User-ID", "intruder")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("debug header must be dev-only, not honored with a real verifier")
	}
}
