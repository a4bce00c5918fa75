package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mockmate/interviewer/internal/utils"
)

var testSecret = []byte("test-secret")

func signTestToken(t *testing.T, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.SessionTokenClaims{
		UserID: "user-42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestRequireAuthAllowsValidToken(t *testing.T) {
	var gotUserID string
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetAuthClaims(r)
		if !ok {
			t.Error("expected claims in the request context")
			return
		}
		gotUserID = claims.UserID
	}))

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("expected user-42, got %q", gotUserID)
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "missing_token" {
		t.Errorf("expected missing_token, got %q", resp.Code)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	handler := RequireAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a bad token")
	}))

	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Authorization", "Bearer "+signTestToken(t, []byte("wrong-secret")))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "invalid_token" {
		t.Errorf("expected invalid_token, got %q", resp.Code)
	}
}

func TestGetAuthClaimsWithoutMiddleware(t *testing.T) {
	request := httptest.NewRequest("GET", "/", nil)
	if _, ok := GetAuthClaims(request); ok {
		t.Error("expected no claims on an unauthenticated request")
	}
}
