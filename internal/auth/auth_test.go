package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "auctions",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "admin",
	}
}

func protected(v *Verifier) http.Handler {
	return v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := FromContext(r.Context()); ok {
			w.Header().Set("X-User", c.Username)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(secret, "auctions", nil)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	otherIssuer := validClaims()
	otherIssuer.Issuer = "someone-else"
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims()), http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer invalid.jwt.token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("nope"), validClaims()), http.StatusUnauthorized},
		{"wrong alg", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims()), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), expired), http.StatusUnauthorized},
		{"no expiry", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), noExpiry), http.StatusUnauthorized},
		{"other issuer", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), otherIssuer), http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auctions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			protected(v).ServeHTTP(rr, req)
			require.Equal(t, tc.wantStatus, rr.Code)

			if tc.wantStatus == http.StatusNoContent {
				require.Equal(t, "admin", rr.Header().Get("X-User"))
				return
			}
			var body struct {
				OK    bool `json:"ok"`
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			require.False(t, body.OK)
			require.Equal(t, "unauthorized", body.Error.Code)
			require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestMiddleware_DisabledWithoutSecret(t *testing.T) {
	v := NewVerifier("", "", nil)
	require.False(t, v.Enabled())

	rr := httptest.NewRecorder()
	protected(v).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/auctions", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
