// Package auth проверяет bearer JWT (HS256) на админских маршрутах.
// Выпуск и обновление токенов делает другой сервис.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"auctions/internal/apperrors"
)

type ctxKey struct{}

// Claims содержимое токена администратора
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

type Verifier struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewVerifier пустой secret отключает проверку
func NewVerifier(secret, issuer string, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, logger: logger.Named("auth")}
}

func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Middleware пропускает запрос только с валидным токеном
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	if !v.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			writeUnauthorized(w, err)
			return
		}
		claims, err := v.Verify(raw)
		if err != nil {
			v.logger.Debug("token rejected", zap.Error(err))
			writeUnauthorized(w, apperrors.Unauthorized("invalid token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

// Verify разбирает и проверяет токен
func (v *Verifier) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// FromContext claims текущего запроса
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", apperrors.Unauthorized("missing Authorization header")
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperrors.Unauthorized("Authorization header must be a Bearer token")
	}
	return strings.TrimSpace(token), nil
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Unauthorized("unauthorized")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": appErr})
}
