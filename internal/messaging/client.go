// Package messaging is the HTTP client for the external messaging worker that
// announces auctions in the chat group and relays bids back.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"auctions/internal/apperrors"
	"auctions/internal/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultBackoffBase = 500 * time.Millisecond
	maxResponseBytes   = 1 << 20
	errorBodyLimit     = 300
)

// Config описывает подключение к воркеру мессенджера.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	// RateLimit ограничивает исходящие попытки в секунду, 0 отключает лимит.
	RateLimit float64
}

type Client struct {
	baseURL     string
	apiKey      string
	http        *http.Client
	maxRetries  int
	backoffBase time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient заменяет http.Client (таймаут из Config при этом не применяется).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger.Named("messaging") }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New создает клиент. Вызывается один раз при старте процесса.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}

	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		http:        &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		logger:      zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type auctionCommand struct {
	AuctionID int64 `json:"auction_id"`
}

// Start приказывает воркеру начать аукцион: POST /auctions/{id}/start.
func (c *Client) Start(ctx context.Context, auctionID int64, idempotencyKey string) (Response, error) {
	if auctionID <= 0 {
		return nil, apperrors.InvalidArgument("auction_id must be a positive integer")
	}
	path := fmt.Sprintf("/auctions/%d/start", auctionID)
	return c.request(ctx, "start", http.MethodPost, path, auctionCommand{AuctionID: auctionID}, idempotencyKey)
}

// Close приказывает воркеру закрыть аукцион: POST /auctions/{id}/close.
func (c *Client) Close(ctx context.Context, auctionID int64, idempotencyKey string) (Response, error) {
	if auctionID <= 0 {
		return nil, apperrors.InvalidArgument("auction_id must be a positive integer")
	}
	path := fmt.Sprintf("/auctions/%d/close", auctionID)
	return c.request(ctx, "close", http.MethodPost, path, auctionCommand{AuctionID: auctionID}, idempotencyKey)
}

// Health проверяет GET /health. Никогда не возвращает ошибку: любая
// ошибка превращается в {ok: false, error}.
func (c *Client) Health(ctx context.Context) Response {
	resp, err := c.request(ctx, "health", http.MethodGet, "/health", nil, "")
	if err != nil {
		return Response{"ok": false, "error": err.Error()}
	}
	return resp
}

func (c *Client) request(ctx context.Context, operation, method, path string, body any, idempotencyKey string) (Response, error) {
	start := time.Now()
	resp, err := c.do(ctx, operation, method, path, body, idempotencyKey)
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(err))
	}
	c.metrics.ObserveMessaging(operation, outcome, time.Since(start))
	return resp, err
}

// errRetryStatus помечает ответ с временным статусом, сам ответ лежит в last
var errRetryStatus = errors.New("retryable status")

func (c *Client) do(ctx context.Context, operation, method, path string, body any, idempotencyKey string) (Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, apperrors.Internal("marshal request").WithCause(err)
		}
	}
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var (
		last    rawResponse
		lastErr error
		attempt int
	)
	backoff := c.backoff(func(wait time.Duration) {
		fields := []zap.Field{
			zap.String("operation", operation),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
		}
		if lastErr != nil {
			fields = append(fields, zap.Error(lastErr))
		} else {
			fields = append(fields, zap.Int("status", last.status))
		}
		c.logger.Warn("messaging request failed, retrying", fields...)
	})

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		last, lastErr = c.send(ctx, method, url, payload, idempotencyKey)
		switch {
		case lastErr != nil:
			return retry.RetryableError(lastErr)
		case retryableStatus(last.status):
			return retry.RetryableError(errRetryStatus)
		}
		return nil
	})

	switch {
	case err == nil, errors.Is(err, errRetryStatus):
		return classify(last)
	default:
		return nil, unreachable(err)
	}
}

// backoff 0.5s, 1s, 2s... не больше maxRetries повторов. onRetry вызывается
// перед каждым ожиданием.
func (c *Client) backoff(onRetry func(wait time.Duration)) retry.Backoff {
	b := retry.WithMaxRetries(uint64(c.maxRetries), retry.NewExponential(c.backoffBase))
	return retry.BackoffFunc(func() (time.Duration, bool) {
		wait, stop := b.Next()
		if !stop {
			onRetry(wait)
		}
		return wait, stop
	})
}

type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte, idempotencyKey string) (rawResponse, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return rawResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return rawResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return rawResponse{}, err
	}
	return rawResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func unreachable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ServiceUnavailable("messaging service unreachable: timeout").WithCause(err)
	}
	return apperrors.ServiceUnavailable("messaging service unreachable: %v", err).WithCause(err)
}

// classify переводит финальный ответ воркера в результат или типизированную ошибку.
func classify(r rawResponse) (Response, error) {
	switch {
	case r.status >= 500 && r.status < 600:
		return nil, apperrors.ServiceUnavailable("service error %d: %s", r.status, truncate(r.body))
	case r.status == http.StatusTooManyRequests:
		return nil, apperrors.ServiceUnavailable("service rate limited %d: %s", r.status, truncate(r.body))
	case r.status == http.StatusUnauthorized:
		return nil, apperrors.Unauthorized("unauthorized (check X-Api-Key)")
	case r.status == http.StatusForbidden:
		return nil, apperrors.Forbidden("forbidden")
	case r.status == http.StatusNotFound:
		return nil, apperrors.NotFound("not found")
	case r.status == http.StatusConflict:
		// 409 - валидный ответ воркера (например, аукцион уже запущен)
		return decode(r)
	case r.status < 200 || r.status >= 300:
		return nil, apperrors.ServiceError(r.status, "HTTP %d: %s", r.status, truncate(r.body))
	}
	return decode(r)
}

func truncate(body []byte) string {
	runes := []rune(string(body))
	if len(runes) > errorBodyLimit {
		runes = runes[:errorBodyLimit]
	}
	return string(runes)
}
