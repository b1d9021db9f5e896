// Package lifecycle ведет аукцион по статусам и синхронизирует переходы
// с воркером мессенджера.
package lifecycle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auctions/internal/apperrors"
	"auctions/internal/messaging"
	"auctions/internal/metrics"
	"auctions/models"
)

// Store часть хранилища, которая нужна координатору
type Store interface {
	GetAuction(ctx context.Context, id int64) (*models.Auction, error)
	UpdateAuctionStatus(ctx context.Context, id int64, status models.AuctionStatus) error
	MarkAuctionFinished(ctx context.Context, id int64, endsAt time.Time) error
}

// Notifier команды воркеру мессенджера
type Notifier interface {
	Start(ctx context.Context, auctionID int64, idempotencyKey string) (messaging.Response, error)
	Close(ctx context.Context, auctionID int64, idempotencyKey string) (messaging.Response, error)
}

// Outcome результат перехода. HTTPStatus 502 означает, что статус сохранен,
// но воркер не подтвердил команду.
type Outcome struct {
	OK         bool                 `json:"ok"`
	AuctionID  int64                `json:"auction_id"`
	Status     models.AuctionStatus `json:"status"`
	Message    string               `json:"message,omitempty"`
	Remote     messaging.Response   `json:"wa,omitempty"`
	Error      string               `json:"error,omitempty"`
	HTTPStatus int                  `json:"-"`
}

const (
	transitionStart  = "start"
	transitionPause  = "pause"
	transitionFinish = "finish"

	resultOK       = "ok"
	resultNoop     = "noop"
	resultDegraded = "degraded"
	resultRejected = "rejected"
	resultError    = "error"
)

type Coordinator struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewCoordinator(store Store, notifier Notifier, logger *zap.Logger, m *metrics.Metrics) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		notifier: notifier,
		logger:   logger.Named("lifecycle"),
		metrics:  m,
	}
}

// Start переводит аукцион в RUNNING и затем просит воркер начать его.
// Статус сохраняется до вызова воркера и не откатывается при его ошибке.
func (c *Coordinator) Start(ctx context.Context, id int64, idempotencyKey string) (*Outcome, error) {
	a, err := c.store.GetAuction(ctx, id)
	if err != nil {
		c.record(transitionStart, resultError)
		return nil, err
	}
	if a.Status == models.StatusRunning {
		c.record(transitionStart, resultNoop)
		return &Outcome{
			OK:         true,
			AuctionID:  id,
			Status:     a.Status,
			Message:    "Auction already RUNNING",
			HTTPStatus: http.StatusOK,
		}, nil
	}

	if err := c.store.UpdateAuctionStatus(ctx, id, models.StatusRunning); err != nil {
		c.record(transitionStart, resultError)
		return nil, err
	}
	c.logger.Info("auction status changed",
		zap.Int64("auction_id", id),
		zap.String("from", string(a.Status)),
		zap.String("to", string(models.StatusRunning)))

	key := ensureKey(idempotencyKey)
	resp, err := c.notifier.Start(ctx, id, key)
	if err != nil {
		c.logger.Error("messaging start failed",
			zap.Int64("auction_id", id),
			zap.String("idempotency_key", key),
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err))
		c.record(transitionStart, resultDegraded)
		return &Outcome{
			OK:         false,
			AuctionID:  id,
			Status:     models.StatusRunning,
			Message:    "Auction set to RUNNING, but messaging start failed",
			Error:      err.Error(),
			HTTPStatus: http.StatusBadGateway,
		}, nil
	}

	c.record(transitionStart, resultOK)
	return &Outcome{
		OK:         true,
		AuctionID:  id,
		Status:     models.StatusRunning,
		Remote:     resp,
		HTTPStatus: http.StatusOK,
	}, nil
}

// Pause разрешен только из RUNNING. Воркер не уведомляется.
func (c *Coordinator) Pause(ctx context.Context, id int64) (*Outcome, error) {
	a, err := c.store.GetAuction(ctx, id)
	if err != nil {
		c.record(transitionPause, resultError)
		return nil, err
	}
	if a.Status != models.StatusRunning {
		c.record(transitionPause, resultRejected)
		return nil, apperrors.Conflict("Auction is not RUNNING")
	}
	if err := c.store.UpdateAuctionStatus(ctx, id, models.StatusPaused); err != nil {
		c.record(transitionPause, resultError)
		return nil, err
	}
	c.logger.Info("auction status changed",
		zap.Int64("auction_id", id),
		zap.String("from", string(a.Status)),
		zap.String("to", string(models.StatusPaused)))

	c.record(transitionPause, resultOK)
	return &Outcome{
		OK:         true,
		AuctionID:  id,
		Status:     models.StatusPaused,
		HTTPStatus: http.StatusOK,
	}, nil
}

// Finish закрывает аукцион. Ошибка воркера не делает операцию неуспешной.
func (c *Coordinator) Finish(ctx context.Context, id int64, idempotencyKey string) (*Outcome, error) {
	a, err := c.store.GetAuction(ctx, id)
	if err != nil {
		c.record(transitionFinish, resultError)
		return nil, err
	}
	if a.Status.Closed() {
		c.record(transitionFinish, resultNoop)
		return &Outcome{
			OK:         true,
			AuctionID:  id,
			Status:     a.Status,
			Message:    fmt.Sprintf("Auction already %s", a.Status),
			HTTPStatus: http.StatusOK,
		}, nil
	}

	endsAt := a.CreatedAt
	if a.EndsAt != nil {
		endsAt = *a.EndsAt
	}
	if err := c.store.MarkAuctionFinished(ctx, id, endsAt); err != nil {
		c.record(transitionFinish, resultError)
		return nil, err
	}
	c.logger.Info("auction status changed",
		zap.Int64("auction_id", id),
		zap.String("from", string(a.Status)),
		zap.String("to", string(models.StatusFinished)),
		zap.Time("ends_at", endsAt))

	out := &Outcome{
		OK:         true,
		AuctionID:  id,
		Status:     models.StatusFinished,
		HTTPStatus: http.StatusOK,
	}

	key := ensureKey(idempotencyKey)
	resp, err := c.notifier.Close(ctx, id, key)
	if err != nil {
		c.logger.Warn("messaging close failed",
			zap.Int64("auction_id", id),
			zap.String("idempotency_key", key),
			zap.Error(err))
		c.record(transitionFinish, resultDegraded)
		out.Message = "Auction finished, messaging close failed"
		out.Error = err.Error()
		return out, nil
	}

	c.record(transitionFinish, resultOK)
	out.Remote = resp
	return out, nil
}

func (c *Coordinator) record(transition, result string) {
	c.metrics.ObserveTransition(transition, result)
}

// ensureKey генерирует ключ идемпотентности, если вызывающий его не передал
func ensureKey(key string) string {
	if key != "" {
		return key
	}
	return uuid.NewString()
}
