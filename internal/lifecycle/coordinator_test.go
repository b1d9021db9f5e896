package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"auctions/internal/apperrors"
	"auctions/internal/messaging"
	"auctions/internal/metrics"
	"auctions/models"
)

type fakeStore struct {
	auctions map[int64]*models.Auction
	updates  []models.AuctionStatus
	finished []time.Time
	failOn   error
}

func newFakeStore(auctions ...*models.Auction) *fakeStore {
	s := &fakeStore{auctions: map[int64]*models.Auction{}}
	for _, a := range auctions {
		s.auctions[a.ID] = a
	}
	return s
}

func (s *fakeStore) GetAuction(_ context.Context, id int64) (*models.Auction, error) {
	a, ok := s.auctions[id]
	if !ok {
		return nil, apperrors.NotFound("auction not found")
	}
	cp := *a
	return &cp, nil
}

func (s *fakeStore) UpdateAuctionStatus(_ context.Context, id int64, status models.AuctionStatus) error {
	if s.failOn != nil {
		return s.failOn
	}
	s.updates = append(s.updates, status)
	s.auctions[id].Status = status
	return nil
}

func (s *fakeStore) MarkAuctionFinished(_ context.Context, id int64, endsAt time.Time) error {
	if s.failOn != nil {
		return s.failOn
	}
	s.finished = append(s.finished, endsAt)
	s.auctions[id].Status = models.StatusFinished
	s.auctions[id].EndsAt = &endsAt
	return nil
}

type call struct {
	op  string
	id  int64
	key string
}

type fakeNotifier struct {
	calls []call
	resp  messaging.Response
	err   error
}

func (n *fakeNotifier) Start(_ context.Context, id int64, key string) (messaging.Response, error) {
	n.calls = append(n.calls, call{"start", id, key})
	return n.resp, n.err
}

func (n *fakeNotifier) Close(_ context.Context, id int64, key string) (messaging.Response, error) {
	n.calls = append(n.calls, call{"close", id, key})
	return n.resp, n.err
}

func newCoordinator(store *fakeStore, notifier *fakeNotifier) (*Coordinator, *metrics.Metrics, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New(prometheus.NewRegistry())
	return NewCoordinator(store, notifier, zap.New(core), m), m, logs
}

func TestStart_FromDraft(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 1, Status: models.StatusDraft})
	notifier := &fakeNotifier{resp: messaging.Response{"ok": true, "status_code": 200}}
	c, m, logs := newCoordinator(store, notifier)

	out, err := c.Start(context.Background(), 1, "key-1")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, http.StatusOK, out.HTTPStatus)
	require.Equal(t, models.StatusRunning, out.Status)
	require.Equal(t, true, out.Remote["ok"])

	require.Equal(t, []models.AuctionStatus{models.StatusRunning}, store.updates)
	require.Equal(t, []call{{"start", 1, "key-1"}}, notifier.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("start", "ok")))
	assert.Equal(t, 1, logs.FilterMessage("auction status changed").Len())
}

func TestStart_AlreadyRunningIsNoop(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 1, Status: models.StatusRunning})
	notifier := &fakeNotifier{}
	c, m, _ := newCoordinator(store, notifier)

	out, err := c.Start(context.Background(), 1, "")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, "Auction already RUNNING", out.Message)
	require.Empty(t, store.updates)
	require.Empty(t, notifier.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("start", "noop")))
}

func TestStart_RemoteFailureKeepsRunning(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 3, Status: models.StatusPaused})
	notifier := &fakeNotifier{err: apperrors.ServiceUnavailable("messaging service unreachable: connection refused")}
	c, m, logs := newCoordinator(store, notifier)

	out, err := c.Start(context.Background(), 3, "")
	require.NoError(t, err)
	require.False(t, out.OK)
	require.Equal(t, http.StatusBadGateway, out.HTTPStatus)
	require.Equal(t, "Auction set to RUNNING, but messaging start failed", out.Message)
	require.Contains(t, out.Error, "connection refused")

	require.Equal(t, models.StatusRunning, store.auctions[3].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("start", "degraded")))
	assert.Equal(t, 1, logs.FilterMessage("messaging start failed").Len())
}

func TestStart_GeneratesIdempotencyKey(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 1, Status: models.StatusDraft})
	notifier := &fakeNotifier{resp: messaging.Response{"ok": true}}
	c, _, _ := newCoordinator(store, notifier)

	_, err := c.Start(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	_, err = uuid.Parse(notifier.calls[0].key)
	require.NoError(t, err)
}

func TestStart_NotFound(t *testing.T) {
	notifier := &fakeNotifier{}
	c, _, _ := newCoordinator(newFakeStore(), notifier)

	_, err := c.Start(context.Background(), 42, "")
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	require.Empty(t, notifier.calls)
}

func TestStart_StoreFailureSkipsRemote(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 1, Status: models.StatusDraft})
	store.failOn = errors.New("db down")
	notifier := &fakeNotifier{}
	c, _, _ := newCoordinator(store, notifier)

	_, err := c.Start(context.Background(), 1, "")
	require.Error(t, err)
	require.Empty(t, notifier.calls)
}

func TestPause(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 1, Status: models.StatusRunning})
	notifier := &fakeNotifier{}
	c, _, _ := newCoordinator(store, notifier)

	out, err := c.Pause(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, models.StatusPaused, store.auctions[1].Status)
	require.Empty(t, notifier.calls)
}

func TestPause_RejectedWhenNotRunning(t *testing.T) {
	for _, status := range []models.AuctionStatus{
		models.StatusDraft, models.StatusScheduled, models.StatusPaused,
		models.StatusFinished, models.StatusCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			store := newFakeStore(&models.Auction{ID: 1, Status: status})
			notifier := &fakeNotifier{}
			c, m, _ := newCoordinator(store, notifier)

			_, err := c.Pause(context.Background(), 1)
			require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
			require.Equal(t, "Auction is not RUNNING", err.Error())
			require.Equal(t, status, store.auctions[1].Status)
			require.Empty(t, store.updates)
			require.Empty(t, notifier.calls)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("pause", "rejected")))
		})
	}
}

func TestFinish_DefaultsEndsAtToCreatedAt(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.Auction{ID: 5, Status: models.StatusRunning, CreatedAt: created})
	notifier := &fakeNotifier{resp: messaging.Response{"ok": true}}
	c, _, _ := newCoordinator(store, notifier)

	out, err := c.Finish(context.Background(), 5, "k")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Empty(t, out.Message)
	require.Equal(t, []time.Time{created}, store.finished)
	require.Equal(t, []call{{"close", 5, "k"}}, notifier.calls)
}

func TestFinish_KeepsExistingEndsAt(t *testing.T) {
	ends := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	store := newFakeStore(&models.Auction{ID: 5, Status: models.StatusPaused, EndsAt: &ends})
	c, _, _ := newCoordinator(store, &fakeNotifier{resp: messaging.Response{"ok": true}})

	_, err := c.Finish(context.Background(), 5, "")
	require.NoError(t, err)
	require.Equal(t, []time.Time{ends}, store.finished)
}

func TestFinish_AlreadyClosedIsNoop(t *testing.T) {
	for _, status := range []models.AuctionStatus{models.StatusFinished, models.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			store := newFakeStore(&models.Auction{ID: 1, Status: status})
			notifier := &fakeNotifier{}
			c, _, _ := newCoordinator(store, notifier)

			out, err := c.Finish(context.Background(), 1, "")
			require.NoError(t, err)
			require.True(t, out.OK)
			require.Equal(t, "Auction already "+string(status), out.Message)
			require.Empty(t, store.finished)
			require.Empty(t, notifier.calls)
		})
	}
}

func TestFinish_RemoteFailureStillSucceeds(t *testing.T) {
	store := newFakeStore(&models.Auction{ID: 2, Status: models.StatusRunning})
	notifier := &fakeNotifier{err: apperrors.ServiceError(400, "HTTP 400: bad")}
	c, m, _ := newCoordinator(store, notifier)

	out, err := c.Finish(context.Background(), 2, "")
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, http.StatusOK, out.HTTPStatus)
	require.Equal(t, "Auction finished, messaging close failed", out.Message)
	require.Equal(t, "HTTP 400: bad", out.Error)
	require.Equal(t, models.StatusFinished, store.auctions[2].Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("finish", "degraded")))
}
