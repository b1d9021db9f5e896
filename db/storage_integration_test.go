package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"auctions/db"
	"auctions/db/migrations"
	"auctions/internal/apperrors"
	"auctions/models"
)

// newTestStorage поднимает Postgres в контейнере и накатывает миграции
func newTestStorage(t *testing.T) *db.Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("auctions_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Connect(ctx, connString, db.PoolConfig{MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, migrations.Run(conn.DB))
	version, err := migrations.Version(conn.DB)
	require.NoError(t, err)
	require.EqualValues(t, 1, version)

	return db.NewStorage(conn)
}

func strPtr(s string) *string { return &s }

func TestStorageIntegration(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	group := &models.MessagingGroup{WAChatID: "120363@g.us", Name: "Sunday"}
	require.NoError(t, store.CreateMessagingGroup(ctx, group))

	auction := &models.Auction{Title: "Spring", WAGroupID: &group.ID}
	require.NoError(t, store.CreateAuction(ctx, auction))
	require.Equal(t, models.StatusDraft, auction.Status)
	require.False(t, auction.CreatedAt.IsZero())

	t.Run("items with derived bid fields", func(t *testing.T) {
		item := &models.Item{
			AuctionID: auction.ID,
			Name:      "Lamp",
			BasePrice: decimal.RequireFromString("10.50"),
			Increment: decimal.RequireFromString("1"),
		}
		require.NoError(t, store.CreateItem(ctx, item))

		got, err := store.GetItem(ctx, item.ID)
		require.NoError(t, err)
		require.False(t, got.HighestBid.Valid)
		require.Equal(t, 0, got.BidsCount)
		require.True(t, decimal.RequireFromString("10.5").Equal(got.BasePrice))
	})

	t.Run("participant uniqueness", func(t *testing.T) {
		p := &models.Participant{DisplayName: "Ana", Phone: strPtr("+100")}
		require.NoError(t, store.CreateParticipant(ctx, p))

		dup := &models.Participant{DisplayName: "Ana 2", Phone: strPtr("+100")}
		err := store.CreateParticipant(ctx, dup)
		require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

		none := &models.Participant{DisplayName: "Nobody"}
		err = store.CreateParticipant(ctx, none)
		require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("rules are unique per auction", func(t *testing.T) {
		require.NoError(t, store.CreateRule(ctx, &models.Rule{AuctionID: auction.ID, Key: "min_increment", Value: "5"}))
		err := store.CreateRule(ctx, &models.Rule{AuctionID: auction.ID, Key: "min_increment", Value: "6"})
		require.True(t, apperrors.IsKind(err, apperrors.KindConflict))

		require.NoError(t, store.CreateMessageTemplate(ctx, &models.MessageTemplate{AuctionID: auction.ID, Key: "welcome", Template: "Hi"}))
	})

	t.Run("detail embeds children", func(t *testing.T) {
		detail, err := store.GetAuctionDetail(ctx, auction.ID)
		require.NoError(t, err)
		require.NotNil(t, detail.WAGroup)
		require.Equal(t, group.WAChatID, detail.WAGroup.WAChatID)
		require.Len(t, detail.Items, 1)
		require.Len(t, detail.Rules, 1)
		require.Len(t, detail.Messages, 1)
	})

	t.Run("status updates touch only their columns", func(t *testing.T) {
		require.NoError(t, store.UpdateAuctionStatus(ctx, auction.ID, models.StatusRunning))
		endsAt := auction.CreatedAt
		require.NoError(t, store.MarkAuctionFinished(ctx, auction.ID, endsAt))

		got, err := store.GetAuction(ctx, auction.ID)
		require.NoError(t, err)
		require.Equal(t, models.StatusFinished, got.Status)
		require.Equal(t, "Spring", got.Title)
		require.NotNil(t, got.EndsAt)
		require.WithinDuration(t, endsAt, *got.EndsAt, time.Millisecond)

		running, err := store.ListAuctions(ctx, models.StatusFinished, 10, 0)
		require.NoError(t, err)
		require.Len(t, running, 1)
	})

	t.Run("missing rows", func(t *testing.T) {
		_, err := store.GetAuction(ctx, 999999)
		require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
		err = store.DeleteItem(ctx, 999999)
		require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	})

	t.Run("group delete unlinks auction", func(t *testing.T) {
		require.NoError(t, store.DeleteMessagingGroup(ctx, group.ID))
		got, err := store.GetAuction(ctx, auction.ID)
		require.NoError(t, err)
		require.Nil(t, got.WAGroupID)
	})

	t.Run("auction delete cascades", func(t *testing.T) {
		require.NoError(t, store.DeleteAuction(ctx, auction.ID))
		items, err := store.ListItems(ctx, auction.ID, 0, 0)
		require.NoError(t, err)
		require.Empty(t, items)
		rules, err := store.ListRules(ctx, auction.ID)
		require.NoError(t, err)
		require.Empty(t, rules)
	})
}

func TestWithinTxRollsBack(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var createdID int64
	err := store.WithinTx(ctx, func(tx db.Tx) error {
		a := &models.Auction{Title: "Batch"}
		if err := tx.CreateAuction(ctx, a); err != nil {
			return err
		}
		createdID = a.ID
		if err := tx.CreateItem(ctx, &models.Item{AuctionID: a.ID, Name: "ok", BasePrice: decimal.NewFromInt(1)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetAuction(ctx, createdID)
	require.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	items, err := store.ListItems(ctx, 0, 0, 0)
	require.NoError(t, err)
	require.Empty(t, items)

	require.NoError(t, store.WithinTx(ctx, func(tx db.Tx) error {
		return tx.CreateAuction(ctx, &models.Auction{Title: "Committed"})
	}))
	all, err := store.ListAuctions(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestBidsReadWithParticipant(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	a := &models.Auction{Title: "Bids"}
	require.NoError(t, store.CreateAuction(ctx, a))
	it := &models.Item{AuctionID: a.ID, Name: "Clock", BasePrice: decimal.NewFromInt(5)}
	require.NoError(t, store.CreateItem(ctx, it))
	p := &models.Participant{DisplayName: "Ana", WAUserID: strPtr("549110000@s.whatsapp.net")}
	require.NoError(t, store.CreateParticipant(ctx, p))

	// ставки пишет воркер мессенджера, в тесте вставляем напрямую
	require.NoError(t, store.InsertBidForTest(ctx, it.ID, p.ID, decimal.RequireFromString("7.25")))
	require.NoError(t, store.InsertBidForTest(ctx, it.ID, p.ID, decimal.RequireFromString("9.00")))

	bids, err := store.ListBids(ctx, it.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.NotNil(t, bids[0].Participant)
	require.Equal(t, "Ana", bids[0].Participant.DisplayName)

	got, err := store.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.BidsCount)
	require.True(t, got.HighestBid.Valid)
	require.True(t, decimal.RequireFromString("9").Equal(got.HighestBid.Decimal))

	require.NoError(t, store.DeleteItem(ctx, it.ID))
	bids, err = store.ListBids(ctx, it.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, bids)
}
