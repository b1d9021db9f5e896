package db

import (
	"context"
	"time"

	"auctions/models"
)

const auctionColumns = `id, title, description, status, starts_at, ends_at, wa_group_id, created_at`

// Auction (Аукцион)

func (s *Storage) CreateAuction(ctx context.Context, a *models.Auction) error {
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	query := `
        INSERT INTO auction (title, description, status, starts_at, ends_at, wa_group_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	err := s.q.QueryRowxContext(ctx, query,
		a.Title, a.Description, a.Status, a.StartsAt, a.EndsAt, a.WAGroupID).
		Scan(&a.ID, &a.CreatedAt)
	return mapError(err, "auction")
}

func (s *Storage) GetAuction(ctx context.Context, id int64) (*models.Auction, error) {
	a := &models.Auction{}
	query := `SELECT ` + auctionColumns + ` FROM auction WHERE id=$1`
	if err := s.q.GetContext(ctx, a, query, id); err != nil {
		return nil, mapError(err, "auction")
	}
	return a, nil
}

func (s *Storage) ListAuctions(ctx context.Context, status models.AuctionStatus, limit, offset int) ([]models.Auction, error) {
	auctions := []models.Auction{}
	query := `
        SELECT ` + auctionColumns + ` FROM auction
        WHERE ($1::text = '' OR status = $1::text)
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`
	if err := s.q.SelectContext(ctx, &auctions, query, string(status), limitArg(limit), offset); err != nil {
		return nil, mapError(err, "auction")
	}
	return auctions, nil
}

// UpdateAuction обновляет редактируемые поля. created_at не меняется.
func (s *Storage) UpdateAuction(ctx context.Context, a *models.Auction) error {
	query := `
        UPDATE auction
        SET title=$1, description=$2, status=$3, starts_at=$4, ends_at=$5, wa_group_id=$6
        WHERE id=$7`
	res, err := s.q.ExecContext(ctx, query,
		a.Title, a.Description, a.Status, a.StartsAt, a.EndsAt, a.WAGroupID, a.ID)
	if err != nil {
		return mapError(err, "auction")
	}
	return expectAffected(res, "auction")
}

// UpdateAuctionStatus меняет только статус
func (s *Storage) UpdateAuctionStatus(ctx context.Context, id int64, status models.AuctionStatus) error {
	res, err := s.q.ExecContext(ctx, `UPDATE auction SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return mapError(err, "auction")
	}
	return expectAffected(res, "auction")
}

// MarkAuctionFinished меняет только status и ends_at
func (s *Storage) MarkAuctionFinished(ctx context.Context, id int64, endsAt time.Time) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE auction SET status=$1, ends_at=$2 WHERE id=$3`, models.StatusFinished, endsAt, id)
	if err != nil {
		return mapError(err, "auction")
	}
	return expectAffected(res, "auction")
}

// DeleteAuction удаляет аукцион, лоты, правила и шаблоны удаляются каскадом
func (s *Storage) DeleteAuction(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM auction WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "auction")
	}
	return expectAffected(res, "auction")
}

// GetAuctionDetail аукцион с группой, лотами, правилами и шаблонами
func (s *Storage) GetAuctionDetail(ctx context.Context, id int64) (*models.AuctionDetail, error) {
	a, err := s.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.AuctionDetail{Auction: *a}

	if a.WAGroupID != nil {
		group, err := s.GetMessagingGroup(ctx, *a.WAGroupID)
		if err != nil {
			return nil, err
		}
		detail.WAGroup = group
	}
	if detail.Items, err = s.ListItems(ctx, id, 0, 0); err != nil {
		return nil, err
	}
	if detail.Rules, err = s.ListRules(ctx, id); err != nil {
		return nil, err
	}
	if detail.Messages, err = s.ListMessageTemplates(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}
