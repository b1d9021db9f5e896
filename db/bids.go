package db

import (
	"context"

	"auctions/models"
)

// Bid (Ставка). Ставки пишет только воркер мессенджера, здесь чтение и удаление.

type bidRow struct {
	models.Bid
	PDisplayName string  `db:"p_display_name"`
	PPhone       *string `db:"p_phone"`
	PWAUserID    *string `db:"p_wa_user_id"`
}

func (r bidRow) toModel() models.Bid {
	b := r.Bid
	b.Participant = &models.Participant{
		ID:          r.ParticipantID,
		DisplayName: r.PDisplayName,
		Phone:       r.PPhone,
		WAUserID:    r.PWAUserID,
	}
	return b
}

const bidSelect = `
        SELECT b.id, b.item_id, b.participant_id, b.amount, b.is_valid,
               b.source_message_id, b.source_chat_id, b.created_at,
               p.display_name AS p_display_name, p.phone AS p_phone, p.wa_user_id AS p_wa_user_id
        FROM bid b
        JOIN participant p ON p.id = b.participant_id`

func (s *Storage) GetBid(ctx context.Context, id int64) (*models.Bid, error) {
	var row bidRow
	if err := s.q.GetContext(ctx, &row, bidSelect+` WHERE b.id=$1`, id); err != nil {
		return nil, mapError(err, "bid")
	}
	b := row.toModel()
	return &b, nil
}

// ListBids возвращает ставки, новые первыми; itemID 0 означает все лоты
func (s *Storage) ListBids(ctx context.Context, itemID int64, limit, offset int) ([]models.Bid, error) {
	rows := []bidRow{}
	query := bidSelect + `
        WHERE ($1::bigint = 0 OR b.item_id = $1::bigint)
        ORDER BY b.created_at DESC, b.id DESC
        LIMIT $2 OFFSET $3`
	if err := s.q.SelectContext(ctx, &rows, query, itemID, limitArg(limit), offset); err != nil {
		return nil, mapError(err, "bid")
	}
	bids := make([]models.Bid, 0, len(rows))
	for _, r := range rows {
		bids = append(bids, r.toModel())
	}
	return bids, nil
}

func (s *Storage) DeleteBid(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM bid WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "bid")
	}
	return expectAffected(res, "bid")
}
