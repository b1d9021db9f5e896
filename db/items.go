package db

import (
	"context"

	"auctions/models"
)

const itemSelect = `
        SELECT i.id, i.auction_id, i.name, i.description, i.image, i.base_price, i.increment,
               i.display_order, i.is_sold, i.sold_to, i.sold_at,
               i.wa_message_id, i.wa_stanza_id, i.claim_expires_at,
               (SELECT MAX(b.amount) FROM bid b WHERE b.item_id = i.id) AS highest_bid,
               (SELECT COUNT(1) FROM bid b WHERE b.item_id = i.id) AS bids_count
        FROM item i`

// Item (Лот)

func (s *Storage) CreateItem(ctx context.Context, it *models.Item) error {
	query := `
        INSERT INTO item
            (auction_id, name, description, image, base_price, increment, display_order)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query,
		it.AuctionID, it.Name, it.Description, it.Image, it.BasePrice, it.Increment, it.Order).
		Scan(&it.ID)
	return mapError(err, "item")
}

func (s *Storage) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	it := &models.Item{}
	if err := s.q.GetContext(ctx, it, itemSelect+` WHERE i.id=$1`, id); err != nil {
		return nil, mapError(err, "item")
	}
	return it, nil
}

// ListItems возвращает лоты; auctionID 0 означает все аукционы
func (s *Storage) ListItems(ctx context.Context, auctionID int64, limit, offset int) ([]models.Item, error) {
	items := []models.Item{}
	query := itemSelect + `
        WHERE ($1::bigint = 0 OR i.auction_id = $1::bigint)
        ORDER BY i.auction_id, i.display_order, i.id
        LIMIT $2 OFFSET $3`
	if err := s.q.SelectContext(ctx, &items, query, auctionID, limitArg(limit), offset); err != nil {
		return nil, mapError(err, "item")
	}
	return items, nil
}

// UpdateItem обновляет поля, которыми управляет админка. Поля продажи и
// wa_* пишет воркер мессенджера, они здесь не трогаются.
func (s *Storage) UpdateItem(ctx context.Context, it *models.Item) error {
	query := `
        UPDATE item
        SET auction_id=$1, name=$2, description=$3, image=$4, base_price=$5, increment=$6, display_order=$7
        WHERE id=$8`
	res, err := s.q.ExecContext(ctx, query,
		it.AuctionID, it.Name, it.Description, it.Image, it.BasePrice, it.Increment, it.Order, it.ID)
	if err != nil {
		return mapError(err, "item")
	}
	return expectAffected(res, "item")
}

// DeleteItem удаляет лот вместе со ставками
func (s *Storage) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM item WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "item")
	}
	return expectAffected(res, "item")
}
