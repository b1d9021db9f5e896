package db

import (
	"context"

	"auctions/models"
)

// Rule (Правило аукциона)

func (s *Storage) CreateRule(ctx context.Context, r *models.Rule) error {
	query := `INSERT INTO auction_rule (auction_id, key, value) VALUES ($1, $2, $3) RETURNING id`
	err := s.q.QueryRowxContext(ctx, query, r.AuctionID, r.Key, r.Value).Scan(&r.ID)
	return mapError(err, "rule")
}

func (s *Storage) GetRule(ctx context.Context, id int64) (*models.Rule, error) {
	r := &models.Rule{}
	if err := s.q.GetContext(ctx, r, `SELECT id, auction_id, key, value FROM auction_rule WHERE id=$1`, id); err != nil {
		return nil, mapError(err, "rule")
	}
	return r, nil
}

// ListRules правила аукциона; auctionID 0 означает все
func (s *Storage) ListRules(ctx context.Context, auctionID int64) ([]models.Rule, error) {
	rules := []models.Rule{}
	query := `
        SELECT id, auction_id, key, value FROM auction_rule
        WHERE ($1::bigint = 0 OR auction_id = $1::bigint)
        ORDER BY auction_id, key`
	if err := s.q.SelectContext(ctx, &rules, query, auctionID); err != nil {
		return nil, mapError(err, "rule")
	}
	return rules, nil
}

func (s *Storage) UpdateRule(ctx context.Context, r *models.Rule) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE auction_rule SET auction_id=$1, key=$2, value=$3 WHERE id=$4`,
		r.AuctionID, r.Key, r.Value, r.ID)
	if err != nil {
		return mapError(err, "rule")
	}
	return expectAffected(res, "rule")
}

func (s *Storage) DeleteRule(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM auction_rule WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "rule")
	}
	return expectAffected(res, "rule")
}

// MessageTemplate (Шаблон сообщения)

func (s *Storage) CreateMessageTemplate(ctx context.Context, m *models.MessageTemplate) error {
	query := `INSERT INTO message_template (auction_id, key, template) VALUES ($1, $2, $3) RETURNING id`
	err := s.q.QueryRowxContext(ctx, query, m.AuctionID, m.Key, m.Template).Scan(&m.ID)
	return mapError(err, "message template")
}

func (s *Storage) GetMessageTemplate(ctx context.Context, id int64) (*models.MessageTemplate, error) {
	m := &models.MessageTemplate{}
	query := `SELECT id, auction_id, key, template FROM message_template WHERE id=$1`
	if err := s.q.GetContext(ctx, m, query, id); err != nil {
		return nil, mapError(err, "message template")
	}
	return m, nil
}

func (s *Storage) ListMessageTemplates(ctx context.Context, auctionID int64) ([]models.MessageTemplate, error) {
	templates := []models.MessageTemplate{}
	query := `
        SELECT id, auction_id, key, template FROM message_template
        WHERE ($1::bigint = 0 OR auction_id = $1::bigint)
        ORDER BY auction_id, key`
	if err := s.q.SelectContext(ctx, &templates, query, auctionID); err != nil {
		return nil, mapError(err, "message template")
	}
	return templates, nil
}

func (s *Storage) UpdateMessageTemplate(ctx context.Context, m *models.MessageTemplate) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE message_template SET auction_id=$1, key=$2, template=$3 WHERE id=$4`,
		m.AuctionID, m.Key, m.Template, m.ID)
	if err != nil {
		return mapError(err, "message template")
	}
	return expectAffected(res, "message template")
}

func (s *Storage) DeleteMessageTemplate(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM message_template WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "message template")
	}
	return expectAffected(res, "message template")
}
