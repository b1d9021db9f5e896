package db

import (
	"context"

	"auctions/models"
)

// MessagingGroup (Группа в мессенджере)

func (s *Storage) CreateMessagingGroup(ctx context.Context, g *models.MessagingGroup) error {
	query := `INSERT INTO messaging_group (wa_chat_id, name) VALUES ($1, $2) RETURNING id`
	err := s.q.QueryRowxContext(ctx, query, g.WAChatID, g.Name).Scan(&g.ID)
	return mapError(err, "messaging group")
}

func (s *Storage) GetMessagingGroup(ctx context.Context, id int64) (*models.MessagingGroup, error) {
	g := &models.MessagingGroup{}
	if err := s.q.GetContext(ctx, g, `SELECT id, wa_chat_id, name FROM messaging_group WHERE id=$1`, id); err != nil {
		return nil, mapError(err, "messaging group")
	}
	return g, nil
}

func (s *Storage) ListMessagingGroups(ctx context.Context, limit, offset int) ([]models.MessagingGroup, error) {
	groups := []models.MessagingGroup{}
	query := `SELECT id, wa_chat_id, name FROM messaging_group ORDER BY id LIMIT $1 OFFSET $2`
	if err := s.q.SelectContext(ctx, &groups, query, limitArg(limit), offset); err != nil {
		return nil, mapError(err, "messaging group")
	}
	return groups, nil
}

func (s *Storage) UpdateMessagingGroup(ctx context.Context, g *models.MessagingGroup) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE messaging_group SET wa_chat_id=$1, name=$2 WHERE id=$3`, g.WAChatID, g.Name, g.ID)
	if err != nil {
		return mapError(err, "messaging group")
	}
	return expectAffected(res, "messaging group")
}

// DeleteMessagingGroup удаляет группу, у аукционов wa_group_id обнуляется
func (s *Storage) DeleteMessagingGroup(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM messaging_group WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "messaging group")
	}
	return expectAffected(res, "messaging group")
}
