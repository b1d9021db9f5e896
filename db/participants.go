package db

import (
	"context"

	"auctions/models"
)

// Participant (Участник)

func (s *Storage) CreateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
        INSERT INTO participant (display_name, phone, wa_user_id)
        VALUES ($1, $2, $3)
        RETURNING id`
	err := s.q.QueryRowxContext(ctx, query, p.DisplayName, p.Phone, p.WAUserID).Scan(&p.ID)
	return mapError(err, "participant")
}

func (s *Storage) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	p := &models.Participant{}
	query := `SELECT id, display_name, phone, wa_user_id FROM participant WHERE id=$1`
	if err := s.q.GetContext(ctx, p, query, id); err != nil {
		return nil, mapError(err, "participant")
	}
	return p, nil
}

func (s *Storage) ListParticipants(ctx context.Context, limit, offset int) ([]models.Participant, error) {
	participants := []models.Participant{}
	query := `
        SELECT id, display_name, phone, wa_user_id FROM participant
        ORDER BY id
        LIMIT $1 OFFSET $2`
	if err := s.q.SelectContext(ctx, &participants, query, limitArg(limit), offset); err != nil {
		return nil, mapError(err, "participant")
	}
	return participants, nil
}

func (s *Storage) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	query := `
        UPDATE participant
        SET display_name=$1, phone=$2, wa_user_id=$3
        WHERE id=$4`
	res, err := s.q.ExecContext(ctx, query, p.DisplayName, p.Phone, p.WAUserID, p.ID)
	if err != nil {
		return mapError(err, "participant")
	}
	return expectAffected(res, "participant")
}

func (s *Storage) DeleteParticipant(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM participant WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "participant")
	}
	return expectAffected(res, "participant")
}
