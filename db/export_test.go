package db

import (
	"context"

	"github.com/shopspring/decimal"
)

// InsertBidForTest вставляет ставку так, как это делает воркер мессенджера
func (s *Storage) InsertBidForTest(ctx context.Context, itemID, participantID int64, amount decimal.Decimal) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO bid (item_id, participant_id, amount) VALUES ($1, $2, $3)`, itemID, participantID, amount)
	return mapError(err, "bid")
}
