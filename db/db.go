package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"auctions/internal/apperrors"
	"auctions/models"
)

// queryer общий интерфейс *sqlx.DB и *sqlx.Tx
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type Storage struct {
	db *sqlx.DB
	q  queryer
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db, q: db}
}

// PoolConfig параметры пула соединений
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect открывает соединение с Postgres и проверяет его
func Connect(ctx context.Context, connString string, pool PoolConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.ConnectContext(ctx, "postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		dbConn.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		dbConn.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		dbConn.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return dbConn, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx операции, доступные внутри транзакции
type Tx interface {
	GetAuction(ctx context.Context, id int64) (*models.Auction, error)
	CreateAuction(ctx context.Context, a *models.Auction) error
	CreateItem(ctx context.Context, it *models.Item) error
}

// WithinTx выполняет fn в одной транзакции. Любая ошибка из fn
// откатывает все изменения.
func (s *Storage) WithinTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Storage{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// mapError переводит ошибки драйвера в apperrors
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("%s not found", entity)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperrors.Conflict("%s already exists (%s)", entity, pqErr.Constraint).WithCause(err)
		case "23503":
			return apperrors.Validation("%s references a missing entity (%s)", entity, pqErr.Constraint).WithCause(err)
		case "23514", "22003":
			return apperrors.Validation("%s violates a constraint: %s", entity, pqErr.Message).WithCause(err)
		}
	}
	return apperrors.Internal("%s storage failure", entity).WithCause(err)
}

// expectAffected возвращает NotFound, если UPDATE/DELETE не затронул строк
func expectAffected(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, entity)
	}
	if n == 0 {
		return apperrors.NotFound("%s not found", entity)
	}
	return nil
}

// limitArg 0 означает "без ограничения" (LIMIT NULL)
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
