package database

import (
	"context"
	"errors"
	"fmt"

	"order-notifier/internal/models"
	"order-notifier/internal/recipient"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	listTokensByRoleQuery = `SELECT id::text AS id, COALESCE(fcm_token, '') AS fcm_token FROM users WHERE role = $1`
	getTokenByUserIDQuery = `SELECT id::text AS id, COALESCE(fcm_token, '') AS fcm_token FROM users WHERE id = $1::uuid`
)

// pgInvalidTextRepresentation - код ошибки PostgreSQL для значения, не приводимого к типу (не UUID).
const pgInvalidTextRepresentation = "22P02"

// Compile-time check to ensure pgUserRepository implements recipient.UserStore
var _ recipient.UserStore = (*pgUserRepository)(nil)

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed read-only user store.
func NewPgUserRepository(db DBTX, logger *zap.Logger) recipient.UserStore {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// ListTokensByRole returns the stored push tokens of every user with the given role.
func (r *pgUserRepository) ListTokensByRole(ctx context.Context, role string) ([]models.UserToken, error) {
	var rows []models.UserToken
	r.logger.Debug("Executing query", zap.String("query", listTokensByRoleQuery), zap.String("role", role))
	if err := pgxscan.Select(ctx, r.db, &rows, listTokensByRoleQuery, role); err != nil {
		r.logger.Error("Failed to list tokens by role from postgres", zap.Error(err), zap.String("role", role))
		return nil, fmt.Errorf("failed to list tokens by role from postgres: %w", err)
	}
	return rows, nil
}

// GetTokenByUserID returns the stored push token of one user.
func (r *pgUserRepository) GetTokenByUserID(ctx context.Context, userID string) (models.UserToken, error) {
	var row models.UserToken
	r.logger.Debug("Executing query", zap.String("query", getTokenByUserIDQuery), zap.String("userID", userID))
	err := pgxscan.Get(ctx, r.db, &row, getTokenByUserIDQuery, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found by ID", zap.String("userID", userID))
			return models.UserToken{}, models.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation {
			r.logger.Debug("User ID is not a UUID", zap.String("userID", userID))
			return models.UserToken{}, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user token from postgres", zap.Error(err), zap.String("userID", userID))
		return models.UserToken{}, fmt.Errorf("failed to get user token from postgres: %w", err)
	}
	return row, nil
}
