package repositories

import (
	"context"
	"errors"

	"server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SyncLogRepository interface {
	Create(ctx context.Context, log *models.SyncLog) error
	GetLatestByUser(ctx context.Context, userID, source string) (*models.SyncLog, error)
}

type syncLogRepo struct {
	db *pgxpool.Pool
}

func NewSyncLogRepository(db *pgxpool.Pool) SyncLogRepository {
	return &syncLogRepo{db: db}
}

func (r *syncLogRepo) Create(ctx context.Context, log *models.SyncLog) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO sync_logs (user_id, source, status, asset_count, sync_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		log.UserID, log.Source, log.Status, log.AssetCount, log.SyncDate,
	).Scan(&log.ID)
}

func (r *syncLogRepo) GetLatestByUser(ctx context.Context, userID, source string) (*models.SyncLog, error) {
	var log models.SyncLog
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, source, status, asset_count, sync_date, created_at
		 FROM sync_logs
		 WHERE user_id = $1 AND source = $2
		 ORDER BY sync_date DESC
		 LIMIT 1`,
		userID, source,
	).Scan(&log.ID, &log.UserID, &log.Source, &log.Status, &log.AssetCount,
		&log.SyncDate, &log.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}
