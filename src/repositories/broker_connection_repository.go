package repositories

import (
	"context"
	"errors"

	"server/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BrokerConnectionRepository interface {
	// GetByUserAndBroker returns the connection for a (user, broker) pair,
	// or nil when none exists.
	GetByUserAndBroker(ctx context.Context, userID, brokerID string) (*models.BrokerConnection, error)
	Create(ctx context.Context, conn *models.BrokerConnection) error
	// UpdateSecret replaces the stored secret and broker metadata and marks
	// the connection active again.
	UpdateSecret(ctx context.Context, userID, brokerID, secret string, brokerData map[string]interface{}) error
	// MergeBrokerData patches keys into broker_data without touching the rest
	// of the row.
	MergeBrokerData(ctx context.Context, userID, brokerID string, patch map[string]interface{}) error
	// Deactivate soft-deletes the connection, merging patch into broker_data.
	Deactivate(ctx context.Context, userID, brokerID string, patch map[string]interface{}) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type brokerConnectionRepo struct {
	db *pgxpool.Pool
}

func NewBrokerConnectionRepository(db *pgxpool.Pool) BrokerConnectionRepository {
	return &brokerConnectionRepo{db: db}
}

func (r *brokerConnectionRepo) GetByUserAndBroker(ctx context.Context, userID, brokerID string) (*models.BrokerConnection, error) {
	var conn models.BrokerConnection
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, broker_id, api_secret_encrypted, is_active, broker_data, created_at, updated_at
		 FROM broker_connections
		 WHERE user_id = $1 AND broker_id = $2`,
		userID, brokerID,
	).Scan(&conn.ID, &conn.UserID, &conn.BrokerID, &conn.APISecretEncrypted,
		&conn.IsActive, &conn.BrokerData, &conn.CreatedAt, &conn.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *brokerConnectionRepo) Create(ctx context.Context, conn *models.BrokerConnection) error {
	if conn.BrokerData == nil {
		conn.BrokerData = map[string]interface{}{}
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO broker_connections (user_id, broker_id, api_secret_encrypted, is_active, broker_data)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, broker_id) DO UPDATE
		 SET api_secret_encrypted = EXCLUDED.api_secret_encrypted,
		     is_active = EXCLUDED.is_active,
		     broker_data = EXCLUDED.broker_data,
		     updated_at = now()
		 RETURNING id`,
		conn.UserID, conn.BrokerID, conn.APISecretEncrypted, conn.IsActive, conn.BrokerData,
	).Scan(&conn.ID)
}

func (r *brokerConnectionRepo) UpdateSecret(ctx context.Context, userID, brokerID, secret string, brokerData map[string]interface{}) error {
	_, err := r.db.Exec(ctx,
		`UPDATE broker_connections
		 SET api_secret_encrypted = $3,
		     is_active = true,
		     broker_data = broker_data || $4,
		     updated_at = now()
		 WHERE user_id = $1 AND broker_id = $2`,
		userID, brokerID, secret, brokerData)
	return err
}

func (r *brokerConnectionRepo) MergeBrokerData(ctx context.Context, userID, brokerID string, patch map[string]interface{}) error {
	_, err := r.db.Exec(ctx,
		`UPDATE broker_connections
		 SET broker_data = broker_data || $3,
		     updated_at = now()
		 WHERE user_id = $1 AND broker_id = $2`,
		userID, brokerID, patch)
	return err
}

func (r *brokerConnectionRepo) Deactivate(ctx context.Context, userID, brokerID string, patch map[string]interface{}) error {
	_, err := r.db.Exec(ctx,
		`UPDATE broker_connections
		 SET is_active = false,
		     broker_data = broker_data || $3,
		     updated_at = now()
		 WHERE user_id = $1 AND broker_id = $2`,
		userID, brokerID, patch)
	return err
}

func (r *brokerConnectionRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM broker_connections WHERE user_id = $1`, userID,
	).Scan(&count)
	return count, err
}
