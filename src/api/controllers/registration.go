package controllers

import (
	"context"
	"time"

	"server/src/clients/snaptrade"
	"server/src/models"
	"server/src/repositories"
	"server/src/schemas"

	"github.com/google/uuid"
)

type RegistrationControllerI interface {
	RegisterUser(ctx context.Context, userID string) (*schemas.AggregatorUser, error)
	DeleteUser(ctx context.Context, userID string) error
	EnsureRegistered(ctx context.Context, userID string) (*models.BrokerConnection, error)
}

type RegistrationController struct {
	Aggregator  snaptrade.Client
	Connections repositories.BrokerConnectionRepository
}

func NewRegistrationController(aggregator snaptrade.Client, connections repositories.BrokerConnectionRepository) *RegistrationController {
	return &RegistrationController{Aggregator: aggregator, Connections: connections}
}

// RegisterUser ensures the user has an aggregator identity. Registration is
// idempotent: an existing stored secret is reused, never re-issued. When the
// aggregator fails, a locally generated secret is persisted with an is_mock
// marker so the rest of the pipeline keeps working in mock mode.
func (c *RegistrationController) RegisterUser(ctx context.Context, userID string) (*schemas.AggregatorUser, error) {
	conn, err := c.EnsureRegistered(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &schemas.AggregatorUser{UserID: userID, UserSecret: conn.APISecretEncrypted}, nil
}

// EnsureRegistered returns the user's broker connection, registering with
// the aggregator first when none exists.
func (c *RegistrationController) EnsureRegistered(ctx context.Context, userID string) (*models.BrokerConnection, error) {
	logger := loggerFor(ctx)

	conn, err := c.Connections.GetByUserAndBroker(ctx, userID, snaptrade.BrokerID)
	if err != nil {
		return nil, err
	}
	if conn != nil && conn.APISecretEncrypted != "" {
		return conn, nil
	}

	secret := ""
	isMock := false
	registered, err := c.Aggregator.RegisterUser(ctx, userID)
	if err != nil || registered == nil || registered.UserSecret == "" {
		logger.WithField("user_id", userID).WithError(err).
			Warn("aggregator registration failed, falling back to mock secret")
		secret = "mock-user-secret-" + uuid.NewString()
		isMock = true
	} else {
		secret = registered.UserSecret
	}

	brokerData := map[string]interface{}{
		"registered_at": time.Now().UTC().Format(time.RFC3339),
		"is_mock":       isMock,
	}

	if conn != nil {
		if err := c.Connections.UpdateSecret(ctx, userID, snaptrade.BrokerID, secret, brokerData); err != nil {
			return nil, err
		}
		conn.APISecretEncrypted = secret
		for k, v := range brokerData {
			if conn.BrokerData == nil {
				conn.BrokerData = map[string]interface{}{}
			}
			conn.BrokerData[k] = v
		}
		conn.IsActive = true
		return conn, nil
	}

	conn = &models.BrokerConnection{
		UserID:             userID,
		BrokerID:           snaptrade.BrokerID,
		APISecretEncrypted: secret,
		IsActive:           true,
		BrokerData:         brokerData,
	}
	if err := c.Connections.Create(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// DeleteUser removes the aggregator identity best-effort and soft-deletes
// the local record. Local state is authoritative: aggregator failures are
// logged and ignored, never block disconnection.
func (c *RegistrationController) DeleteUser(ctx context.Context, userID string) error {
	logger := loggerFor(ctx)

	conn, err := c.Connections.GetByUserAndBroker(ctx, userID, snaptrade.BrokerID)
	if err != nil {
		return err
	}

	if conn != nil && conn.APISecretEncrypted != "" {
		if err := c.Aggregator.DeleteUser(ctx, userID, conn.APISecretEncrypted); err != nil {
			logger.WithField("user_id", userID).WithError(err).
				Warn("aggregator user deletion with secret failed, retrying without")
			if err := c.Aggregator.DeleteUser(ctx, userID, ""); err != nil {
				logger.WithField("user_id", userID).WithError(err).
					Warn("aggregator user deletion without secret failed")
			}
		}
	}

	if conn == nil {
		return nil
	}
	return c.Connections.Deactivate(ctx, userID, snaptrade.BrokerID, map[string]interface{}{
		"deleted_at":   time.Now().UTC().Format(time.RFC3339),
		"user_deleted": true,
	})
}
