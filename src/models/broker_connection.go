package models

import "time"

// BrokerConnection is the secret-bearing record tying a dashboard user to an
// aggregator identity. One row per (user_id, broker_id); soft-deleted via
// is_active, never removed.
type BrokerConnection struct {
	ID                 int                    `db:"id"`
	UserID             string                 `db:"user_id"`
	BrokerID           string                 `db:"broker_id"`
	APISecretEncrypted string                 `db:"api_secret_encrypted"`
	IsActive           bool                   `db:"is_active"`
	BrokerData         map[string]interface{} `db:"broker_data"`
	CreatedAt          time.Time              `db:"created_at"`
	UpdatedAt          time.Time              `db:"updated_at"`
}

// IsMock reports whether the stored secret was synthesized locally after an
// aggregator failure.
func (c *BrokerConnection) IsMock() bool {
	if c.BrokerData == nil {
		return false
	}
	mock, _ := c.BrokerData["is_mock"].(bool)
	return mock
}

// AuthorizationID returns the brokerage authorization recorded by the
// connection callback, or "".
func (c *BrokerConnection) AuthorizationID() string {
	if c.BrokerData == nil {
		return ""
	}
	id, _ := c.BrokerData["authorization_id"].(string)
	return id
}
