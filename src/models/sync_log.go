package models

import "time"

// SyncLog records one pass of the sync engine for a user. Purely an audit
// trail; the delete-then-insert refresh is not transactional across passes.
type SyncLog struct {
	ID         int       `db:"id"`
	UserID     string    `db:"user_id"`
	Source     string    `db:"source"`
	Status     string    `db:"status"`
	AssetCount int       `db:"asset_count"`
	SyncDate   time.Time `db:"sync_date"`
	CreatedAt  time.Time `db:"created_at"`
}
