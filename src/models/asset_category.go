package models

import "time"

// AssetCategory is a static lookup seeded by migration.
type AssetCategory struct {
	ID        int       `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}
