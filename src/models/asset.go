package models

import "time"

// Asset is any trackable item a user holds: cash, metals, vehicles, stocks,
// crypto, or a brokerage position projected into the same table by the sync
// engine. Type-specific attributes live in the open metadata map.
type Asset struct {
	ID               int                    `db:"id"`
	UserID           string                 `db:"user_id"`
	Name             string                 `db:"name"`
	Value            float64                `db:"value"`
	Description      string                 `db:"description"`
	Location         string                 `db:"location"`
	AcquisitionDate  time.Time              `db:"acquisition_date"`
	AcquisitionValue float64                `db:"acquisition_value"`
	CategoryID       int                    `db:"category_id"`
	IsLiability      bool                   `db:"is_liability"`
	Metadata         map[string]interface{} `db:"metadata"`
	CreatedAt        time.Time              `db:"created_at"`
}

// Source returns the metadata source tag ("snaptrade" for synced rows,
// "" for manual entries).
func (a *Asset) Source() string {
	if a.Metadata == nil {
		return ""
	}
	src, _ := a.Metadata["source"].(string)
	return src
}
