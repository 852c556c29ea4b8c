package models

import (
	"database/sql"
	"time"
)

// SyncRun is one pass of the GitHub scraper.
type SyncRun struct {
	ID         int            `db:"id" json:"id"`
	Successful bool           `db:"successful" json:"successful"`
	RanAt      time.Time      `db:"ran_at" json:"ran_at"`
	Message    sql.NullString `db:"message" json:"-"`
}
