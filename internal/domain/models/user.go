package models

import "database/sql"

type User struct {
	ID    int64          `db:"id" json:"id"`
	Login string         `db:"login" json:"login"`
	Name  sql.NullString `db:"name" json:"-"`
	Email sql.NullString `db:"email" json:"-"`
}
