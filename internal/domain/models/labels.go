package models

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Labels maps a TEXT[] column. Writes pass the slice straight to pgx.
// pgtype.Map is not safe for concurrent use, so each scan gets its own.
type Labels []string

func (l *Labels) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var out []string
	if err := pgtype.NewMap().SQLScanner(&out).Scan(src); err != nil {
		return err
	}
	*l = out
	return nil
}

func (l Labels) Has(label string) bool {
	for _, x := range l {
		if x == label {
			return true
		}
	}
	return false
}
