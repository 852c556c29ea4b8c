package repo

import (
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgconn"
	"pollbot/internal/apperrors"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translatePgError maps constraint violations to apperrors. A non-nil
// onUnique is wrapped alongside ErrUniqueViolation.
func translatePgError(err error, onUnique error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		if onUnique != nil {
			return fmt.Errorf("%w: %w", onUnique, apperrors.ErrUniqueViolation)
		}
		return apperrors.ErrUniqueViolation
	case foreignKeyViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrForeignKeyViolation, pgErr.ConstraintName)
	}

	return err
}
