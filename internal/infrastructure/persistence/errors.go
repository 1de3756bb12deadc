package persistence

import (
	"context"
	"errors"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes that mean another transaction holds or changed the row
const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError maps a storage error to a domain error.
// Lock and serialization failures become CONCURRENCY_CONFLICT; anything else
// that is not already a domain error becomes PERSISTENCE_ERROR.
func translateError(err error, message string) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.WrapDomainError(shared.CodeNotFound, message, err)
	}
	if isConflict(err) {
		return shared.WrapDomainError(shared.CodeConcurrencyConflict, message, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return shared.WrapDomainError(shared.CodePersistence, message+": request aborted", err)
	}
	return shared.WrapDomainError(shared.CodePersistence, message, err)
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
