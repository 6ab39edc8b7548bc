package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lilis-erp/stock-ledger/internal/domain"
)

// Códigos SQLSTATE que el ledger traduce a errores de dominio.
const (
	codeLockNotAvailable  = "55P03"
	codeDeadlockDetected  = "40P01"
	codeCheckViolation    = "23514"
	codeForeignKeyViolate = "23503"
)

// translate convierte un error del driver en un error de dominio; op describe la operación.
// Los errores de dominio pasan sin cambios.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeDeadlockDetected:
			return domain.Wrap(domain.KindLockTimeout, op, err)
		case codeCheckViolation:
			return domain.Wrap(domain.KindInsufficientStock, op, err)
		case codeForeignKeyViolate:
			return domain.Wrap(domain.KindUnknownWarehouse, op, err)
		}
	}
	return domain.Wrap(domain.KindStorage, op, err)
}
