package domain

import (
	"errors"
	"strings"
)

// Kind clasifica un error de negocio del motor de stock (no es un tipo del lenguaje).
type Kind string

// Tipos de error del ledger de inventario.
const (
	KindMissingSource       Kind = "MISSING_SOURCE"
	KindMissingDestination  Kind = "MISSING_DESTINATION"
	KindMissingWarehouse    Kind = "MISSING_WAREHOUSE"
	KindSameWarehouse       Kind = "SAME_WAREHOUSE"
	KindInvalidQuantity     Kind = "INVALID_QUANTITY"
	KindInvalidMovementType Kind = "INVALID_MOVEMENT_TYPE"
	KindMissingTraceability Kind = "MISSING_TRACEABILITY"
	KindExpiredStock        Kind = "EXPIRED_STOCK"
	KindUnknownProduct      Kind = "UNKNOWN_PRODUCT"
	KindUnknownWarehouse    Kind = "UNKNOWN_WAREHOUSE"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindConsistency         Kind = "CONSISTENCY_ERROR"
	KindLockTimeout         Kind = "LOCK_TIMEOUT"
	KindStorage             Kind = "STORAGE_ERROR"
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidInput        Kind = "INVALID_INPUT"
)

// Error es un error de dominio con tipo y detalle legible.
// errors.Is compara por Kind, de modo que los sentinelas de abajo sirven para cualquier detalle.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is permite errors.Is(err, domain.ErrInsufficientStock) sin importar el detalle.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// New construye un error de dominio.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap construye un error de dominio conservando la causa (típicamente de almacenamiento).
func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// Errores de dominio (sin dependencias externas).
var (
	ErrMissingSource       = &Error{Kind: KindMissingSource}
	ErrMissingDestination  = &Error{Kind: KindMissingDestination}
	ErrMissingWarehouse    = &Error{Kind: KindMissingWarehouse}
	ErrSameWarehouse       = &Error{Kind: KindSameWarehouse}
	ErrInvalidQuantity     = &Error{Kind: KindInvalidQuantity}
	ErrInvalidMovementType = &Error{Kind: KindInvalidMovementType}
	ErrMissingTraceability = &Error{Kind: KindMissingTraceability}
	ErrExpiredStock        = &Error{Kind: KindExpiredStock}
	ErrUnknownProduct      = &Error{Kind: KindUnknownProduct}
	ErrUnknownWarehouse    = &Error{Kind: KindUnknownWarehouse}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock}
	ErrConsistency         = &Error{Kind: KindConsistency}
	ErrLockTimeout         = &Error{Kind: KindLockTimeout}
	ErrStorage             = &Error{Kind: KindStorage}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
)

// ValidationError agrupa todos los problemas detectados antes de mutar el stock.
type ValidationError struct {
	Problems []*Error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Error())
	}
	return "movimiento inválido: " + strings.Join(parts, "; ")
}

// Unwrap expone cada problema para errors.Is / errors.As.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p)
	}
	return out
}

// Add acumula un problema.
func (e *ValidationError) Add(kind Kind, detail string) {
	e.Problems = append(e.Problems, New(kind, detail))
}

// OrNil devuelve nil si no hay problemas.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// KindOf devuelve el Kind del primer error de dominio en la cadena, o KindStorage si no hay ninguno.
func KindOf(err error) Kind {
	var ve *ValidationError
	if errors.As(err, &ve) && len(ve.Problems) > 0 {
		return ve.Problems[0].Kind
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// IsRetryable indica si el llamador puede reintentar el mismo movimiento (solo LockTimeout).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
