package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lilis-erp/stock-ledger/internal/application/dto"
	"github.com/lilis-erp/stock-ledger/internal/domain"
)

// statusFor mapea el tipo de error de dominio a un código HTTP.
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindMissingSource, domain.KindMissingDestination, domain.KindMissingWarehouse,
		domain.KindSameWarehouse, domain.KindInvalidQuantity, domain.KindInvalidMovementType,
		domain.KindMissingTraceability, domain.KindExpiredStock, domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindUnknownProduct, domain.KindUnknownWarehouse, domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindInsufficientStock:
		return fiber.StatusConflict
	case domain.KindLockTimeout:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con dto.ErrorResponse. Un ValidationError lista todos sus problemas;
// el status lo decide el primero.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	resp := dto.ErrorResponse{Code: string(kind), Message: err.Error()}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Message = "movimiento inválido"
		for _, p := range ve.Problems {
			resp.Problems = append(resp.Problems, dto.ProblemDTO{Kind: string(p.Kind), Detail: p.Detail})
		}
		// Con varios problemas prima el de validación sobre el de referencia inexistente.
		for _, p := range ve.Problems {
			if statusFor(p.Kind) == fiber.StatusBadRequest {
				kind = p.Kind
				break
			}
		}
	}

	status := statusFor(kind)
	if status == fiber.StatusInternalServerError {
		// No exponer detalles de almacenamiento.
		resp.Message = "error interno del ledger"
	}
	return c.Status(status).JSON(resp)
}
