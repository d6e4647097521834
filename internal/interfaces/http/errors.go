package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
)

// errorStatus estado HTTP y código por error de dominio, en orden de prioridad.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNoSelection, fiber.StatusUnprocessableEntity, "NO_SELECTION"},
	{domain.ErrPeriodRequired, fiber.StatusUnprocessableEntity, "PERIOD_REQUIRED"},
	{domain.ErrNoEligibleRows, fiber.StatusUnprocessableEntity, "NO_ELIGIBLE_ROWS"},
	{domain.ErrActionDisabled, fiber.StatusConflict, "ACTION_DISABLED"},
	{domain.ErrBatchInFlight, fiber.StatusConflict, "BATCH_IN_FLIGHT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrConfirmationExpired, fiber.StatusGone, "CONFIRMATION_EXPIRED"},
	{domain.ErrBackend, fiber.StatusBadGateway, "BACKEND_ERROR"},
}

// respondError traduce el error del caso de uso a dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(dto.ErrorResponse{Code: e.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores nombran el campo como en el JSON.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind parsea el cuerpo y lo valida. Si falla ya escribió la respuesta 400 y
// devuelve ok=false.
func bind(c *fiber.Ctx, in any) (ok bool, err error) {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(in); err != nil {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if err := validate.Struct(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fe.Field() + ": " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
