package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/reference"
)

// ReferenceHandler listas de referencia para los filtros.
type ReferenceHandler struct {
	svc *reference.Service
}

// NewReferenceHandler construye el handler.
func NewReferenceHandler(svc *reference.Service) *ReferenceHandler {
	return &ReferenceHandler{svc: svc}
}

// Get godoc
// @Summary      Listas de referencia
// @Description  Plantas, grupos de material y estados. Se cargan del backend y se refrescan periódicamente.
// @Tags         references
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReferencesResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/references [get]
func (h *ReferenceHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "BACKEND_ERROR", Message: err.Error()})
	}
	return c.JSON(out)
}
