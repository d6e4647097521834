package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/worklist"
)

// WorklistHandler maneja las vistas de trabajo (protegido).
type WorklistHandler struct {
	svc *worklist.Service
}

// NewWorklistHandler construye el handler.
func NewWorklistHandler(svc *worklist.Service) *WorklistHandler {
	return &WorklistHandler{svc: svc}
}

// Open godoc
// @Summary      Abrir una vista de trabajo
// @Tags         views
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.ViewResponse
// @Router       /api/views [post]
func (h *WorklistHandler) Open(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(h.svc.OpenView(GetUsername(c)))
}

// Get godoc
// @Summary      Estado de la vista
// @Tags         views
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la vista"
// @Success      200  {object}  dto.ViewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/views/{id} [get]
func (h *WorklistHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.View(c.Params("id"), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar la vista
// @Tags         views
// @Security     Bearer
// @Param        id   path  string  true  "ID de la vista"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/views/{id} [delete]
func (h *WorklistHandler) Close(c *fiber.Ctx) error {
	if err := h.svc.CloseView(c.Params("id"), GetUsername(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Query godoc
// @Summary      Leer líneas de entrega
// @Description  Reemplaza las filas de la vista. El rango de fechas es obligatorio.
// @Tags         views
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID de la vista"
// @Param        body  body  dto.QueryRequest  true  "Criterios"
// @Success      200   {object}  dto.QueryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/views/{id}/query [post]
func (h *WorklistHandler) Query(c *fiber.Ctx) error {
	var in dto.QueryRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Query(c.UserContext(), c.Params("id"), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Rows godoc
// @Summary      Filas visibles
// @Tags         views
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la vista"
// @Success      200  {object}  dto.RowListResponse
// @Router       /api/views/{id}/rows [get]
func (h *WorklistHandler) Rows(c *fiber.Ctx) error {
	out, err := h.svc.Rows(c.Params("id"), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SelectStage godoc
// @Summary      Cambiar de pestaña
// @Tags         views
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID de la vista"
// @Param        body  body  dto.StageRequest  true  "Pestaña"
// @Success      200   {object}  dto.ViewResponse
// @Router       /api/views/{id}/stage [put]
func (h *WorklistHandler) SelectStage(c *fiber.Ctx) error {
	var in dto.StageRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.SelectStage(c.Params("id"), GetUsername(c), in.Stage)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Búsqueda libre
// @Tags         views
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la vista"
// @Param        body  body  dto.SearchRequest  true  "Texto"
// @Success      200   {object}  dto.ViewResponse
// @Router       /api/views/{id}/search [put]
func (h *WorklistHandler) Search(c *fiber.Ctx) error {
	var in dto.SearchRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Search(c.Params("id"), GetUsername(c), in.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ClearSearch quita la búsqueda libre.
func (h *WorklistHandler) ClearSearch(c *fiber.Ctx) error {
	out, err := h.svc.ClearSearch(c.Params("id"), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetColumn godoc
// @Summary      Filtro de columna
// @Tags         views
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                   true  "ID de la vista"
// @Param        field  path  string                   true  "Columna"
// @Param        body   body  dto.ColumnFilterRequest  true  "Operador y valores"
// @Success      200    {object}  dto.ViewResponse
// @Router       /api/views/{id}/columns/{field} [put]
func (h *WorklistHandler) SetColumn(c *fiber.Ctx) error {
	var in dto.ColumnFilterRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.SetColumn(c.Params("id"), GetUsername(c), c.Params("field"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ClearColumn quita el filtro de una columna.
func (h *WorklistHandler) ClearColumn(c *fiber.Ctx) error {
	out, err := h.svc.ClearColumn(c.Params("id"), GetUsername(c), c.Params("field"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Select godoc
// @Summary      Selección de filas
// @Description  Claves pedido/posición en el orden de marcado. Lista vacía limpia la selección.
// @Tags         views
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la vista"
// @Param        body  body  dto.SelectionRequest  true  "Claves"
// @Success      200   {object}  dto.ViewResponse
// @Router       /api/views/{id}/selection [put]
func (h *WorklistHandler) Select(c *fiber.Ctx) error {
	var in dto.SelectionRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Select(c.Params("id"), GetUsername(c), in.Keys)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Execute godoc
// @Summary      Ejecutar acción sobre la selección
// @Description  INVOICE exige periodo (MM/AAAA) o fecha de contabilización. Con filas no elegibles devuelve 202 y una confirmación pendiente.
// @Tags         actions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string             true   "ID de la vista"
// @Param        action  path  string             true   "INVOICE | SUBMIT_TAX | RESUBMIT_TAX | REGISTER_RECEIPT"
// @Param        body    body  dto.ActionRequest  false  "Periodo"
// @Success      200     {object}  dto.ActionResponse
// @Success      202     {object}  dto.ActionResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Failure      502     {object}  dto.ErrorResponse
// @Router       /api/views/{id}/actions/{action} [post]
func (h *WorklistHandler) Execute(c *fiber.Ctx) error {
	var in dto.ActionRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Execute(c.UserContext(), c.Params("id"), GetUsername(c), c.Params("action"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(actionStatus(out)).JSON(out)
}

// Confirm godoc
// @Summary      Responder la confirmación pendiente
// @Tags         actions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                   true  "ID de la vista"
// @Param        token  path  string                   true  "Token de confirmación"
// @Param        body   body  dto.ConfirmationRequest  true  "accept"
// @Success      200    {object}  dto.ActionResponse
// @Failure      410    {object}  dto.ErrorResponse
// @Router       /api/views/{id}/confirmations/{token} [post]
func (h *WorklistHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmationRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Confirm(c.UserContext(), c.Params("id"), GetUsername(c), c.Params("token"), *in.Accept)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Notifications godoc
// @Summary      Notificaciones del último lote
// @Tags         views
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la vista"
// @Success      200  {object}  dto.NotificationListResponse
// @Router       /api/views/{id}/notifications [get]
func (h *WorklistHandler) Notifications(c *fiber.Ctx) error {
	out, err := h.svc.Notifications(c.Params("id"), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecentBatches godoc
// @Summary      Bitácora de lotes enviados
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200    {object}  dto.BatchAuditListResponse
// @Router       /api/audit/batches [get]
func (h *WorklistHandler) RecentBatches(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	out, err := h.svc.RecentBatches(c.UserContext(), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func actionStatus(out *dto.ActionResponse) int {
	if out.Status == dto.ActionStatusConfirmationRequired {
		return fiber.StatusAccepted
	}
	return fiber.StatusOK
}
