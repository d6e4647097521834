package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/reference"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/worklist"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Worklist   *worklist.Service
	References *reference.Service
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Todas las rutas requieren Bearer Token; leer lo puede cualquier rol,
	// modificar vistas o enviar lotes solo el operador.
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	read := RequireRole(entity.RoleOperador, entity.RoleConsulta)
	act := RequireRole(entity.RoleOperador)

	refHandler := NewReferenceHandler(deps.References)
	api.Get("/references", read, refHandler.Get)

	h := NewWorklistHandler(deps.Worklist)
	views := api.Group("/views")
	views.Post("/", read, h.Open)
	views.Get("/:id", read, h.Get)
	views.Delete("/:id", read, h.Close)
	views.Post("/:id/query", read, h.Query)
	views.Get("/:id/rows", read, h.Rows)
	views.Put("/:id/stage", read, h.SelectStage)
	views.Put("/:id/search", read, h.Search)
	views.Delete("/:id/search", read, h.ClearSearch)
	views.Put("/:id/columns/:field", read, h.SetColumn)
	views.Delete("/:id/columns/:field", read, h.ClearColumn)
	views.Get("/:id/notifications", read, h.Notifications)

	views.Put("/:id/selection", act, h.Select)
	views.Post("/:id/actions/:action", act, h.Execute)
	views.Post("/:id/confirmations/:token", act, h.Confirm)

	api.Get("/audit/batches", read, h.RecentBatches)
}
