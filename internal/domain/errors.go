package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInvalidRecord       = errors.New("registro del backend inválido")
	ErrNoSelection         = errors.New("no se han seleccionado registros para procesar")
	ErrNoEligibleRows      = errors.New("ninguno de los registros seleccionados cumple las condiciones de la acción")
	ErrPeriodRequired      = errors.New("el periodo contable (MM/AAAA) es obligatorio para facturar")
	ErrActionDisabled      = errors.New("la acción no está habilitada en la pestaña actual")
	ErrBatchInFlight       = errors.New("ya existe un envío en curso para esta vista")
	ErrConfirmationExpired = errors.New("la confirmación no existe o expiró")
	ErrBackend             = errors.New("error al comunicarse con el backend")
)
