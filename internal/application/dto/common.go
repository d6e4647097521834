package dto

// DefaultPageLimit cantidad de registros cuando la petición no indica límite.
const DefaultPageLimit = 20

// PageRequest límite de los listados de bitácora (siempre los más recientes).
type PageRequest struct {
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// DefaultPage aplica DefaultPageLimit si no se envió límite.
func (p *PageRequest) DefaultPage() {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
}

// PageResponse metadatos del listado devuelto.
type PageResponse struct {
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable para el cliente
// (VALIDATION, ACTION_DISABLED, BACKEND_ERROR, ...).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
