package lifecycle

import (
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/pkg/sunat"
)

// StatusCatalog tabla de etiquetas de estado SUNAT → clasificación.
// La búsqueda es por igualdad exacta de la etiqueta; nunca por prefijo ni por
// subcadena. Un valor de StatusCatalog no se modifica tras construirse.
type StatusCatalog struct {
	byLabel map[string]entity.TaxStatus
}

// DefaultStatusCatalog catálogo con las etiquetas conocidas de pkg/sunat.
func DefaultStatusCatalog() *StatusCatalog {
	c := &StatusCatalog{byLabel: make(map[string]entity.TaxStatus, len(sunat.DefaultStatusLabels))}
	for code, label := range sunat.DefaultStatusLabels {
		c.byLabel[label] = classifyCode(code)
	}
	return c
}

// NewStatusCatalog construye el catálogo a partir de la lista de referencia de
// estados por acción. approvedLabel, si no está vacío, se agrega como etiqueta
// aprobada (permite alinear la etiqueta canónica por configuración).
func NewStatusCatalog(statuses []entity.ActionStatus, approvedLabel string) *StatusCatalog {
	c := DefaultStatusCatalog()
	for _, st := range statuses {
		if st.Label == "" {
			continue
		}
		c.byLabel[st.Label] = classifyCode(st.Code)
	}
	if approvedLabel != "" {
		c.byLabel[approvedLabel] = entity.TaxStatusApproved
	}
	return c
}

// Classify resuelve la etiqueta. Vacío → TaxStatusNone; fuera de tabla → TaxStatusUnknown.
func (c *StatusCatalog) Classify(label string) entity.TaxStatus {
	if label == "" {
		return entity.TaxStatusNone
	}
	if st, ok := c.byLabel[label]; ok {
		return st
	}
	return entity.TaxStatusUnknown
}

// IsApproved indica si la etiqueta es una etiqueta de aprobación registrada.
func (c *StatusCatalog) IsApproved(label string) bool {
	return c.Classify(label) == entity.TaxStatusApproved
}

// Len cantidad de etiquetas registradas.
func (c *StatusCatalog) Len() int {
	return len(c.byLabel)
}

func classifyCode(code string) entity.TaxStatus {
	switch code {
	case sunat.StatusCodeApproved:
		return entity.TaxStatusApproved
	case sunat.StatusCodePending:
		return entity.TaxStatusPending
	case sunat.StatusCodeRejected, sunat.StatusCodeObserved:
		return entity.TaxStatusRejected
	case sunat.StatusCodeError:
		return entity.TaxStatusError
	}
	return entity.TaxStatusUnknown
}
