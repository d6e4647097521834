package repository

import (
	"context"
	"time"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

// DocumentQuery criterios de lectura de líneas de entrega. El rango de fechas
// de entrega es obligatorio; el resto de facetas es opcional.
type DocumentQuery struct {
	SellingPlant         string
	BuyingPlant          string
	MaterialGroup        string
	DateFrom             time.Time
	DateTo               time.Time
	RegistrationStatuses []string // OR entre valores
	ActionStatuses       []string // OR entre valores
	Top                  int      // 0 = sin límite
}

// Filter expresa las facetas de la consulta como un filtro del motor. El
// adaptador lo traduce a su lenguaje de consulta ($filter en OData).
func (q DocumentQuery) Filter() lifecycle.FilterSpec {
	var groups []lifecycle.Group
	eq := []lifecycle.Condition{}
	if q.SellingPlant != "" {
		eq = append(eq, lifecycle.Eq(lifecycle.FieldSellingPlant, q.SellingPlant))
	}
	if q.BuyingPlant != "" {
		eq = append(eq, lifecycle.Eq(lifecycle.FieldBuyingPlant, q.BuyingPlant))
	}
	if q.MaterialGroup != "" {
		eq = append(eq, lifecycle.Eq(lifecycle.FieldMaterialGroup, q.MaterialGroup))
	}
	if len(eq) > 0 {
		groups = append(groups, lifecycle.AllOf(eq...))
	}
	if !q.DateFrom.IsZero() || !q.DateTo.IsZero() {
		groups = append(groups, lifecycle.AllOf(lifecycle.Between(lifecycle.FieldDeliveryDate,
			q.DateFrom.Format("2006-01-02"), q.DateTo.Format("2006-01-02"))))
	}
	if g := anyEq(lifecycle.FieldRegistrationStatus, q.RegistrationStatuses); !g.Empty() {
		groups = append(groups, g)
	}
	if g := anyEq(lifecycle.FieldTaxSubmissionStatus, q.ActionStatuses); !g.Empty() {
		groups = append(groups, g)
	}
	return lifecycle.FilterSpec{Columns: groups}
}

func anyEq(f lifecycle.Field, values []string) lifecycle.Group {
	conds := make([]lifecycle.Condition, 0, len(values))
	for _, v := range values {
		if v != "" {
			conds = append(conds, lifecycle.Eq(f, v))
		}
	}
	return lifecycle.AnyOf(conds...)
}

// DocumentStore puerto hacia el almacén externo de documentos (backend SAP).
// El motor nunca depende del adaptador concreto.
type DocumentStore interface {
	// Listas de referencia para los filtros de la cabecera.
	ListMaterialGroups(ctx context.Context) ([]entity.ReferenceItem, error)
	ListSellingPlants(ctx context.Context) ([]entity.ReferenceItem, error)
	ListBuyingPlants(ctx context.Context) ([]entity.ReferenceItem, error)
	ListRegistrationStatuses(ctx context.Context) ([]entity.ReferenceItem, error)

	// ListActionStatuses estados posibles del resultado de una acción
	// (ej. estados de envío a SUNAT para SUBMIT_TAX).
	ListActionStatuses(ctx context.Context, action string) ([]entity.ActionStatus, error)

	// QueryLines devuelve los registros crudos; la normalización la hace el motor.
	QueryLines(ctx context.Context, q DocumentQuery) ([]lifecycle.RawRecord, error)

	// SubmitBatch envía el lote en una sola llamada. Un error significa que el
	// lote completo falló; los resultados por línea vienen en la respuesta.
	SubmitBatch(ctx context.Context, req entity.BatchRequest) (*entity.BatchResponse, error)
}
