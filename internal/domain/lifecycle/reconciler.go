package lifecycle

import (
	"github.com/rs/zerolog"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
)

// RowIndex índice de las filas locales por id de correlación y por clave de negocio.
type RowIndex struct {
	byID  map[string]*entity.DeliveryLine
	byKey map[string]*entity.DeliveryLine
}

// NewRowIndex indexa las filas. Las filas sin id solo entran por clave de negocio.
func NewRowIndex(rows []*entity.DeliveryLine) *RowIndex {
	idx := &RowIndex{
		byID:  make(map[string]*entity.DeliveryLine, len(rows)),
		byKey: make(map[string]*entity.DeliveryLine, len(rows)),
	}
	for _, r := range rows {
		if r.CorrelationID != "" {
			idx.byID[r.CorrelationID] = r
		}
		idx.byKey[r.Key()] = r
	}
	return idx
}

// ByCorrelation busca por id de correlación.
func (x *RowIndex) ByCorrelation(id string) (*entity.DeliveryLine, bool) {
	if id == "" {
		return nil, false
	}
	r, ok := x.byID[id]
	return r, ok
}

// ByKey busca por pedido/posición.
func (x *RowIndex) ByKey(orderID, lineNo string) (*entity.DeliveryLine, bool) {
	if orderID == "" {
		return nil, false
	}
	r, ok := x.byKey[entity.BusinessKey(orderID, lineNo)]
	return r, ok
}

// Reconciliation resultado de aplicar una respuesta.
type Reconciliation struct {
	Updated   []*entity.DeliveryLine
	Unmatched []entity.ResponseLine
	// Matched fila local por id de la línea de respuesta (eco o id del backend).
	Matched map[string]*entity.DeliveryLine
	Index   *RowIndex
}

// Reconciler aplica la respuesta de un lote sobre las filas locales.
type Reconciler struct {
	catalog *StatusCatalog
	log     zerolog.Logger
}

// NewReconciler construye el reconciliador; catalog nil usa el catálogo por defecto.
func NewReconciler(catalog *StatusCatalog, log zerolog.Logger) *Reconciler {
	if catalog == nil {
		catalog = DefaultStatusCatalog()
	}
	return &Reconciler{catalog: catalog, log: log}
}

// Apply busca cada línea de respuesta por id de correlación y, si no aparece,
// por pedido/posición. Solo se sobrescriben los campos presentes (no nil); las
// líneas sin fila local se descartan con un log. Aplicar la misma respuesta dos
// veces deja el mismo estado.
func (rc *Reconciler) Apply(resp *entity.BatchResponse, rows []*entity.DeliveryLine) Reconciliation {
	idx := NewRowIndex(rows)
	out := Reconciliation{Matched: make(map[string]*entity.DeliveryLine), Index: idx}
	if resp == nil {
		return out
	}
	touched := make(map[*entity.DeliveryLine]bool)
	for _, rl := range resp.Lines {
		row, ok := idx.ByCorrelation(rl.CorrelationID)
		if !ok {
			row, ok = idx.ByKey(rl.OrderID, rl.LineNo)
		}
		if !ok {
			rc.log.Warn().
				Str("correlation_id", rl.CorrelationID).
				Str("order_id", rl.OrderID).
				Str("line_no", rl.LineNo).
				Msg("línea de respuesta sin fila local, se descarta")
			out.Unmatched = append(out.Unmatched, rl)
			continue
		}
		rc.merge(row, rl)
		if rl.CorrelationID != "" {
			out.Matched[rl.CorrelationID] = row
		}
		if !touched[row] {
			touched[row] = true
			out.Updated = append(out.Updated, row)
		}
	}
	return out
}

func (rc *Reconciler) merge(row *entity.DeliveryLine, rl entity.ResponseLine) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&row.InvoiceNumber, rl.InvoiceNumber)
	set(&row.TaxReference, rl.TaxReference)
	set(&row.InvoiceVerificationDoc, rl.InvoiceVerificationDoc)
	set(&row.LastEventMessage, rl.LastEventMessage)
	set(&row.RegistrationStatus, rl.RegistrationStatus)
	set(&row.LastAction, rl.LastAction)
	if rl.TaxSubmissionStatus != nil {
		row.TaxSubmissionStatus = *rl.TaxSubmissionStatus
		row.TaxStatus = rc.catalog.Classify(row.TaxSubmissionStatus)
	}
}
