package lifecycle

import (
	"fmt"
	"strconv"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
)

// ClearCorrelation borra los ids de correlación de las filas. Los ids solo
// valen dentro de un lote.
func ClearCorrelation(rows []*entity.DeliveryLine) {
	for _, r := range rows {
		r.CorrelationID = ""
	}
}

// Build arma el lote de la acción. Primero limpia los ids que hayan quedado en
// rows de un lote anterior y luego asigna "1", "2", ... a selected en el orden
// recibido, escribiéndolos en la fila para poder conciliar la respuesta.
// selected debe ser un subconjunto de rows (mismos punteros).
//
// El periodo de INVOICE lo valida quien invoca; aquí se copia tal cual.
func Build(action Action, header entity.BatchHeader, rows, selected []*entity.DeliveryLine) (entity.BatchRequest, error) {
	if !action.Valid() {
		return entity.BatchRequest{}, fmt.Errorf("%w: acción desconocida %q", domain.ErrInvalidInput, action)
	}
	if len(selected) == 0 {
		return entity.BatchRequest{}, domain.ErrNoSelection
	}
	member := make(map[*entity.DeliveryLine]bool, len(rows))
	for _, r := range rows {
		member[r] = true
	}
	seen := make(map[*entity.DeliveryLine]bool, len(selected))
	for _, r := range selected {
		if !member[r] {
			return entity.BatchRequest{}, fmt.Errorf("%w: la fila %s no pertenece a la vista", domain.ErrInvalidInput, r.Key())
		}
		if seen[r] {
			return entity.BatchRequest{}, fmt.Errorf("%w: la fila %s está seleccionada dos veces", domain.ErrInvalidInput, r.Key())
		}
		seen[r] = true
	}

	ClearCorrelation(rows)

	header.Action = string(action)
	req := entity.BatchRequest{
		Header:  header,
		Lines:   make([]entity.BatchLine, 0, len(selected)),
		Results: []entity.BatchLine{},
	}
	for i, r := range selected {
		r.CorrelationID = strconv.Itoa(i + 1)
		req.Lines = append(req.Lines, snapshot(r))
	}
	return req, nil
}

// snapshot copia todos los valores vigentes de la fila; el backend espera la
// línea completa aunque no haya cambiado.
func snapshot(r *entity.DeliveryLine) entity.BatchLine {
	return entity.BatchLine{
		CorrelationID:          r.CorrelationID,
		OrderID:                r.OrderID,
		LineNo:                 r.LineNo,
		Delivery:               r.Delivery,
		Material:               r.Material,
		QtyShipped:             r.QtyShipped,
		QtyReceived:            r.QtyReceived,
		AmountShipped:          r.AmountShipped,
		AmountReceived:         r.AmountReceived,
		Tolerance:              r.Tolerance,
		InvoiceNumber:          r.InvoiceNumber,
		TaxSubmissionStatus:    r.TaxSubmissionStatus,
		TaxReference:           r.TaxReference,
		InvoiceVerificationDoc: r.InvoiceVerificationDoc,
		RegistrationStatus:     r.RegistrationStatus,
	}
}
