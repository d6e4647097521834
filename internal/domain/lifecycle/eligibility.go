package lifecycle

import "github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"

// Reason código estable de la primera condición que descalifica una fila.
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonUnknownAction          Reason = "unknown action"
	ReasonAlreadyInvoiced        Reason = "already invoiced"
	ReasonNotInvoiced            Reason = "not invoiced"
	ReasonQuantityMismatch       Reason = "quantity mismatch"
	ReasonOutOfTolerance         Reason = "out of tolerance"
	ReasonTaxReferenceAssigned   Reason = "tax reference assigned"
	ReasonTaxApproved            Reason = "tax submission approved"
	ReasonTaxNotSubmitted        Reason = "tax not submitted"
	ReasonTaxNotApproved         Reason = "tax submission not approved"
	ReasonVerificationRegistered Reason = "invoice verification registered"
)

var reasonMessages = map[Reason]string{
	ReasonUnknownAction:          "Acción desconocida",
	ReasonAlreadyInvoiced:        "Ya tiene factura SAP",
	ReasonNotInvoiced:            "No tiene factura SAP",
	ReasonQuantityMismatch:       "Diferencia entre Cant. Salida y Cant. Entrega",
	ReasonOutOfTolerance:         "Fuera de tolerancia",
	ReasonTaxReferenceAssigned:   "Ya tiene referencia SUNAT",
	ReasonTaxApproved:            "Envío a SUNAT ya aprobado",
	ReasonTaxNotSubmitted:        "No fue enviada a SUNAT",
	ReasonTaxNotApproved:         "Envío a SUNAT no aprobado",
	ReasonVerificationRegistered: "Ya tiene documento MIRO",
}

// Message texto para el operador.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// IsEligible indica si la fila puede participar en la acción.
func IsEligible(action Action, row *entity.DeliveryLine) bool {
	return ReasonIneligible(action, row) == ReasonNone
}

// ReasonIneligible devuelve la primera condición que falla, en el orden de las
// reglas de cada acción; ReasonNone si la fila es elegible.
func ReasonIneligible(action Action, row *entity.DeliveryLine) Reason {
	approved := row.TaxStatus == entity.TaxStatusApproved
	switch action {
	case ActionInvoice:
		switch {
		case row.InvoiceNumber != "":
			return ReasonAlreadyInvoiced
		case !row.QtyDelta.IsZero():
			return ReasonQuantityMismatch
		case !row.Tolerance.Acceptable():
			return ReasonOutOfTolerance
		}
	case ActionSubmitTax:
		switch {
		case row.InvoiceNumber == "":
			return ReasonNotInvoiced
		case row.TaxReference != "":
			return ReasonTaxReferenceAssigned
		case approved:
			return ReasonTaxApproved
		}
	case ActionResubmitTax:
		switch {
		case row.InvoiceNumber == "":
			return ReasonNotInvoiced
		case row.InvoiceVerificationDoc != "":
			return ReasonVerificationRegistered
		case row.TaxSubmissionStatus == "":
			return ReasonTaxNotSubmitted
		case approved:
			return ReasonTaxApproved
		}
	case ActionRegisterReceipt:
		switch {
		case row.InvoiceNumber == "":
			return ReasonNotInvoiced
		case row.InvoiceVerificationDoc != "":
			return ReasonVerificationRegistered
		case !approved:
			return ReasonTaxNotApproved
		case !row.QtyDelta.IsZero():
			return ReasonQuantityMismatch
		case !row.Tolerance.Acceptable():
			return ReasonOutOfTolerance
		}
	default:
		return ReasonUnknownAction
	}
	return ReasonNone
}

// Skipped fila seleccionada que no cumple la acción, con su motivo.
type Skipped struct {
	Row    *entity.DeliveryLine
	Reason Reason
}

// Partition separa una selección en filas elegibles y descartadas, conservando
// el orden de selección en ambas listas.
func Partition(action Action, rows []*entity.DeliveryLine) (eligible []*entity.DeliveryLine, skipped []Skipped) {
	for _, r := range rows {
		if reason := ReasonIneligible(action, r); reason != ReasonNone {
			skipped = append(skipped, Skipped{Row: r, Reason: reason})
			continue
		}
		eligible = append(eligible, r)
	}
	return eligible, skipped
}
