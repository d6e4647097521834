package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ToleranceState clasificación de la diferencia salida/entrega frente a la
// variación permitida. El backend la entrega ya calculada.
type ToleranceState int

const (
	WithinZero      ToleranceState = iota // Sin diferencia
	WithinTolerance                       // Dentro de tolerancia
	OutOfTolerance                        // Fuera de tolerancia
)

// String devuelve el nombre estable del estado (usado en JSON y logs).
func (t ToleranceState) String() string {
	switch t {
	case WithinZero:
		return "WithinZero"
	case WithinTolerance:
		return "WithinTolerance"
	case OutOfTolerance:
		return "OutOfTolerance"
	default:
		return "Unknown"
	}
}

// Acceptable indica si el estado permite facturar o registrar la recepción.
func (t ToleranceState) Acceptable() bool {
	return t == WithinZero || t == WithinTolerance
}

// TaxStatus clasificación del estado de envío a SUNAT, resuelta una sola vez
// al ingresar la fila (ver lifecycle.StatusCatalog).
type TaxStatus int

const (
	TaxStatusNone     TaxStatus = iota // Sin envío
	TaxStatusPending                   // Enviado, sin respuesta
	TaxStatusApproved                  // Aceptado
	TaxStatusRejected                  // Rechazado u observado
	TaxStatusError                     // Error técnico
	TaxStatusUnknown                   // Etiqueta fuera del catálogo
)

// String devuelve el nombre estable de la clasificación.
func (s TaxStatus) String() string {
	switch s {
	case TaxStatusNone:
		return "None"
	case TaxStatusPending:
		return "Pending"
	case TaxStatusApproved:
		return "Approved"
	case TaxStatusRejected:
		return "Rejected"
	case TaxStatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// DeliveryLine representa una posición de pedido con su entrega y el avance
// en el flujo factura → SUNAT → MIRO.
type DeliveryLine struct {
	OrderID       string // Pedido
	LineNo        string // Posición
	Delivery      string // Entrega
	CorrelationID string // Id corto asignado al armar el lote; vacío fuera de un envío

	SellingPlant  string // Centro suministrador
	BuyingPlant   string // Centro receptor
	Material      string
	MaterialGroup string
	Description   string
	Unit          string
	Currency      string
	DeliveryDate  time.Time

	QtyShipped     decimal.Decimal
	QtyReceived    decimal.Decimal
	QtyDelta       decimal.Decimal // Siempre QtyShipped - QtyReceived
	AmountShipped  decimal.Decimal
	AmountReceived decimal.Decimal
	AmountDelta    decimal.Decimal // Siempre AmountShipped - AmountReceived
	Tolerance      ToleranceState

	InvoiceNumber          string    // Factura SAP
	TaxSubmissionStatus    string    // Etiqueta de estado SUNAT tal como la envía el backend
	TaxStatus              TaxStatus // Clasificación de TaxSubmissionStatus
	TaxReference           string    // Referencia SUNAT
	InvoiceVerificationDoc string    // Documento MIRO
	LastEventMessage       string
	RegistrationStatus     string
	LastAction             string // Última acción del flujo aplicada por el backend
}

// Recompute recalcula las diferencias a partir de los valores de salida y entrega.
func (l *DeliveryLine) Recompute() {
	l.QtyDelta = l.QtyShipped.Sub(l.QtyReceived)
	l.AmountDelta = l.AmountShipped.Sub(l.AmountReceived)
}

// Key devuelve la clave de negocio pedido/posición.
func (l *DeliveryLine) Key() string {
	return BusinessKey(l.OrderID, l.LineNo)
}

// BusinessKey arma la clave de negocio usada como respaldo al conciliar.
func BusinessKey(orderID, lineNo string) string {
	return orderID + "/" + lineNo
}
