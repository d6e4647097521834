package entity

import "github.com/shopspring/decimal"

// BatchHeader cabecera del lote enviado al backend.
type BatchHeader struct {
	SellingPlant  string
	BuyingPlant   string
	MaterialGroup string
	Action        string
	Period        string // MM/AAAA, solo para INVOICE
}

// BatchLine foto completa de una línea en el lote de salida.
type BatchLine struct {
	CorrelationID          string
	OrderID                string
	LineNo                 string
	Delivery               string
	Material               string
	QtyShipped             decimal.Decimal
	QtyReceived            decimal.Decimal
	AmountShipped          decimal.Decimal
	AmountReceived         decimal.Decimal
	Tolerance              ToleranceState
	InvoiceNumber          string
	TaxSubmissionStatus    string
	TaxReference           string
	InvoiceVerificationDoc string
	RegistrationStatus     string
}

// BatchRequest lote de una acción: cabecera + líneas + lista de resultados vacía
// (la completa el backend).
type BatchRequest struct {
	Header  BatchHeader
	Lines   []BatchLine
	Results []BatchLine
}

// ResponseLine línea actualizada devuelta por el backend. Los campos nil no
// vinieron en la respuesta y no deben sobrescribir datos locales.
type ResponseLine struct {
	CorrelationID          string
	OrderID                string
	LineNo                 string
	InvoiceNumber          *string
	TaxSubmissionStatus    *string
	TaxReference           *string
	InvoiceVerificationDoc *string
	LastEventMessage       *string
	RegistrationStatus     *string
	LastAction             *string
}

// BatchMessage mensaje por línea (tipo de una letra + texto).
type BatchMessage struct {
	LineID string
	Type   string
	Text   string
}

// BatchResponse respuesta del backend a un lote.
type BatchResponse struct {
	Lines    []ResponseLine
	Messages []BatchMessage
}
