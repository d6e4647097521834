package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resultado de un lote registrado en la auditoría.
const (
	OutcomeSent   = "SENT"   // el backend respondió (con o sin mensajes de error por línea)
	OutcomeFailed = "FAILED" // falla de transporte o del backend
)

// BatchSubmission registro de auditoría de un lote enviado. Solo se agrega,
// nunca se modifica.
type BatchSubmission struct {
	ID                string
	ViewID            string
	Username          string
	Action            string
	SellingPlant      string
	BuyingPlant       string
	MaterialGroup     string
	Period            string
	LineCount         int
	SkippedCount      int
	TotalQty          decimal.Decimal // suma de Cant. Salida de las líneas enviadas
	TotalAmount       decimal.Decimal
	Outcome           string
	NotificationCount int
	ErrorDetail       string
	CreatedAt         time.Time
}
