package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Entradas ──────────────────────────────────────────────────────────────────

// QueryRequest criterios de lectura de la vista. Las plantas y el grupo de
// material forman la cabecera de los lotes que se envíen desde la vista.
type QueryRequest struct {
	SellingPlant         string   `json:"selling_plant" validate:"required,max=10"`
	BuyingPlant          string   `json:"buying_plant" validate:"required,max=10"`
	MaterialGroup        string   `json:"material_group" validate:"required,max=20"`
	DateFrom             string   `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo               string   `json:"date_to" validate:"required,datetime=2006-01-02"`
	RegistrationStatuses []string `json:"registration_statuses" validate:"omitempty,dive,max=40"`
	ActionStatuses       []string `json:"action_statuses" validate:"omitempty,dive,max=60"`
}

// StageRequest cambio de pestaña (clave o nombre de etapa).
type StageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

// SearchRequest búsqueda libre sobre pedido, material, descripción y factura.
type SearchRequest struct {
	Query string `json:"query" validate:"max=100"`
}

// ColumnFilterRequest filtro de una columna: EQ combina valores con OR, NE los excluye.
type ColumnFilterRequest struct {
	Operator string   `json:"operator" validate:"required,oneof=EQ NE"`
	Values   []string `json:"values" validate:"required,min=1,dive,max=200"`
}

// SelectionRequest claves pedido/posición en el orden en que se marcaron.
type SelectionRequest struct {
	Keys []string `json:"keys" validate:"dive,required"`
}

// ActionRequest datos opcionales de una acción. INVOICE exige periodo
// (MM/AAAA) o fecha de contabilización (AAAA-MM-DD).
type ActionRequest struct {
	Period      string `json:"period" validate:"omitempty,len=7"`
	PostingDate string `json:"posting_date" validate:"omitempty,datetime=2006-01-02"`
}

// ConfirmationRequest respuesta del operador al aviso de filas no elegibles.
type ConfirmationRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// ── Salidas ───────────────────────────────────────────────────────────────────

// ViewResponse estado de una vista.
type ViewResponse struct {
	ID                  string                `json:"id"`
	Stage               string                `json:"stage"`
	StageName           string                `json:"stage_name"`
	SelectionMode       string                `json:"selection_mode"`
	VisibleFields       []string              `json:"visible_fields"`
	Actions             map[string]bool       `json:"actions"`
	SelectedCount       int                   `json:"selected_count"`
	RowCount            int                   `json:"row_count"`
	VisibleCount        int                   `json:"visible_count"`
	Search              string                `json:"search,omitempty"`
	SellingPlant        string                `json:"selling_plant,omitempty"`
	BuyingPlant         string                `json:"buying_plant,omitempty"`
	MaterialGroup       string                `json:"material_group,omitempty"`
	InFlight            bool                  `json:"in_flight"`
	PendingConfirmation *ConfirmationResponse `json:"pending_confirmation,omitempty"`
	NotificationCount   int                   `json:"notification_count"`
	LastUsedAt          time.Time             `json:"last_used_at"`
}

// QueryResponse resultado de una lectura.
type QueryResponse struct {
	Loaded   int          `json:"loaded"`
	Rejected int          `json:"rejected"`
	View     ViewResponse `json:"view"`
}

// RowResponse fila de la tabla.
type RowResponse struct {
	Key                    string          `json:"key"`
	OrderID                string          `json:"order_id"`
	LineNo                 string          `json:"line_no"`
	Delivery               string          `json:"delivery"`
	DeliveryDate           string          `json:"delivery_date,omitempty"`
	SellingPlant           string          `json:"selling_plant"`
	BuyingPlant            string          `json:"buying_plant"`
	Material               string          `json:"material"`
	MaterialGroup          string          `json:"material_group"`
	Description            string          `json:"description"`
	Unit                   string          `json:"unit"`
	Currency               string          `json:"currency"`
	QtyShipped             decimal.Decimal `json:"qty_shipped"`
	QtyReceived            decimal.Decimal `json:"qty_received"`
	QtyDelta               decimal.Decimal `json:"qty_delta"`
	AmountShipped          decimal.Decimal `json:"amount_shipped"`
	AmountReceived         decimal.Decimal `json:"amount_received"`
	AmountDelta            decimal.Decimal `json:"amount_delta"`
	Tolerance              string          `json:"tolerance"`
	InvoiceNumber          string          `json:"invoice_number,omitempty"`
	TaxSubmissionStatus    string          `json:"tax_submission_status,omitempty"`
	TaxStatus              string          `json:"tax_status"`
	TaxReference           string          `json:"tax_reference,omitempty"`
	InvoiceVerificationDoc string          `json:"invoice_verification_doc,omitempty"`
	LastEventMessage       string          `json:"last_event_message,omitempty"`
	RegistrationStatus     string          `json:"registration_status,omitempty"`
	Selected               bool            `json:"selected"`
}

// RowListResponse filas visibles con el filtro vigente.
type RowListResponse struct {
	Items []RowResponse `json:"items"`
	Total int           `json:"total"`
}

// SkippedRowResponse fila seleccionada que no cumple la acción.
type SkippedRowResponse struct {
	Key     string `json:"key"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// ConfirmationResponse aviso pendiente de confirmación.
type ConfirmationResponse struct {
	Token         string               `json:"token"`
	Action        string               `json:"action"`
	Message       string               `json:"message"`
	EligibleCount int                  `json:"eligible_count"`
	Skipped       []SkippedRowResponse `json:"skipped"`
	ExpiresAt     time.Time            `json:"expires_at"`
}

// NotificationResponse notificación para el operador.
type NotificationResponse struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
	LineID   string `json:"line_id,omitempty"`
}

// NotificationListResponse notificaciones del último lote de la vista.
type NotificationListResponse struct {
	BatchID string                 `json:"batch_id,omitempty"`
	Items   []NotificationResponse `json:"items"`
}

// Estados de ActionResponse.
const (
	ActionStatusSent                 = "sent"
	ActionStatusConfirmationRequired = "confirmation_required"
	ActionStatusCancelled            = "cancelled"
)

// ActionResponse resultado de iniciar o confirmar una acción.
type ActionResponse struct {
	Status        string                 `json:"status"`
	Action        string                 `json:"action"`
	BatchID       string                 `json:"batch_id,omitempty"`
	LineCount     int                    `json:"line_count"`
	Updated       int                    `json:"updated"`
	Unmatched     int                    `json:"unmatched"`
	Confirmation  *ConfirmationResponse  `json:"confirmation,omitempty"`
	Notifications []NotificationResponse `json:"notifications,omitempty"`
}
