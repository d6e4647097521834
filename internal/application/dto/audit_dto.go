package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchAuditResponse registro de la bitácora de lotes.
type BatchAuditResponse struct {
	ID                string          `json:"id"`
	ViewID            string          `json:"view_id"`
	Username          string          `json:"username"`
	Action            string          `json:"action"`
	SellingPlant      string          `json:"selling_plant"`
	BuyingPlant       string          `json:"buying_plant"`
	MaterialGroup     string          `json:"material_group"`
	Period            string          `json:"period,omitempty"`
	LineCount         int             `json:"line_count"`
	SkippedCount      int             `json:"skipped_count"`
	TotalQty          decimal.Decimal `json:"total_qty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Outcome           string          `json:"outcome"`
	NotificationCount int             `json:"notification_count"`
	ErrorDetail       string          `json:"error_detail,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// BatchAuditListResponse últimos lotes registrados.
type BatchAuditListResponse struct {
	Items []BatchAuditResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
