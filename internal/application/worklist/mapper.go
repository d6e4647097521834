package worklist

import (
	"time"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

func toViewResponse(v *View, now time.Time) *dto.ViewResponse {
	cur := v.router.Current()
	fields := make([]string, 0, len(cur.VisibleFields))
	for _, f := range cur.VisibleFields {
		fields = append(fields, string(f))
	}
	actions := make(map[string]bool, len(lifecycle.Actions))
	for a, on := range v.router.EnabledActions() {
		actions[string(a)] = on
	}
	_, notes := v.board.Latest()
	out := &dto.ViewResponse{
		ID:                v.id,
		Stage:             cur.Stage.Key(),
		StageName:         cur.Stage.String(),
		SelectionMode:     string(cur.Selection),
		VisibleFields:     fields,
		Actions:           actions,
		SelectedCount:     v.router.Selected(),
		RowCount:          len(v.rows),
		VisibleCount:      len(v.visible()),
		Search:            v.composer.SearchQuery(),
		SellingPlant:      v.header.SellingPlant,
		BuyingPlant:       v.header.BuyingPlant,
		MaterialGroup:     v.header.MaterialGroup,
		InFlight:          v.inFlight,
		NotificationCount: len(notes),
		LastUsedAt:        v.lastUsed,
	}
	if v.pending != nil && !now.After(v.pending.expiresAt) {
		out.PendingConfirmation = toConfirmationResponse(v.pending)
	}
	return out
}

func toRowResponse(r *entity.DeliveryLine, selected bool) dto.RowResponse {
	out := dto.RowResponse{
		Key:                    r.Key(),
		OrderID:                r.OrderID,
		LineNo:                 r.LineNo,
		Delivery:               r.Delivery,
		SellingPlant:           r.SellingPlant,
		BuyingPlant:            r.BuyingPlant,
		Material:               r.Material,
		MaterialGroup:          r.MaterialGroup,
		Description:            r.Description,
		Unit:                   r.Unit,
		Currency:               r.Currency,
		QtyShipped:             r.QtyShipped,
		QtyReceived:            r.QtyReceived,
		QtyDelta:               r.QtyDelta,
		AmountShipped:          r.AmountShipped,
		AmountReceived:         r.AmountReceived,
		AmountDelta:            r.AmountDelta,
		Tolerance:              r.Tolerance.String(),
		InvoiceNumber:          r.InvoiceNumber,
		TaxSubmissionStatus:    r.TaxSubmissionStatus,
		TaxStatus:              r.TaxStatus.String(),
		TaxReference:           r.TaxReference,
		InvoiceVerificationDoc: r.InvoiceVerificationDoc,
		LastEventMessage:       r.LastEventMessage,
		RegistrationStatus:     r.RegistrationStatus,
		Selected:               selected,
	}
	if !r.DeliveryDate.IsZero() {
		out.DeliveryDate = r.DeliveryDate.Format("2006-01-02")
	}
	return out
}

func toConfirmationResponse(p *pendingAction) *dto.ConfirmationResponse {
	out := &dto.ConfirmationResponse{
		Token:         p.token,
		Action:        string(p.action),
		Message:       lifecycle.MsgSkippedLines,
		EligibleCount: len(p.eligible),
		Skipped:       make([]dto.SkippedRowResponse, 0, len(p.skipped)),
		ExpiresAt:     p.expiresAt,
	}
	for _, sk := range p.skipped {
		out.Skipped = append(out.Skipped, dto.SkippedRowResponse{
			Key:     sk.Row.Key(),
			Reason:  string(sk.Reason),
			Message: sk.Reason.Message(),
		})
	}
	return out
}

func toNotificationResponses(notes []lifecycle.Notification) []dto.NotificationResponse {
	out := make([]dto.NotificationResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, dto.NotificationResponse{Severity: string(n.Severity), Text: n.Text, LineID: n.LineID})
	}
	return out
}
