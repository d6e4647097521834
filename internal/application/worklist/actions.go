package worklist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/lifecycle"
)

// maxReasonsInError filas detalladas en el error de "ninguna fila elegible".
const maxReasonsInError = 5

// Execute inicia una acción sobre la selección de la vista.
//
//   - Sin filas elegibles: ErrNoEligibleRows, sin llamada al backend.
//   - Con filas no elegibles mezcladas: queda una confirmación pendiente; no se
//     asignan ids ni se llama al backend hasta que el operador acepte.
//   - Todas elegibles: se envía el lote y se concilia la respuesta.
func (s *Service) Execute(ctx context.Context, viewID, owner, action string, in dto.ActionRequest) (*dto.ActionResponse, error) {
	a, err := lifecycle.ParseAction(action)
	if err != nil {
		return nil, err
	}
	v, err := s.acquire(viewID, owner)
	if err != nil {
		return nil, err
	}
	if v.inFlight {
		v.mu.Unlock()
		return nil, domain.ErrBatchInFlight
	}
	if len(v.selected) == 0 {
		v.mu.Unlock()
		return nil, domain.ErrNoSelection
	}
	if !v.router.Enabled(a) {
		v.mu.Unlock()
		return nil, fmt.Errorf("%w: %s en %s", domain.ErrActionDisabled, a, v.router.Current().Stage)
	}
	period, err := resolvePeriod(a, in)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}

	eligible, skipped := lifecycle.Partition(a, v.selected)
	if len(eligible) == 0 {
		v.mu.Unlock()
		return nil, noEligibleError(skipped)
	}
	if len(skipped) > 0 {
		p := &pendingAction{
			token:     uuid.New().String(),
			action:    a,
			period:    period,
			eligible:  eligible,
			skipped:   skipped,
			expiresAt: s.now().Add(s.opts.ConfirmationTTL),
		}
		v.pending = p
		v.mu.Unlock()
		s.log.Info().Str("view_id", viewID).Str("action", string(a)).
			Int("eligible", len(eligible)).Int("skipped", len(skipped)).
			Msg("acción en espera de confirmación")
		return &dto.ActionResponse{
			Status:       dto.ActionStatusConfirmationRequired,
			Action:       string(a),
			Confirmation: toConfirmationResponse(p),
		}, nil
	}
	return s.submit(ctx, v, owner, a, period, eligible, 0)
}

// Confirm resuelve una confirmación pendiente. Rechazarla no deja rastro: ni
// ids asignados ni llamada al backend.
func (s *Service) Confirm(ctx context.Context, viewID, owner, token string, accept bool) (*dto.ActionResponse, error) {
	v, err := s.acquire(viewID, owner)
	if err != nil {
		return nil, err
	}
	p := v.pending
	if p == nil || p.token != token {
		v.mu.Unlock()
		return nil, domain.ErrConfirmationExpired
	}
	v.pending = nil
	if s.now().After(p.expiresAt) {
		v.mu.Unlock()
		return nil, domain.ErrConfirmationExpired
	}
	if !accept {
		v.mu.Unlock()
		return &dto.ActionResponse{Status: dto.ActionStatusCancelled, Action: string(p.action)}, nil
	}
	if v.inFlight {
		v.mu.Unlock()
		return nil, domain.ErrBatchInFlight
	}
	// Las filas pudieron cambiar desde Execute; solo viajan las que siguen elegibles.
	eligible, dropped := lifecycle.Partition(p.action, p.eligible)
	if len(eligible) == 0 {
		v.mu.Unlock()
		return nil, noEligibleError(dropped)
	}
	return s.submit(ctx, v, owner, p.action, p.period, eligible, len(p.skipped)+len(dropped))
}

// submit arma el lote, lo envía y concilia. Se invoca con v.mu tomado y lo
// libera durante la llamada al backend; inFlight impide un segundo envío.
func (s *Service) submit(
	ctx context.Context,
	v *View,
	owner string,
	a lifecycle.Action,
	period lifecycle.Period,
	eligible []*entity.DeliveryLine,
	skipped int,
) (*dto.ActionResponse, error) {
	v.pending = nil
	header := v.header
	header.Period = period.String()
	rows := v.rows
	req, err := lifecycle.Build(a, header, rows, eligible)
	if err != nil {
		v.mu.Unlock()
		return nil, err
	}
	v.inFlight = true
	v.mu.Unlock()

	started := s.now()
	resp, sendErr := s.store.SubmitBatch(ctx, req)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFlight = false
	v.lastUsed = s.now()

	batchID := uuid.New().String()
	entry := newAuditEntry(batchID, v.id, owner, req, skipped, s.now())
	logEvt := s.log.With().Str("view_id", v.id).Str("batch_id", batchID).Str("action", string(a)).
		Int("lines", len(req.Lines)).Dur("elapsed", s.now().Sub(started)).Logger()

	if sendErr != nil {
		// Los ids de este lote ya no sirven para conciliar nada.
		lifecycle.ClearCorrelation(rows)
		notes := lifecycle.FailureNotification(sendErr.Error())
		v.board.Publish(batchID, notes)
		entry.Outcome = entity.OutcomeFailed
		entry.ErrorDetail = sendErr.Error()
		entry.NotificationCount = len(notes)
		s.record(ctx, entry)
		logEvt.Error().Err(sendErr).Msg("envío de lote falló")
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, sendErr)
	}

	rec := lifecycle.NewReconciler(s.catalog.Catalog(), logEvt).Apply(resp, rows)
	var msgs []entity.BatchMessage
	if resp != nil {
		msgs = resp.Messages
	}
	notes := lifecycle.Aggregate(msgs, rec)
	v.board.Publish(batchID, notes)
	v.setSelection(nil)

	entry.Outcome = entity.OutcomeSent
	entry.NotificationCount = len(notes)
	s.record(ctx, entry)
	logEvt.Info().Int("updated", len(rec.Updated)).Int("unmatched", len(rec.Unmatched)).
		Int("notifications", len(notes)).Msg("lote conciliado")

	return &dto.ActionResponse{
		Status:        dto.ActionStatusSent,
		Action:        string(a),
		BatchID:       batchID,
		LineCount:     len(req.Lines),
		Updated:       len(rec.Updated),
		Unmatched:     len(rec.Unmatched),
		Notifications: toNotificationResponses(notes),
	}, nil
}

// resolvePeriod periodo de la cabecera. Solo INVOICE lo exige; se acepta como
// MM/AAAA o derivado de la fecha de contabilización.
func resolvePeriod(a lifecycle.Action, in dto.ActionRequest) (lifecycle.Period, error) {
	if !a.RequiresPeriod() {
		return lifecycle.Period{}, nil
	}
	if p := strings.TrimSpace(in.Period); p != "" {
		return lifecycle.ParsePeriod(p)
	}
	if d := strings.TrimSpace(in.PostingDate); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return lifecycle.Period{}, fmt.Errorf("%w: fecha de contabilización %q", domain.ErrInvalidInput, d)
		}
		return lifecycle.PeriodFromDate(t), nil
	}
	return lifecycle.Period{}, domain.ErrPeriodRequired
}

func noEligibleError(skipped []lifecycle.Skipped) error {
	parts := make([]string, 0, maxReasonsInError)
	for i, sk := range skipped {
		if i == maxReasonsInError {
			parts = append(parts, fmt.Sprintf("y %d más", len(skipped)-i))
			break
		}
		parts = append(parts, sk.Row.Key()+": "+sk.Reason.Message())
	}
	return fmt.Errorf("%w: %s", domain.ErrNoEligibleRows, strings.Join(parts, "; "))
}

func newAuditEntry(id, viewID, owner string, req entity.BatchRequest, skipped int, now time.Time) *entity.BatchSubmission {
	qty, amount := decimal.Zero, decimal.Zero
	for _, l := range req.Lines {
		qty = qty.Add(l.QtyShipped)
		amount = amount.Add(l.AmountShipped)
	}
	return &entity.BatchSubmission{
		ID:            id,
		ViewID:        viewID,
		Username:      owner,
		Action:        req.Header.Action,
		SellingPlant:  req.Header.SellingPlant,
		BuyingPlant:   req.Header.BuyingPlant,
		MaterialGroup: req.Header.MaterialGroup,
		Period:        req.Header.Period,
		LineCount:     len(req.Lines),
		SkippedCount:  skipped,
		TotalQty:      qty,
		TotalAmount:   amount,
		CreatedAt:     now,
	}
}
