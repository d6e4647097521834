package worklist

import (
	"context"
	"time"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/application/dto"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

var _ repository.BatchAuditRepository = nopAudit{}

// nopAudit bitácora vacía cuando no hay base de datos configurada.
type nopAudit struct{}

func (nopAudit) Record(context.Context, *entity.BatchSubmission) error { return nil }

func (nopAudit) ListRecent(context.Context, int) ([]*entity.BatchSubmission, error) { return nil, nil }

const auditTimeout = 5 * time.Second

// record guarda el lote en la bitácora. Un fallo se registra en el log y no
// llega al operador.
func (s *Service) record(ctx context.Context, e *entity.BatchSubmission) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Error().Err(err).Str("batch_id", e.ID).Msg("no se pudo registrar el lote en la bitácora")
	}
}

// RecentBatches últimos lotes de la bitácora.
func (s *Service) RecentBatches(ctx context.Context, page dto.PageRequest) (*dto.BatchAuditListResponse, error) {
	page.DefaultPage()
	list, err := s.audit.ListRecent(ctx, page.Limit)
	if err != nil {
		return nil, err
	}
	out := &dto.BatchAuditListResponse{
		Items: make([]dto.BatchAuditResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Total: len(list)},
	}
	for _, e := range list {
		out.Items = append(out.Items, dto.BatchAuditResponse{
			ID:                e.ID,
			ViewID:            e.ViewID,
			Username:          e.Username,
			Action:            e.Action,
			SellingPlant:      e.SellingPlant,
			BuyingPlant:       e.BuyingPlant,
			MaterialGroup:     e.MaterialGroup,
			Period:            e.Period,
			LineCount:         e.LineCount,
			SkippedCount:      e.SkippedCount,
			TotalQty:          e.TotalQty,
			TotalAmount:       e.TotalAmount,
			Outcome:           e.Outcome,
			NotificationCount: e.NotificationCount,
			ErrorDetail:       e.ErrorDetail,
			CreatedAt:         e.CreatedAt,
		})
	}
	return out, nil
}
