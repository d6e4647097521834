package repository

import (
	"context"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
)

// BatchAuditRepository puerto de la bitácora de lotes enviados (solo inserción).
type BatchAuditRepository interface {
	Record(ctx context.Context, s *entity.BatchSubmission) error
	// ListRecent devuelve los últimos registros, del más nuevo al más viejo.
	ListRecent(ctx context.Context, limit int) ([]*entity.BatchSubmission, error)
}
