package postgres

import (
	"context"
	"fmt"

	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/entity"
	"github.com/jhidalgob2/alpayana-maquetado-ui5/internal/domain/repository"
)

var _ repository.BatchAuditRepository = (*BatchAuditRepo)(nil)

const batchSubmissionsDDL = `
	CREATE TABLE IF NOT EXISTS batch_submissions (
		id                 UUID PRIMARY KEY,
		view_id            TEXT NOT NULL,
		username           TEXT NOT NULL DEFAULT '',
		action             TEXT NOT NULL,
		selling_plant      TEXT NOT NULL,
		buying_plant       TEXT NOT NULL,
		material_group     TEXT NOT NULL,
		period             TEXT NOT NULL DEFAULT '',
		line_count         INTEGER NOT NULL,
		skipped_count      INTEGER NOT NULL DEFAULT 0,
		total_qty          NUMERIC(18,3) NOT NULL DEFAULT 0,
		total_amount       NUMERIC(18,2) NOT NULL DEFAULT 0,
		outcome            TEXT NOT NULL,
		notification_count INTEGER NOT NULL DEFAULT 0,
		error_detail       TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_batch_submissions_created_at ON batch_submissions (created_at DESC)`

// BatchAuditRepo bitácora de lotes sobre PostgreSQL.
type BatchAuditRepo struct {
	db Querier
}

// NewBatchAuditRepository construye el adaptador; acepta el pool o una transacción.
func NewBatchAuditRepository(db Querier) *BatchAuditRepo {
	return &BatchAuditRepo{db: db}
}

// EnsureSchema crea la tabla si no existe.
func (r *BatchAuditRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, batchSubmissionsDDL); err != nil {
		return fmt.Errorf("crear batch_submissions: %w", err)
	}
	return nil
}

// Record inserta un registro.
func (r *BatchAuditRepo) Record(ctx context.Context, s *entity.BatchSubmission) error {
	query := `
		INSERT INTO batch_submissions (id, view_id, username, action, selling_plant, buying_plant,
			material_group, period, line_count, skipped_count, total_qty, total_amount,
			outcome, notification_count, error_detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.ViewID, s.Username, s.Action, s.SellingPlant, s.BuyingPlant,
		s.MaterialGroup, s.Period, s.LineCount, s.SkippedCount, s.TotalQty, s.TotalAmount,
		s.Outcome, s.NotificationCount, s.ErrorDetail, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert batch_submission %s: registro duplicado: %w", s.ID, err)
		}
		return fmt.Errorf("insert batch_submission: %w", err)
	}
	return nil
}

// ListRecent últimos registros por fecha de creación descendente.
func (r *BatchAuditRepo) ListRecent(ctx context.Context, limit int) ([]*entity.BatchSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id::text, view_id, username, action, selling_plant, buying_plant, material_group, period,
			line_count, skipped_count, total_qty, total_amount, outcome, notification_count,
			error_detail, created_at
		FROM batch_submissions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("list batch_submissions: tabla inexistente, falta EnsureSchema: %w", err)
		}
		return nil, fmt.Errorf("list batch_submissions: %w", err)
	}
	defer rows.Close()
	var list []*entity.BatchSubmission
	for rows.Next() {
		var s entity.BatchSubmission
		if err := rows.Scan(&s.ID, &s.ViewID, &s.Username, &s.Action, &s.SellingPlant, &s.BuyingPlant,
			&s.MaterialGroup, &s.Period, &s.LineCount, &s.SkippedCount, &s.TotalQty, &s.TotalAmount,
			&s.Outcome, &s.NotificationCount, &s.ErrorDetail, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch_submission: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
