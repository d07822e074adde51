package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-logistics-api/internal/models"
)

// SeatingPlanRepository persists assembled seating plans as JSONB documents.
type SeatingPlanRepository struct {
	db *sqlx.DB
}

// NewSeatingPlanRepository constructs the repository.
func NewSeatingPlanRepository(db *sqlx.DB) *SeatingPlanRepository {
	return &SeatingPlanRepository{db: db}
}

// Create inserts a plan record, assigning an id and timestamp when missing.
func (r *SeatingPlanRepository) Create(ctx context.Context, record *models.SeatingPlanRecord) error {
	if record == nil {
		return fmt.Errorf("seating plan record is nil")
	}
	if len(record.Payload) == 0 {
		return fmt.Errorf("seating plan payload is empty")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `
INSERT INTO seating_plans (id, name, strategy, seed, student_count, room_count, unassigned_count, payload, created_at)
VALUES (:id, :name, :strategy, :seed, :student_count, :room_count, :unassigned_count, :payload, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert seating plan: %w", err)
	}
	return nil
}

// FindByID loads a plan record. Missing plans return sql.ErrNoRows.
func (r *SeatingPlanRepository) FindByID(ctx context.Context, id string) (*models.SeatingPlanRecord, error) {
	const query = `SELECT id, name, strategy, seed, student_count, room_count, unassigned_count, payload, created_at FROM seating_plans WHERE id = $1`
	var record models.SeatingPlanRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns plan summaries, newest first, with the total matching count.
func (r *SeatingPlanRepository) List(ctx context.Context, filter models.SeatingPlanFilter) ([]models.SeatingPlanSummary, int, error) {
	where := ""
	args := []interface{}{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = fmt.Sprintf(" WHERE name ILIKE $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM seating_plans"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count seating plans: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT id, name, strategy, student_count, room_count, unassigned_count, created_at FROM seating_plans%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	summaries := []models.SeatingPlanSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list seating plans: %w", err)
	}
	return summaries, total, nil
}

// Delete removes a plan. Missing plans return sql.ErrNoRows.
func (r *SeatingPlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM seating_plans WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete seating plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("seating plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
