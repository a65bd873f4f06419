package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ciet-hostel/gatepass-api/internal/models"
)

const gatePassColumns = `id, user_id, student_number, student_name, department, year, reason, destination, depart_at, return_at, parent_phone, status, remarks, reviewer_id, reviewer_name, created_at, reviewed_at`

// GatePassRepository provides database access to the gate-pass register.
type GatePassRepository struct {
	db *sqlx.DB
}

// NewGatePassRepository creates a new instance of GatePassRepository.
func NewGatePassRepository(db *sqlx.DB) *GatePassRepository {
	return &GatePassRepository{db: db}
}

// Insert stores a new gate pass. The identifier is assigned here, never
// derived from register size.
func (r *GatePassRepository) Insert(ctx context.Context, pass *models.GatePass) error {
	if pass.ID == "" {
		pass.ID = uuid.NewString()
	}
	if pass.CreatedAt.IsZero() {
		pass.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO gate_passes (id, user_id, student_number, student_name, department, year, reason, destination, depart_at, return_at, parent_phone, status, remarks, reviewer_id, reviewer_name, created_at, reviewed_at) VALUES (:id, :user_id, :student_number, :student_name, :department, :year, :reason, :destination, :depart_at, :return_at, :parent_phone, :status, :remarks, :reviewer_id, :reviewer_name, :created_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pass); err != nil {
		return fmt.Errorf("insert gate pass: %w", err)
	}
	return nil
}

// FindByID returns one gate pass by identifier.
func (r *GatePassRepository) FindByID(ctx context.Context, id string) (*models.GatePass, error) {
	query := fmt.Sprintf(`SELECT %s FROM gate_passes WHERE id = $1 LIMIT 1`, gatePassColumns)
	var pass models.GatePass
	if err := r.db.GetContext(ctx, &pass, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find gate pass by id: %w", err)
	}
	return &pass, nil
}

// List returns gate passes matching the filter in creation order, plus the
// total count for pagination.
func (r *GatePassRepository) List(ctx context.Context, filter models.GatePassFilter) ([]models.GatePass, int, error) {
	baseQuery := `FROM gate_passes WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at ASC LIMIT %d OFFSET %d", gatePassColumns, baseQuery, pageSize, offset)

	var passes []models.GatePass
	if err := r.db.SelectContext(ctx, &passes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list gate passes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count gate passes: %w", err)
	}

	return passes, total, nil
}

// ListAll returns the full register in creation order, used by the CSV export.
func (r *GatePassRepository) ListAll(ctx context.Context) ([]models.GatePass, error) {
	query := fmt.Sprintf(`SELECT %s FROM gate_passes ORDER BY created_at ASC`, gatePassColumns)
	var passes []models.GatePass
	if err := r.db.SelectContext(ctx, &passes, query); err != nil {
		return nil, fmt.Errorf("list all gate passes: %w", err)
	}
	return passes, nil
}

// MarkReviewed records the single allowed status transition. The WHERE guard
// makes the transition atomic: a pass already out of PENDING is not touched
// and ok=false is returned.
func (r *GatePassRepository) MarkReviewed(ctx context.Context, id string, status models.GatePassStatus, remarks *string, reviewerID, reviewerName string, reviewedAt time.Time) (bool, error) {
	const query = `UPDATE gate_passes SET status = $2, remarks = $3, reviewer_id = $4, reviewer_name = $5, reviewed_at = $6 WHERE id = $1 AND status = 'PENDING'`
	res, err := r.db.ExecContext(ctx, query, id, status, remarks, reviewerID, reviewerName, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("mark gate pass reviewed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark gate pass reviewed: %w", err)
	}
	return affected == 1, nil
}

// CountsByStatus aggregates the register for the dashboard. An empty userID
// counts hostel-wide.
func (r *GatePassRepository) CountsByStatus(ctx context.Context, userID string) (models.StatusCounts, error) {
	query := `SELECT
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending,
		COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected
	FROM gate_passes`
	var args []interface{}
	if userID != "" {
		query += " WHERE user_id = $1"
		args = append(args, userID)
	}

	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return models.StatusCounts{}, fmt.Errorf("count gate passes by status: %w", err)
	}
	return counts, nil
}

// Recent returns the most recently created passes, newest first.
func (r *GatePassRepository) Recent(ctx context.Context, userID string, limit int) ([]models.GatePass, error) {
	if limit <= 0 {
		limit = 5
	}
	baseQuery := fmt.Sprintf(`SELECT %s FROM gate_passes`, gatePassColumns)
	var args []interface{}
	if userID != "" {
		baseQuery += " WHERE user_id = $1"
		args = append(args, userID)
	}
	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	var passes []models.GatePass
	if err := r.db.SelectContext(ctx, &passes, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("recent gate passes: %w", err)
	}
	return passes, nil
}
