package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/notify"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
	"github.com/ciet-hostel/gatepass-api/pkg/export"
)

type gatePassRepository interface {
	Insert(ctx context.Context, pass *models.GatePass) error
	FindByID(ctx context.Context, id string) (*models.GatePass, error)
	List(ctx context.Context, filter models.GatePassFilter) ([]models.GatePass, int, error)
	ListAll(ctx context.Context) ([]models.GatePass, error)
	MarkReviewed(ctx context.Context, id string, status models.GatePassStatus, remarks *string, reviewerID, reviewerName string, reviewedAt time.Time) (bool, error)
}

type gatePassAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type studentDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Actor identifies who is invoking an operation. Authorization lives here in
// the service, not in the transport layer, so the contract holds no matter
// which caller invokes it.
type Actor struct {
	UserID        string
	Role          models.UserRole
	FullName      string
	StudentNumber string
}

// GatePassService implements the gate-pass lifecycle: student submission,
// single-shot warden/admin review, role-filtered reads and register export.
type GatePassService struct {
	repo      gatePassRepository
	users     studentDirectory
	auditor   gatePassAuditor
	notifier  notify.GuardianNotifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// GatePassServiceParams groups constructor dependencies.
type GatePassServiceParams struct {
	Repo     gatePassRepository
	Users    studentDirectory
	Auditor  gatePassAuditor
	Notifier notify.GuardianNotifier
	Cache    *CacheService
	Metrics  *MetricsService
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewGatePassService constructs a GatePassService.
func NewGatePassService(params GatePassServiceParams) *GatePassService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validate
	if validate == nil {
		validate = validator.New()
	}
	return &GatePassService{
		repo:      params.Repo,
		users:     params.Users,
		auditor:   params.Auditor,
		notifier:  params.Notifier,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create submits a new gate pass for the acting student. The student profile
// is denormalized onto the record; status is always PENDING regardless of
// input.
func (s *GatePassService) Create(ctx context.Context, actor Actor, req models.CreateGatePassRequest) (*models.GatePass, error) {
	if actor.Role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students may submit gate passes")
	}

	student, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid gate pass payload")
	}

	now := s.now().UTC()
	if req.DepartAt.Before(now) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "departure time must not be in the past")
	}
	if req.ReturnAt.Before(req.DepartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "return time must not precede departure time")
	}
	if student.ParentPhone == nil || *student.ParentPhone == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student profile has no parent phone number")
	}

	pass := &models.GatePass{
		UserID:        student.ID,
		StudentNumber: derefOr(student.StudentNumber, ""),
		StudentName:   student.FullName,
		Department:    derefOr(student.Department, ""),
		Year:          derefOr(student.Year, ""),
		Reason:        req.Reason,
		Destination:   req.Destination,
		DepartAt:      req.DepartAt.UTC(),
		ReturnAt:      req.ReturnAt.UTC(),
		ParentPhone:   *student.ParentPhone,
		Status:        models.StatusPending,
		CreatedAt:     now,
	}

	if err := s.repo.Insert(ctx, pass); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store gate pass")
	}

	s.invalidateDashboards(ctx)
	s.audit(ctx, actor, models.AuditActionPassSubmit, pass.ID, fmt.Sprintf(`{"destination":%q}`, pass.Destination))

	return pass, nil
}

// ListForActor returns the passes visible to the actor: students see their
// own register, wardens and admins the whole hostel's. Creation order is
// preserved.
func (s *GatePassService) ListForActor(ctx context.Context, actor Actor, status *models.GatePassStatus, page, pageSize int) ([]models.GatePass, *models.Pagination, error) {
	filter := models.GatePassFilter{Status: status, Page: page, PageSize: pageSize}
	switch actor.Role {
	case models.RoleStudent:
		filter.UserID = actor.UserID
	case models.RoleWarden, models.RoleAdmin:
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	start := time.Now()
	passes, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("gate_pass_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gate passes")
	}

	pagination := &models.Pagination{Page: normalizePage(page), PageSize: normalizePageSize(pageSize), TotalCount: total}
	return passes, pagination, nil
}

// ListPending returns every pending pass across all students, in creation
// order. Staff only.
func (s *GatePassService) ListPending(ctx context.Context, actor Actor, page, pageSize int) ([]models.GatePass, *models.Pagination, error) {
	if !actor.Role.Staff() {
		return nil, nil, appErrors.ErrForbidden
	}
	pending := models.StatusPending
	start := time.Now()
	passes, total, err := s.repo.List(ctx, models.GatePassFilter{Status: &pending, Page: page, PageSize: pageSize})
	s.metrics.ObserveDBQuery("gate_pass_list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending gate passes")
	}
	pagination := &models.Pagination{Page: normalizePage(page), PageSize: normalizePageSize(pageSize), TotalCount: total}
	return passes, pagination, nil
}

// Get returns one pass. Students may only read their own.
func (s *GatePassService) Get(ctx context.Context, actor Actor, id string) (*models.GatePass, error) {
	pass, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gate pass not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gate pass")
	}

	if actor.Role == models.RoleStudent && pass.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "gate pass belongs to another student")
	}

	return pass, nil
}

// Review records the one allowed status transition and notifies the
// guardian. A pass that was already reviewed yields a conflict; the terminal
// state is immutable.
func (s *GatePassService) Review(ctx context.Context, actor Actor, id string, req models.ReviewGatePassRequest) (*models.GatePass, error) {
	if !actor.Role.Staff() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only wardens and admins may review gate passes")
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	if !req.Decision.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be APPROVED or REJECTED")
	}

	pass, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "gate pass not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gate pass")
	}
	if pass.Status != models.StatusPending {
		return nil, appErrors.ErrAlreadyReviewed
	}

	var remarks *string
	if req.Remarks != "" {
		remarks = &req.Remarks
	}

	reviewedAt := s.now().UTC()
	ok, err := s.repo.MarkReviewed(ctx, id, req.Decision, remarks, actor.UserID, actor.FullName, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update gate pass")
	}
	if !ok {
		// Lost a race with a concurrent reviewer.
		return nil, appErrors.ErrAlreadyReviewed
	}

	pass.Status = req.Decision
	pass.Remarks = remarks
	pass.ReviewerID = &actor.UserID
	reviewerName := actor.FullName
	pass.ReviewerName = &reviewerName
	pass.ReviewedAt = &reviewedAt

	s.invalidateDashboards(ctx)
	s.metrics.RecordReview(string(req.Decision))
	s.audit(ctx, actor, models.AuditActionPassReview, pass.ID, fmt.Sprintf(`{"decision":%q}`, req.Decision))

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, notify.GuardianNotification{
			PassID:      pass.ID,
			StudentName: pass.StudentName,
			ParentPhone: pass.ParentPhone,
			Status:      pass.Status,
			Destination: pass.Destination,
			DepartAt:    pass.DepartAt,
			ReturnAt:    pass.ReturnAt,
		}); err != nil {
			s.logger.Warn("guardian notification failed", zap.String("pass_id", pass.ID), zap.Error(err))
		}
	}

	return pass, nil
}

// ExportCSV renders the full register for staff.
func (s *GatePassService) ExportCSV(ctx context.Context, actor Actor) ([]byte, error) {
	if !actor.Role.Staff() {
		return nil, appErrors.ErrForbidden
	}

	start := time.Now()
	passes, err := s.repo.ListAll(ctx)
	s.metrics.ObserveDBQuery("gate_pass_export", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load register")
	}

	data := export.Dataset{
		Headers: []string{"id", "student_number", "student_name", "department", "year", "reason", "destination", "depart_at", "return_at", "status", "remarks", "reviewer", "created_at", "reviewed_at"},
	}
	for _, p := range passes {
		data.Rows = append(data.Rows, []string{
			p.ID,
			p.StudentNumber,
			p.StudentName,
			p.Department,
			p.Year,
			p.Reason,
			p.Destination,
			p.DepartAt.Format(time.RFC3339),
			p.ReturnAt.Format(time.RFC3339),
			string(p.Status),
			derefOr(p.Remarks, ""),
			derefOr(p.ReviewerName, ""),
			p.CreatedAt.Format(time.RFC3339),
			formatTimePtr(p.ReviewedAt),
		})
	}

	out, err := export.CSV(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// RenderPassPDF produces the printable permit for an approved pass, subject
// to the same visibility rules as Get.
func (s *GatePassService) RenderPassPDF(ctx context.Context, actor Actor, id string) ([]byte, error) {
	pass, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if pass.Status != models.StatusApproved {
		return nil, appErrors.Clone(appErrors.ErrNotApproved, "only approved gate passes can be printed")
	}

	doc := export.PassDocument{
		Title:       "HOSTEL GATE PASS",
		ReferenceID: pass.ID,
		Fields: []export.PassField{
			{Label: "Student", Value: fmt.Sprintf("%s (%s)", pass.StudentName, pass.StudentNumber)},
			{Label: "Department", Value: fmt.Sprintf("%s, %s", pass.Department, pass.Year)},
			{Label: "Destination", Value: pass.Destination},
			{Label: "Reason", Value: pass.Reason},
			{Label: "Departure", Value: pass.DepartAt.Format("02 Jan 2006 15:04")},
			{Label: "Return", Value: pass.ReturnAt.Format("02 Jan 2006 15:04")},
			{Label: "Approved by", Value: derefOr(pass.ReviewerName, "")},
			{Label: "Remarks", Value: derefOr(pass.Remarks, "-")},
		},
		Footer: "Present this pass at the hostel gate. Valid only for the period shown above.",
	}

	out, err := export.PassPDF(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return out, nil
}

// invalidateDashboards drops every cached summary; hostel-wide and
// per-student entries share the prefix.
func (s *GatePassService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, "dashboard:*")
}

func (s *GatePassService) audit(ctx context.Context, actor Actor, action, resourceID, detail string) {
	if s.auditor == nil {
		return
	}
	userID := actor.UserID
	if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "gate_pass",
		ResourceID: &resourceID,
		Detail:     []byte(detail),
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePageSize(size int) int {
	if size <= 0 || size > 100 {
		return 20
	}
	return size
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
