package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciet-hostel/gatepass-api/internal/models"
	"github.com/ciet-hostel/gatepass-api/internal/notify"
	appErrors "github.com/ciet-hostel/gatepass-api/pkg/errors"
)

type fakeGatePassRepo struct {
	passes    []*models.GatePass
	insertErr error
	findErr   error
	listErr   error
	markErr   error
	markOK    *bool
}

func (f *fakeGatePassRepo) Insert(ctx context.Context, pass *models.GatePass) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if pass.ID == "" {
		pass.ID = uuid.NewString()
	}
	cp := *pass
	f.passes = append(f.passes, &cp)
	return nil
}

func (f *fakeGatePassRepo) FindByID(ctx context.Context, id string) (*models.GatePass, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, p := range f.passes {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeGatePassRepo) List(ctx context.Context, filter models.GatePassFilter) ([]models.GatePass, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []models.GatePass
	for _, p := range f.passes {
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeGatePassRepo) ListAll(ctx context.Context) ([]models.GatePass, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.GatePass
	for _, p := range f.passes {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeGatePassRepo) MarkReviewed(ctx context.Context, id string, status models.GatePassStatus, remarks *string, reviewerID, reviewerName string, reviewedAt time.Time) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.markOK != nil {
		return *f.markOK, nil
	}
	for _, p := range f.passes {
		if p.ID == id && p.Status == models.StatusPending {
			p.Status = status
			p.Remarks = remarks
			p.ReviewerID = &reviewerID
			name := reviewerName
			p.ReviewerName = &name
			ts := reviewedAt
			p.ReviewedAt = &ts
			return true, nil
		}
	}
	return false, nil
}

type fakeDirectory struct {
	users map[string]*models.User
}

func (f *fakeDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

type fakeAuditor struct {
	logs []*models.AuditLog
}

func (f *fakeAuditor) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeNotifier struct {
	calls []notify.GuardianNotification
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, n notify.GuardianNotification) error {
	f.calls = append(f.calls, n)
	return f.err
}

func strPtr(s string) *string { return &s }

func seedStudent() *models.User {
	return &models.User{
		ID:            "stu-1",
		Email:         "arun@ciet.edu",
		FullName:      "Arun Kumar",
		Role:          models.RoleStudent,
		StudentNumber: strPtr("CSE001"),
		Department:    strPtr("Computer Science"),
		Year:          strPtr("Third Year"),
		ParentPhone:   strPtr("9876543211"),
		Active:        true,
	}
}

func newTestService(repo *fakeGatePassRepo, dir *fakeDirectory, auditor *fakeAuditor, notifier *fakeNotifier) *GatePassService {
	params := GatePassServiceParams{
		Repo:  repo,
		Users: dir,
	}
	// Assign only non-nil fakes so the interface fields stay nil and the
	// service's optional-dependency guards keep working.
	if auditor != nil {
		params.Auditor = auditor
	}
	if notifier != nil {
		params.Notifier = notifier
	}
	return NewGatePassService(params)
}

func studentActor() Actor {
	return Actor{UserID: "stu-1", Role: models.RoleStudent, FullName: "Arun Kumar", StudentNumber: "CSE001"}
}

func wardenActor() Actor {
	return Actor{UserID: "war-1", Role: models.RoleWarden, FullName: "Dr. Rajesh Patel"}
}

func validCreateReq(now time.Time) models.CreateGatePassRequest {
	return models.CreateGatePassRequest{
		Reason:      "Family function",
		Destination: "Chennai",
		DepartAt:    now.Add(24 * time.Hour),
		ReturnAt:    now.Add(72 * time.Hour),
	}
}

func TestGatePassCreate(t *testing.T) {
	repo := &fakeGatePassRepo{}
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": seedStudent()}}
	auditor := &fakeAuditor{}
	svc := newTestService(repo, dir, auditor, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	pass, err := svc.Create(context.Background(), studentActor(), validCreateReq(now))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, pass.Status)
	assert.Equal(t, "stu-1", pass.UserID)
	assert.Equal(t, "CSE001", pass.StudentNumber)
	assert.Equal(t, "Arun Kumar", pass.StudentName)
	assert.Equal(t, "9876543211", pass.ParentPhone)
	assert.NotEmpty(t, pass.ID)
	assert.Nil(t, pass.ReviewerID)
	assert.Nil(t, pass.ReviewedAt)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, models.AuditActionPassSubmit, auditor.logs[0].Action)
}

func TestGatePassCreateRejectsStaff(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, err := svc.Create(context.Background(), wardenActor(), validCreateReq(time.Now()))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGatePassCreatePastDeparture(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": seedStudent()}}
	svc := newTestService(&fakeGatePassRepo{}, dir, nil, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	req := validCreateReq(now)
	req.DepartAt = now.Add(-time.Hour)

	_, err := svc.Create(context.Background(), studentActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGatePassCreateReturnBeforeDeparture(t *testing.T) {
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": seedStudent()}}
	svc := newTestService(&fakeGatePassRepo{}, dir, nil, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	req := validCreateReq(now)
	req.ReturnAt = req.DepartAt.Add(-time.Hour)

	_, err := svc.Create(context.Background(), studentActor(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGatePassCreateRequiresParentPhone(t *testing.T) {
	student := seedStudent()
	student.ParentPhone = nil
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": student}}
	svc := newTestService(&fakeGatePassRepo{}, dir, nil, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Create(context.Background(), studentActor(), validCreateReq(now))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGatePassListScopedToStudent(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", Status: models.StatusPending},
		{ID: "p2", UserID: "stu-2", Status: models.StatusPending},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	passes, pagination, err := svc.ListForActor(context.Background(), studentActor(), nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, "p1", passes[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestGatePassListStaffSeesAll(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", Status: models.StatusPending},
		{ID: "p2", UserID: "stu-2", Status: models.StatusApproved},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	passes, _, err := svc.ListForActor(context.Background(), wardenActor(), nil, 1, 20)
	require.NoError(t, err)
	assert.Len(t, passes, 2)
}

func TestGatePassGetOwnershipEnforced(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-2", Status: models.StatusPending},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	_, err := svc.Get(context.Background(), studentActor(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	pass, err := svc.Get(context.Background(), wardenActor(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", pass.ID)
}

func TestGatePassGetNotFound(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, err := svc.Get(context.Background(), wardenActor(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGatePassReviewApprove(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", StudentName: "Arun Kumar", ParentPhone: "9876543211", Status: models.StatusPending},
	}}
	auditor := &fakeAuditor{}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakeDirectory{}, auditor, notifier)
	reviewedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return reviewedAt }

	pass, err := svc.Review(context.Background(), wardenActor(), "p1", models.ReviewGatePassRequest{
		Decision: models.StatusApproved,
		Remarks:  "Please return on time",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, pass.Status)
	require.NotNil(t, pass.Remarks)
	assert.Equal(t, "Please return on time", *pass.Remarks)
	require.NotNil(t, pass.ReviewerID)
	assert.Equal(t, "war-1", *pass.ReviewerID)
	require.NotNil(t, pass.ReviewerName)
	assert.Equal(t, "Dr. Rajesh Patel", *pass.ReviewerName)
	require.NotNil(t, pass.ReviewedAt)
	assert.Equal(t, reviewedAt, *pass.ReviewedAt)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "9876543211", notifier.calls[0].ParentPhone)
	assert.Equal(t, models.StatusApproved, notifier.calls[0].Status)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, models.AuditActionPassReview, auditor.logs[0].Action)
}

func TestGatePassReviewRequiresStaff(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, err := svc.Review(context.Background(), studentActor(), "p1", models.ReviewGatePassRequest{Decision: models.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGatePassReviewRejectsNonTerminalDecision(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, err := svc.Review(context.Background(), wardenActor(), "p1", models.ReviewGatePassRequest{Decision: models.StatusPending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGatePassReviewAlreadyReviewed(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", Status: models.StatusApproved},
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(repo, &fakeDirectory{}, nil, notifier)

	_, err := svc.Review(context.Background(), wardenActor(), "p1", models.ReviewGatePassRequest{Decision: models.StatusRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyReviewed.Code, appErrors.FromError(err).Code)
	assert.Empty(t, notifier.calls)
}

func TestGatePassReviewLosesRace(t *testing.T) {
	no := false
	repo := &fakeGatePassRepo{
		passes: []*models.GatePass{{ID: "p1", UserID: "stu-1", Status: models.StatusPending}},
		markOK: &no,
	}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	_, err := svc.Review(context.Background(), wardenActor(), "p1", models.ReviewGatePassRequest{Decision: models.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyReviewed.Code, appErrors.FromError(err).Code)
}

func TestGatePassReviewNotFound(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, err := svc.Review(context.Background(), wardenActor(), "missing", models.ReviewGatePassRequest{Decision: models.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGatePassReviewNotifierFailureNonFatal(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", Status: models.StatusPending},
	}}
	notifier := &fakeNotifier{err: errors.New("gateway down")}
	svc := newTestService(repo, &fakeDirectory{}, nil, notifier)

	pass, err := svc.Review(context.Background(), wardenActor(), "p1", models.ReviewGatePassRequest{Decision: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, pass.Status)
	assert.Len(t, notifier.calls, 1)
}

func TestGatePassReviewWithoutAuditorOrNotifier(t *testing.T) {
	repo := &fakeGatePassRepo{}
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": seedStudent()}}
	svc := newTestService(repo, dir, nil, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	pass, err := svc.Create(context.Background(), studentActor(), validCreateReq(now))
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), wardenActor(), pass.ID, models.ReviewGatePassRequest{Decision: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reviewed.Status)
}

func TestGatePassPendingShrinksAfterReview(t *testing.T) {
	repo := &fakeGatePassRepo{}
	dir := &fakeDirectory{users: map[string]*models.User{"stu-1": seedStudent()}}
	svc := newTestService(repo, dir, nil, nil)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	first, err := svc.Create(context.Background(), studentActor(), validCreateReq(now))
	require.NoError(t, err)
	req := validCreateReq(now)
	req.Reason = "Medical appointment"
	req.Destination = "City Hospital"
	_, err = svc.Create(context.Background(), studentActor(), req)
	require.NoError(t, err)

	pending, _, err := svc.ListPending(context.Background(), wardenActor(), 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	_, err = svc.Review(context.Background(), wardenActor(), first.ID, models.ReviewGatePassRequest{
		Decision: models.StatusRejected,
		Remarks:  "Attendance shortage",
	})
	require.NoError(t, err)

	pending, _, err = svc.ListPending(context.Background(), wardenActor(), 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, first.ID, pending[0].ID)

	mine, _, err := svc.ListForActor(context.Background(), studentActor(), nil, 1, 20)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		if p.ID == first.ID {
			assert.Equal(t, models.StatusRejected, p.Status)
			require.NotNil(t, p.Remarks)
			assert.Equal(t, "Attendance shortage", *p.Remarks)
		}
	}
}

func TestGatePassListPendingRequiresStaff(t *testing.T) {
	svc := newTestService(&fakeGatePassRepo{}, &fakeDirectory{}, nil, nil)

	_, _, err := svc.ListPending(context.Background(), studentActor(), 1, 20)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGatePassExportCSV(t *testing.T) {
	reviewed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{
			ID: "p1", UserID: "stu-1", StudentNumber: "CSE001", StudentName: "Arun Kumar",
			Department: "Computer Science", Year: "Third Year", Reason: "Family function",
			Destination: "Chennai", Status: models.StatusApproved,
			Remarks: strPtr("Please return on time"), ReviewerName: strPtr("Dr. Meena Gupta"),
			ReviewedAt: &reviewed,
		},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	out, err := svc.ExportCSV(context.Background(), wardenActor())
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "id,student_number,student_name"))
	assert.Contains(t, text, "Arun Kumar")
	assert.Contains(t, text, "APPROVED")

	_, err = svc.ExportCSV(context.Background(), studentActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestGatePassPDFOnlyWhenApproved(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{ID: "p1", UserID: "stu-1", StudentName: "Arun Kumar", Status: models.StatusPending},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	_, err := svc.RenderPassPDF(context.Background(), studentActor(), "p1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotApproved.Code, appErrors.FromError(err).Code)
}

func TestGatePassPDFApproved(t *testing.T) {
	repo := &fakeGatePassRepo{passes: []*models.GatePass{
		{
			ID: "p1", UserID: "stu-1", StudentNumber: "CSE001", StudentName: "Arun Kumar",
			Department: "Computer Science", Year: "Third Year", Reason: "Medical appointment",
			Destination: "City Hospital", Status: models.StatusApproved,
			DepartAt: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
			ReturnAt: time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC),
		},
	}}
	svc := newTestService(repo, &fakeDirectory{}, nil, nil)

	out, err := svc.RenderPassPDF(context.Background(), studentActor(), "p1")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
