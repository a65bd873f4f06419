package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciet-hostel/gatepass-api/internal/models"
)

func gatePassRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "student_number", "student_name", "department", "year",
		"reason", "destination", "depart_at", "return_at", "parent_phone",
		"status", "remarks", "reviewer_id", "reviewer_name", "created_at", "reviewed_at",
	}).AddRow(
		"p1", "stu-1", "CSE001", "Arun Kumar", "Computer Science", "Third Year",
		"Family function", "Chennai", now.Add(24*time.Hour), now.Add(72*time.Hour), "9876543211",
		string(models.StatusPending), nil, nil, nil, now, nil,
	)
}

func TestGatePassInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	mock.ExpectExec("INSERT INTO gate_passes").WillReturnResult(sqlmock.NewResult(1, 1))

	pass := &models.GatePass{
		UserID: "stu-1", StudentNumber: "CSE001", StudentName: "Arun Kumar",
		Reason: "Family function", Destination: "Chennai",
		DepartAt: time.Now().Add(24 * time.Hour), ReturnAt: time.Now().Add(72 * time.Hour),
		ParentPhone: "9876543211", Status: models.StatusPending,
	}
	err := repo.Insert(context.Background(), pass)
	require.NoError(t, err)
	assert.NotEmpty(t, pass.ID)
	assert.False(t, pass.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, student_number, student_name, department, year, reason, destination, depart_at, return_at, parent_phone, status, remarks, reviewer_id, reviewer_name, created_at, reviewed_at FROM gate_passes WHERE id = $1 LIMIT 1")).
		WithArgs("p1").
		WillReturnRows(gatePassRows(now))

	pass, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", pass.ID)
	assert.Equal(t, models.StatusPending, pass.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	mock.ExpectQuery("SELECT .* FROM gate_passes WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM gate_passes WHERE 1=1 AND user_id = $1 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs("stu-1").
		WillReturnRows(gatePassRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM gate_passes WHERE 1=1 AND user_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	passes, total, err := repo.List(context.Background(), models.GatePassFilter{UserID: "stu-1"})
	require.NoError(t, err)
	assert.Len(t, passes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassListByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	now := time.Now()
	pending := models.StatusPending
	mock.ExpectQuery(regexp.QuoteMeta("FROM gate_passes WHERE 1=1 AND status = $1 ORDER BY created_at ASC LIMIT 20 OFFSET 0")).
		WithArgs(pending).
		WillReturnRows(gatePassRows(now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM gate_passes WHERE 1=1 AND status = $1")).
		WithArgs(pending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	passes, total, err := repo.List(context.Background(), models.GatePassFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, passes, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassMarkReviewed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	reviewedAt := time.Now()
	remarks := "Please return on time"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE gate_passes SET status = $2, remarks = $3, reviewer_id = $4, reviewer_name = $5, reviewed_at = $6 WHERE id = $1 AND status = 'PENDING'")).
		WithArgs("p1", string(models.StatusApproved), remarks, "war-1", "Dr. Rajesh Patel", reviewedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkReviewed(context.Background(), "p1", models.StatusApproved, &remarks, "war-1", "Dr. Rajesh Patel", reviewedAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassMarkReviewedAlreadyTerminal(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	mock.ExpectExec("UPDATE gate_passes SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkReviewed(context.Background(), "p1", models.StatusRejected, nil, "war-1", "Dr. Rajesh Patel", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassCountsByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	mock.ExpectQuery("COUNT\\(\\*\\) FILTER").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "approved", "rejected"}).AddRow(3, 5, 1))

	counts, err := repo.CountsByStatus(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, counts.Pending)
	assert.Equal(t, 5, counts.Approved)
	assert.Equal(t, 1, counts.Rejected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassCountsByStatusForUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"pending", "approved", "rejected"}).AddRow(1, 0, 0))

	counts, err := repo.CountsByStatus(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatePassRecent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGatePassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM gate_passes ORDER BY created_at DESC LIMIT 5")).
		WillReturnRows(gatePassRows(now))

	passes, err := repo.Recent(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Len(t, passes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
