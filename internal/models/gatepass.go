package models

import "time"

// GatePassStatus is the lifecycle state of a gate pass. A pass starts
// PENDING and moves exactly once to APPROVED or REJECTED; there is no
// re-review or reversal.
type GatePassStatus string

const (
	StatusPending  GatePassStatus = "PENDING"
	StatusApproved GatePassStatus = "APPROVED"
	StatusRejected GatePassStatus = "REJECTED"
)

// Valid reports whether the status is one of the known states.
func (s GatePassStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status ends the review lifecycle.
func (s GatePassStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// GatePass is one leave request. Student profile fields are denormalized
// onto the record at submission time so the pass stays printable even if the
// directory changes later.
type GatePass struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	StudentNumber string         `db:"student_number" json:"student_number"`
	StudentName   string         `db:"student_name" json:"student_name"`
	Department    string         `db:"department" json:"department"`
	Year          string         `db:"year" json:"year"`
	Reason        string         `db:"reason" json:"reason"`
	Destination   string         `db:"destination" json:"destination"`
	DepartAt      time.Time      `db:"depart_at" json:"depart_at"`
	ReturnAt      time.Time      `db:"return_at" json:"return_at"`
	ParentPhone   string         `db:"parent_phone" json:"parent_phone"`
	Status        GatePassStatus `db:"status" json:"status"`
	Remarks       *string        `db:"remarks" json:"remarks,omitempty"`
	ReviewerID    *string        `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewerName  *string        `db:"reviewer_name" json:"reviewer_name,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	ReviewedAt    *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// GatePassFilter captures list query parameters.
type GatePassFilter struct {
	UserID   string
	Status   *GatePassStatus
	Page     int
	PageSize int
}

// CreateGatePassRequest is the student submission payload.
type CreateGatePassRequest struct {
	Reason      string    `json:"reason" validate:"required,min=3"`
	Destination string    `json:"destination" validate:"required,min=2"`
	DepartAt    time.Time `json:"depart_at" validate:"required"`
	ReturnAt    time.Time `json:"return_at" validate:"required"`
}

// ReviewGatePassRequest is the warden/admin decision payload.
type ReviewGatePassRequest struct {
	Decision GatePassStatus `json:"decision" validate:"required"`
	Remarks  string         `json:"remarks" validate:"max=500"`
}

// StatusCounts aggregates the register by lifecycle state.
type StatusCounts struct {
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

// DashboardSummary is the dashboard payload.
type DashboardSummary struct {
	Counts      StatusCounts `json:"counts"`
	Recent      []GatePass   `json:"recent"`
	GeneratedAt time.Time    `json:"generated_at"`
}
