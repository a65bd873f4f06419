package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ciet-hostel/gatepass-api/pkg/config"
	"github.com/ciet-hostel/gatepass-api/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL,
    role          TEXT NOT NULL,
    student_number TEXT,
    department    TEXT,
    year          TEXT,
    phone         TEXT,
    parent_phone  TEXT,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    last_login    TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS gate_passes (
    id             UUID PRIMARY KEY,
    user_id        UUID NOT NULL REFERENCES users(id),
    student_number TEXT NOT NULL,
    student_name   TEXT NOT NULL,
    department     TEXT NOT NULL,
    year           TEXT NOT NULL,
    reason         TEXT NOT NULL,
    destination    TEXT NOT NULL,
    depart_at      TIMESTAMPTZ NOT NULL,
    return_at      TIMESTAMPTZ NOT NULL,
    parent_phone   TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'PENDING',
    remarks        TEXT,
    reviewer_id    UUID,
    reviewer_name  TEXT,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    reviewed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_gate_passes_user_id ON gate_passes(user_id);
CREATE INDEX IF NOT EXISTS idx_gate_passes_status ON gate_passes(status);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL REFERENCES users(id),
    token      TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked    BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id          UUID PRIMARY KEY,
    user_id     UUID,
    action      TEXT NOT NULL,
    resource    TEXT NOT NULL,
    resource_id TEXT,
    detail      JSONB,
    ip_address  TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type seedUser struct {
	Email         string
	Password      string
	FullName      string
	Role          string
	StudentNumber *string
	Department    *string
	Year          *string
	Phone         *string
	ParentPhone   *string
}

func str(s string) *string { return &s }

func main() {
	var withSamples bool
	flag.BoolVar(&withSamples, "samples", true, "insert sample gate passes alongside accounts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("schema creation failed: %v", err)
	}

	users := []seedUser{
		{
			Email: "arun@ciet.edu", Password: "student123", FullName: "Arun Kumar", Role: "STUDENT",
			StudentNumber: str("CSE001"), Department: str("Computer Science"), Year: str("Third Year"),
			Phone: str("9876543210"), ParentPhone: str("9876543211"),
		},
		{
			Email: "priya@ciet.edu", Password: "student123", FullName: "Priya Sharma", Role: "STUDENT",
			StudentNumber: str("ECE001"), Department: str("Electronics"), Year: str("Second Year"),
			Phone: str("9876543212"), ParentPhone: str("9876543213"),
		},
		{
			Email: "rajesh@ciet.edu", Password: "warden123", FullName: "Dr. Rajesh Patel", Role: "WARDEN",
			Department: str("Boys Hostel"),
		},
		{
			Email: "meena@ciet.edu", Password: "warden123", FullName: "Dr. Meena Gupta", Role: "WARDEN",
			Department: str("Girls Hostel"),
		},
		{
			Email: "admin@ciet.edu", Password: "admin123", FullName: "Prof. Suresh Kumar", Role: "ADMIN",
		},
	}

	ids := make(map[string]string, len(users))
	for _, u := range users {
		id, err := upsertUser(ctx, db, u)
		if err != nil {
			log.Fatalf("seeding %s failed: %v", u.Email, err)
		}
		ids[u.Email] = id
		log.Printf("seeded %-18s role=%s id=%s", u.Email, u.Role, id)
	}

	if !withSamples {
		return
	}

	if err := insertSamples(ctx, db, ids); err != nil {
		log.Fatalf("seeding sample passes failed: %v", err)
	}
	log.Printf("seeded sample gate passes")
}

func upsertUser(ctx context.Context, db *sqlx.DB, u seedUser) (string, error) {
	var existing string
	err := db.GetContext(ctx, &existing, `SELECT id FROM users WHERE email = $1`, u.Email)
	if err == nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, student_number, department, year, phone, parent_phone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)`,
		id, u.Email, string(hash), u.FullName, u.Role, u.StudentNumber, u.Department, u.Year, u.Phone, u.ParentPhone,
	)
	return id, err
}

func insertSamples(ctx context.Context, db *sqlx.DB, ids map[string]string) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM gate_passes`); err != nil {
		return err
	}
	if count > 0 {
		log.Printf("gate_passes not empty, skipping samples")
		return nil
	}

	now := time.Now()
	type sample struct {
		owner        string
		reason       string
		destination  string
		departOffset time.Duration
		duration     time.Duration
		status       string
		remarks      *string
		reviewer     string
	}

	samples := []sample{
		{
			owner: "arun@ciet.edu", reason: "Family function", destination: "Chennai",
			departOffset: 48 * time.Hour, duration: 72 * time.Hour, status: "PENDING",
		},
		{
			owner: "priya@ciet.edu", reason: "Medical appointment", destination: "City Hospital",
			departOffset: 24 * time.Hour, duration: 6 * time.Hour, status: "APPROVED",
			remarks: str("Please return on time"), reviewer: "meena@ciet.edu",
		},
		{
			owner: "arun@ciet.edu", reason: "Technical workshop", destination: "Coimbatore",
			departOffset: 96 * time.Hour, duration: 48 * time.Hour, status: "REJECTED",
			remarks: str("Attendance shortage. Cannot approve at this time."), reviewer: "rajesh@ciet.edu",
		},
	}

	for _, s := range samples {
		var owner struct {
			ID            string  `db:"id"`
			FullName      string  `db:"full_name"`
			StudentNumber *string `db:"student_number"`
			Department    *string `db:"department"`
			Year          *string `db:"year"`
			ParentPhone   *string `db:"parent_phone"`
		}
		if err := db.GetContext(ctx, &owner,
			`SELECT id, full_name, student_number, department, year, parent_phone FROM users WHERE id = $1`,
			ids[s.owner],
		); err != nil {
			return err
		}

		var (
			reviewerID   *string
			reviewerName *string
			reviewedAt   *time.Time
		)
		if s.reviewer != "" {
			rid := ids[s.reviewer]
			var name string
			if err := db.GetContext(ctx, &name, `SELECT full_name FROM users WHERE id = $1`, rid); err != nil {
				return err
			}
			ts := now.Add(-1 * time.Hour)
			reviewerID, reviewerName, reviewedAt = &rid, &name, &ts
		}

		depart := now.Add(s.departOffset)
		_, err := db.ExecContext(ctx, `
			INSERT INTO gate_passes (id, user_id, student_number, student_name, department, year, reason, destination,
			                         depart_at, return_at, parent_phone, status, remarks, reviewer_id, reviewer_name, created_at, reviewed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			uuid.NewString(), owner.ID, deref(owner.StudentNumber), owner.FullName, deref(owner.Department), deref(owner.Year),
			s.reason, s.destination, depart, depart.Add(s.duration), deref(owner.ParentPhone),
			s.status, s.remarks, reviewerID, reviewerName, now.Add(-2*time.Hour), reviewedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
