package postgres

import (
	"context"

	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/repository"
)

const profileColumns = `id, name, email, role, created_at`

// ProfileRepo implements repository.ProfileRepository.
type ProfileRepo struct{ db DBTX }

func (r *ProfileRepo) Create(ctx context.Context, in domain.NewProfile) (domain.Profile, error) {
	return one[domain.Profile](ctx, r.db, "create profile",
		`INSERT INTO profiles (id, name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+profileColumns,
		in.ID, in.Name, in.Email, string(in.Role), in.PasswordHash)
}

func (r *ProfileRepo) Get(ctx context.Context, id string) (domain.Profile, error) {
	return one[domain.Profile](ctx, r.db, "get profile",
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *ProfileRepo) CredentialsByEmail(ctx context.Context, email string) (domain.Credentials, error) {
	return one[domain.Credentials](ctx, r.db, "get credentials",
		`SELECT `+profileColumns+`, password_hash FROM profiles WHERE lower(email) = lower($1)`, email)
}

func (r *ProfileRepo) List(ctx context.Context) ([]domain.Profile, error) {
	return collect[domain.Profile](ctx, r.db, "list profiles",
		`SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC`)
}

const reportColumns = `id, user_id, title, description, file_url, submitted_at`

// ReportRepo implements repository.ReportRepository.
type ReportRepo struct{ db DBTX }

func (r *ReportRepo) Create(ctx context.Context, in domain.NewReport) (domain.Report, error) {
	return one[domain.Report](ctx, r.db, "create report",
		`INSERT INTO reports (user_id, title, description, file_url)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, '')) RETURNING `+reportColumns,
		in.UserID, in.Title, in.Description, in.FileURL)
}

func (r *ReportRepo) List(ctx context.Context, limit int) ([]domain.ReportView, error) {
	limit = repository.ClampLimit(limit, repository.DefaultListLimit, 1000)
	return collect[domain.ReportView](ctx, r.db, "list reports",
		`SELECT r.id, r.user_id, r.title, r.description, r.file_url, r.submitted_at,
		        p.name AS author_name
		   FROM reports r
		   LEFT JOIN profiles p ON p.id = r.user_id
		  ORDER BY r.submitted_at DESC
		  LIMIT $1`, limit)
}

const contactColumns = `id, name, email, message, created_at`

// ContactQueryRepo implements repository.ContactQueryRepository.
type ContactQueryRepo struct{ db DBTX }

func (r *ContactQueryRepo) Create(ctx context.Context, in domain.NewContactQuery) (domain.ContactQuery, error) {
	return one[domain.ContactQuery](ctx, r.db, "create contact query",
		`INSERT INTO contact_queries (name, email, message) VALUES ($1, $2, $3)
		 RETURNING `+contactColumns,
		in.Name, in.Email, in.Message)
}

func (r *ContactQueryRepo) List(ctx context.Context, limit int) ([]domain.ContactQuery, error) {
	limit = repository.ClampLimit(limit, repository.DefaultListLimit, 1000)
	return collect[domain.ContactQuery](ctx, r.db, "list contact queries",
		`SELECT `+contactColumns+` FROM contact_queries ORDER BY created_at DESC LIMIT $1`, limit)
}

const auditColumns = `id, action, resource_type, resource_id, actor, details, created_at`

// AuditLogRepo implements repository.AuditLogRepository.
type AuditLogRepo struct{ db DBTX }

func (r *AuditLogRepo) Append(ctx context.Context, e repository.AuditEntry) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_logs (id, action, resource_type, resource_id, actor, details)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Action, e.ResourceType, e.ResourceID, e.Actor, e.Details)
	return mapErr("append audit log", err)
}

func (r *AuditLogRepo) List(ctx context.Context, limit int) ([]repository.AuditEntry, error) {
	limit = repository.ClampLimit(limit, repository.DefaultListLimit, 1000)
	return collect[repository.AuditEntry](ctx, r.db, "list audit logs",
		`SELECT `+auditColumns+` FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
}
