package usecase

import (
	"context"
	"math"
	"net/mail"
	"strings"
	"time"

	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

// ScheduleInput plans a fertigation run.
type ScheduleInput struct {
	FarmID           int64     `json:"farm_id"`
	StartTime        time.Time `json:"start_time"`
	Duration         int32     `json:"duration"`
	FertilizerAmount float64   `json:"fertilizer_amount"`
}

// ReportInput is a research report submission.
type ReportInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
}

// ContactInput is a public contact form message.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// FormsUseCase stores the append-only form submissions: schedules, reports
// and contact queries.
type FormsUseCase struct {
	farms     repository.FarmRepository
	schedules repository.ScheduleRepository
	reports   repository.ReportRepository
	contacts  repository.ContactQueryRepository
}

// NewFormsUseCase creates a new FormsUseCase.
func NewFormsUseCase(store *repository.Store) *FormsUseCase {
	return &FormsUseCase{
		farms:     store.Farms,
		schedules: store.Schedules,
		reports:   store.Reports,
		contacts:  store.ContactQueries,
	}
}

// CreateSchedule stores a schedule for an existing farm.
func (uc *FormsUseCase) CreateSchedule(ctx context.Context, in ScheduleInput) (domain.Schedule, error) {
	var fields []apperrors.FieldError
	if in.FarmID <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "farm_id", Code: "required"})
	}
	if in.StartTime.IsZero() {
		fields = append(fields, apperrors.FieldError{Field: "start_time", Code: "required"})
	}
	if in.Duration <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "duration", Code: "positive"})
	}
	if math.IsNaN(in.FertilizerAmount) || math.IsInf(in.FertilizerAmount, 0) || in.FertilizerAmount < 0 {
		fields = append(fields, apperrors.FieldError{Field: "fertilizer_amount", Code: "numeric"})
	}
	if len(fields) > 0 {
		return domain.Schedule{}, apperrors.Validation(fields...)
	}

	if _, err := uc.farms.Get(ctx, in.FarmID); err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Schedule{}, apperrors.NotFoundf(apperrors.CodeFarmNotFound, "farm", in.FarmID)
		}
		return domain.Schedule{}, apperrors.ReadFailed(err, "farm")
	}

	schedule, err := uc.schedules.Create(ctx, domain.NewSchedule{
		FarmID:           in.FarmID,
		StartTime:        in.StartTime.UTC(),
		Duration:         in.Duration,
		FertilizerAmount: in.FertilizerAmount,
	})
	if err != nil {
		return domain.Schedule{}, apperrors.WriteFailed(err, apperrors.CodeScheduleWriteFailed, "schedule")
	}
	return schedule, nil
}

// SubmitReport stores a report authored by userID.
func (uc *FormsUseCase) SubmitReport(ctx context.Context, userID string, in ReportInput) (domain.Report, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.Report{}, apperrors.Validation(apperrors.FieldError{Field: "title", Code: "required"})
	}
	report, err := uc.reports.Create(ctx, domain.NewReport{
		UserID:      userID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		FileURL:     strings.TrimSpace(in.FileURL),
	})
	if err != nil {
		return domain.Report{}, apperrors.WriteFailed(err, apperrors.CodeReportWriteFailed, "report")
	}
	return report, nil
}

// SubmitContact stores a contact query. No account is needed.
func (uc *FormsUseCase) SubmitContact(ctx context.Context, in ContactInput) (domain.ContactQuery, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	var fields []apperrors.FieldError
	if in.Name == "" {
		fields = append(fields, apperrors.FieldError{Field: "name", Code: "required"})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		fields = append(fields, apperrors.FieldError{Field: "email", Code: "format"})
	}
	if in.Message == "" {
		fields = append(fields, apperrors.FieldError{Field: "message", Code: "required"})
	}
	if len(fields) > 0 {
		return domain.ContactQuery{}, apperrors.Validation(fields...)
	}

	q, err := uc.contacts.Create(ctx, domain.NewContactQuery{Name: in.Name, Email: in.Email, Message: in.Message})
	if err != nil {
		return domain.ContactQuery{}, apperrors.WriteFailed(err, apperrors.CodeContactWriteFailed, "contact query")
	}
	return q, nil
}
