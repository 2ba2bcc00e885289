package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/access"
	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/governance/audit"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
)

// CreateAlertInput is a manually raised alert, e.g. a Clogging report.
type CreateAlertInput struct {
	FarmID   int64       `json:"farm_id"`
	Type     string      `json:"type"`
	Severity string      `json:"severity"`
	Message  string      `json:"message"`
	RaisedBy string      `json:"-"`
	Role     domain.Role `json:"-"`
}

// AlertUseCase covers manual alert creation, resolution and deletion.
type AlertUseCase struct {
	alerts      repository.AlertRepository
	farms       repository.FarmRepository
	auditLogger *audit.Logger
	effects
}

// NewAlertUseCase creates a new AlertUseCase.
func NewAlertUseCase(store *repository.Store, notifier AlertNotifier, views ViewInvalidator) *AlertUseCase {
	return &AlertUseCase{
		alerts:  store.Alerts,
		farms:   store.Farms,
		effects: newEffects(notifier, views),
	}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *AlertUseCase) WithAuditLogger(al *audit.Logger) *AlertUseCase {
	uc.auditLogger = al
	return uc
}

// Create validates and stores a new unresolved alert.
func (uc *AlertUseCase) Create(ctx context.Context, in CreateAlertInput) (domain.Alert, error) {
	in.Message = strings.TrimSpace(in.Message)

	var fields []apperrors.FieldError
	alertType, err := domain.ParseAlertType(in.Type)
	if err != nil {
		fields = append(fields, apperrors.FieldError{Field: "type", Code: "enum", Message: err.Error()})
	}
	severity, err := domain.ParseSeverity(in.Severity)
	if err != nil {
		fields = append(fields, apperrors.FieldError{Field: "severity", Code: "enum", Message: err.Error()})
	}
	if in.Message == "" {
		fields = append(fields, apperrors.FieldError{Field: "message", Code: "required"})
	}
	if in.FarmID <= 0 {
		fields = append(fields, apperrors.FieldError{Field: "farm_id", Code: "required"})
	}
	if len(fields) > 0 {
		return domain.Alert{}, apperrors.Validation(fields...)
	}
	if !access.CanRaiseAlert(in.Role, alertType) {
		return domain.Alert{}, apperrors.Forbidden(apperrors.CodeForbidden,
			fmt.Sprintf("role %q may not raise %s alerts", in.Role, alertType))
	}

	if _, err := uc.farms.Get(ctx, in.FarmID); err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Alert{}, apperrors.NotFoundf(apperrors.CodeFarmNotFound, "farm", in.FarmID)
		}
		return domain.Alert{}, apperrors.ReadFailed(err, "farm")
	}

	alert, err := uc.alerts.Create(ctx, domain.NewAlert{
		FarmID:   in.FarmID,
		Type:     alertType,
		Severity: severity,
		Message:  in.Message,
	})
	if err != nil {
		return domain.Alert{}, apperrors.WriteFailed(err, apperrors.CodeAlertWriteFailed, "alert")
	}

	uc.invalidate(ctx, cache.NSAlerts)
	uc.notifier.OnAlertCreated(ctx, alert)
	logger.Info("Alert raised",
		zap.Int64("alert_id", alert.ID),
		zap.Int64("farm_id", alert.FarmID),
		zap.String("type", string(alert.Type)),
		zap.String("raised_by", in.RaisedBy),
	)
	return alert, nil
}

// Resolve marks the alert resolved. Resolving an already resolved alert
// succeeds and leaves it resolved.
func (uc *AlertUseCase) Resolve(ctx context.Context, id int64, actor string) (domain.Alert, error) {
	alert, err := uc.alerts.Resolve(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domain.Alert{}, apperrors.NotFoundf(apperrors.CodeAlertNotFound, "alert", id)
		}
		return domain.Alert{}, apperrors.WriteFailed(err, apperrors.CodeAlertWriteFailed, "alert")
	}

	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogAlert(ctx, "resolve", id, actor)
	}
	uc.invalidate(ctx, cache.NSAlerts)
	uc.notifier.OnAlertResolved(ctx, alert)
	return alert, nil
}

// Delete removes an alert row.
func (uc *AlertUseCase) Delete(ctx context.Context, id int64, actor string) error {
	if err := uc.alerts.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFoundf(apperrors.CodeAlertNotFound, "alert", id)
		}
		return apperrors.WriteFailed(err, apperrors.CodeAlertWriteFailed, "alert")
	}
	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogAlert(ctx, "delete", id, actor)
	}
	uc.invalidate(ctx, cache.NSAlerts)
	return nil
}
