package usecase

import (
	"context"
	"errors"
	"strings"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	"fertigation.io/farmwatch/internal/governance/audit"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

// FarmUseCase creates and deletes farms.
type FarmUseCase struct {
	farms       repository.FarmRepository
	auditLogger *audit.Logger
	effects
}

// NewFarmUseCase creates a new FarmUseCase.
func NewFarmUseCase(store *repository.Store, views ViewInvalidator) *FarmUseCase {
	return &FarmUseCase{farms: store.Farms, effects: newEffects(nil, views)}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (uc *FarmUseCase) WithAuditLogger(al *audit.Logger) *FarmUseCase {
	uc.auditLogger = al
	return uc
}

// Create stores a farm. Name is required and unique.
func (uc *FarmUseCase) Create(ctx context.Context, in domain.NewFarm, actor string) (domain.Farm, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.CropType = strings.TrimSpace(in.CropType)
	if in.Name == "" {
		return domain.Farm{}, apperrors.Validation(apperrors.FieldError{Field: "name", Code: "required"})
	}

	farm, err := uc.farms.Create(ctx, in)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return domain.Farm{}, apperrors.Validation(apperrors.FieldError{Field: "name", Code: "unique"})
		}
		return domain.Farm{}, apperrors.WriteFailed(err, apperrors.CodeFarmWriteFailed, "farm")
	}
	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogFarm(ctx, "create", farm.ID, actor, map[string]interface{}{"name": farm.Name})
	}
	return farm, nil
}

// Delete removes a farm. Its sensors, alerts and schedules go with it.
func (uc *FarmUseCase) Delete(ctx context.Context, id int64, actor string) error {
	if err := uc.farms.Delete(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NotFoundf(apperrors.CodeFarmNotFound, "farm", id)
		}
		return apperrors.WriteFailed(err, apperrors.CodeFarmWriteFailed, "farm")
	}
	if uc.auditLogger != nil {
		_ = uc.auditLogger.LogFarm(ctx, "delete", id, actor, nil)
	}
	uc.invalidate(ctx, cache.NSReadings, cache.NSAlerts, cache.NSAnalytics)
	return nil
}
