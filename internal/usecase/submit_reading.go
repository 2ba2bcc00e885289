package usecase

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
)

// SubmitReadingInput is a new sensor measurement.
type SubmitReadingInput struct {
	SensorID     string  `json:"sensor_id"`
	FlowRate     float64 `json:"flow_rate"`
	Pressure     float64 `json:"pressure"`
	Conductivity float64 `json:"conductivity"`
	SubmittedBy  string  `json:"-"`
}

// Reasons a low-flow reading was stored without its alert.
const (
	SkipSensorNotFound     = "sensor_not_found"
	SkipSensorLookupFailed = "sensor_lookup_failed"
	SkipAlertWriteFailed   = "alert_write_failed"
)

// SubmitReadingOutput reports the stored reading and, for low flow, the
// derived alert or why it was skipped.
type SubmitReadingOutput struct {
	Reading      domain.Reading `json:"reading"`
	Alert        *domain.Alert  `json:"alert,omitempty"`
	AlertSkipped string         `json:"alert_skipped,omitempty"`
}

// SubmitReadingUseCase records readings and derives Low Flow alerts.
type SubmitReadingUseCase struct {
	readings repository.ReadingRepository
	sensors  repository.SensorRepository
	alerts   repository.AlertRepository
	effects
}

// NewSubmitReadingUseCase creates a new SubmitReadingUseCase.
// notifier and views may be nil.
func NewSubmitReadingUseCase(store *repository.Store, notifier AlertNotifier, views ViewInvalidator) *SubmitReadingUseCase {
	return &SubmitReadingUseCase{
		readings: store.Readings,
		sensors:  store.Sensors,
		alerts:   store.Alerts,
		effects:  newEffects(notifier, views),
	}
}

// Execute stores the reading, then for flow below the threshold looks up
// the sensor's farm and inserts a High severity Low Flow alert.
//
// Only the reading insert can fail the call. The reading and alert are not
// written atomically: a missing sensor or failed alert insert leaves the
// reading stored and is reported through AlertSkipped.
func (uc *SubmitReadingUseCase) Execute(ctx context.Context, in SubmitReadingInput) (*SubmitReadingOutput, error) {
	in.SensorID = strings.TrimSpace(in.SensorID)
	if err := validateReading(in); err != nil {
		return nil, err
	}

	reading, err := uc.readings.Create(ctx, domain.NewReading{
		SensorID:     in.SensorID,
		FlowRate:     in.FlowRate,
		Pressure:     in.Pressure,
		Conductivity: in.Conductivity,
		Status:       domain.ReadingStatus(in.FlowRate),
	})
	if err != nil {
		return nil, apperrors.WriteFailed(err, apperrors.CodeReadingWriteFailed, "reading")
	}

	out := &SubmitReadingOutput{Reading: reading}
	if domain.IsLowFlow(in.FlowRate) {
		out.Alert, out.AlertSkipped = uc.deriveAlert(ctx, reading)
	}

	namespaces := []string{cache.NSReadings, cache.NSAnalytics}
	if out.Alert != nil {
		namespaces = append(namespaces, cache.NSAlerts)
	}
	uc.invalidate(ctx, namespaces...)
	if out.Alert != nil {
		uc.notifier.OnAlertCreated(ctx, *out.Alert)
	}

	logger.Info("Reading submitted",
		zap.Int64("reading_id", reading.ID),
		zap.String("sensor_id", reading.SensorID),
		zap.String("status", reading.Status),
		zap.String("submitted_by", in.SubmittedBy),
	)
	return out, nil
}

func (uc *SubmitReadingUseCase) deriveAlert(ctx context.Context, reading domain.Reading) (*domain.Alert, string) {
	sensor, err := uc.sensors.Get(ctx, reading.SensorID)
	if err != nil {
		reason := SkipSensorLookupFailed
		if apperrors.IsNotFound(err) {
			reason = SkipSensorNotFound
		}
		logger.Warn("Low Flow alert skipped: sensor lookup failed",
			zap.Int64("reading_id", reading.ID),
			zap.String("sensor_id", reading.SensorID),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return nil, reason
	}

	alert, err := uc.alerts.Create(ctx, domain.LowFlowAlert(sensor.FarmID, reading.FlowRate))
	if err != nil {
		logger.Error("Low Flow alert skipped: insert failed",
			zap.Int64("reading_id", reading.ID),
			zap.Int64("farm_id", sensor.FarmID),
			zap.Error(err),
		)
		return nil, SkipAlertWriteFailed
	}
	return &alert, ""
}

func validateReading(in SubmitReadingInput) error {
	var fields []apperrors.FieldError
	if in.SensorID == "" {
		fields = append(fields, apperrors.FieldError{Field: "sensor_id", Code: "required"})
	}
	numeric := []struct {
		field string
		v     float64
	}{
		{"flow_rate", in.FlowRate},
		{"pressure", in.Pressure},
		{"conductivity", in.Conductivity},
	}
	for _, n := range numeric {
		if math.IsNaN(n.v) || math.IsInf(n.v, 0) {
			fields = append(fields, apperrors.FieldError{Field: n.field, Code: "numeric"})
		}
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}
