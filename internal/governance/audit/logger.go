// Package audit records who changed what.
//
// Audit logs are append-only. There is no update or delete path.
//
// Import Path: fertigation.io/farmwatch/internal/governance/audit
package audit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fertigation.io/farmwatch/internal/pkg/logger"
	"fertigation.io/farmwatch/internal/repository"
)

// Logger writes audit records to the store.
type Logger struct {
	repo repository.AuditLogRepository
}

// NewLogger creates a new audit Logger.
func NewLogger(repo repository.AuditLogRepository) *Logger {
	return &Logger{repo: repo}
}

// LogAction records an auditable action.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) error {
	if l == nil || l.repo == nil {
		return nil
	}
	err := l.repo.Append(ctx, repository.AuditEntry{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		Details:      details,
	})
	if err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// LogAlert records an alert mutation (alert.resolve, alert.delete).
func (l *Logger) LogAlert(ctx context.Context, operation string, alertID int64, actor string) error {
	return l.LogAction(ctx, "alert."+operation, "alert", strconv.FormatInt(alertID, 10), actor, nil)
}

// LogFarm records a farm mutation.
func (l *Logger) LogFarm(ctx context.Context, operation string, farmID int64, actor string, details map[string]interface{}) error {
	return l.LogAction(ctx, "farm."+operation, "farm", strconv.FormatInt(farmID, 10), actor, details)
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
