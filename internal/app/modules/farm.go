package modules

import (
	"context"

	"github.com/riverqueue/river"

	"fertigation.io/farmwatch/internal/api/handlers"
	"fertigation.io/farmwatch/internal/jobs"
	"fertigation.io/farmwatch/internal/service"
	"fertigation.io/farmwatch/internal/usecase"
)

// FarmModule wires farms, sensor readings, alerts, the form submissions and
// analytics, plus the alert retention worker.
type FarmModule struct {
	infra     *Infrastructure
	farms     *usecase.FarmUseCase
	readings  *usecase.SubmitReadingUseCase
	alerts    *usecase.AlertUseCase
	forms     *usecase.FormsUseCase
	analytics *service.AnalyticsService
	alertFeed *service.AlertFeed
	retention *jobs.AlertRetentionWorker
}

// NewFarmModule creates the farm module with explicit constructor wiring.
func NewFarmModule(infra *Infrastructure) *FarmModule {
	store := infra.Store
	return &FarmModule{
		infra:     infra,
		farms:     usecase.NewFarmUseCase(store, infra.Views).WithAuditLogger(infra.AuditLogger),
		readings:  usecase.NewSubmitReadingUseCase(store, infra.Notifier, infra.Views),
		alerts:    usecase.NewAlertUseCase(store, infra.Notifier, infra.Views).WithAuditLogger(infra.AuditLogger),
		forms:     usecase.NewFormsUseCase(store),
		analytics: service.NewAnalyticsService(store.Readings, infra.Views),
		alertFeed: service.NewAlertFeed(store.Alerts, infra.Views),
		retention: jobs.NewAlertRetentionWorker(store.Alerts, infra.Views, infra.Config.Alerts.ResolvedRetention).
			WithAuditLogger(infra.AuditLogger),
	}
}

func (m *FarmModule) Name() string { return "farm" }

func (m *FarmModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	if deps == nil {
		return
	}
	deps.Farms = m.farms
	deps.Readings = m.readings
	deps.Alerts = m.alerts
	deps.Forms = m.forms
	deps.Analytics = m.analytics
	deps.AlertFeed = m.alertFeed
}

// RegisterWorkers always registers the retention worker so River has a
// worker for its default queue; scheduling is controlled by PeriodicJobs.
func (m *FarmModule) RegisterWorkers(workers *river.Workers) {
	if workers == nil || m == nil {
		return
	}
	jobs.Register(workers, m.retention)
}

// PeriodicJobs schedules alert retention unless alerts.resolved_retention
// is zero.
func (m *FarmModule) PeriodicJobs() []*river.PeriodicJob {
	if m.infra.Config.Alerts.ResolvedRetention <= 0 {
		return nil
	}
	return jobs.PeriodicJobs()
}

func (m *FarmModule) Shutdown(context.Context) error { return nil }
