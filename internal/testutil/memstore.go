package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

// MemStore is an in-memory repository.Store for unit tests. It mirrors the
// ordering and join behavior of the PostgreSQL store.
//
// Fail injects errors: a key like "readings.create" makes that operation
// return the mapped error.
type MemStore struct {
	mu sync.Mutex

	Fail map[string]error
	Now  func() time.Time

	nextID   int64
	farms    map[int64]domain.Farm
	sensors  map[string]domain.Sensor
	readings []domain.Reading
	alerts   map[int64]domain.Alert
	sched    []domain.Schedule
	reports  []domain.Report
	profiles map[string]domain.Credentials
	contacts []domain.ContactQuery
	audit    []repository.AuditEntry
}

// NewMemStore returns an empty store whose clock advances one second per write.
func NewMemStore() *MemStore {
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var tick int64
	return &MemStore{
		Fail: map[string]error{},
		Now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
		farms:    map[int64]domain.Farm{},
		sensors:  map[string]domain.Sensor{},
		alerts:   map[int64]domain.Alert{},
		profiles: map[string]domain.Credentials{},
	}
}

// Store exposes m through the repository interfaces.
func (m *MemStore) Store() *repository.Store {
	return &repository.Store{
		Farms:          memFarms{m},
		Sensors:        memSensors{m},
		Readings:       memReadings{m},
		Alerts:         memAlerts{m},
		Schedules:      memSchedules{m},
		Reports:        memReports{m},
		Profiles:       memProfiles{m},
		ContactQueries: memContacts{m},
		AuditLogs:      memAudit{m},
	}
}

// Alerts returns a snapshot of every stored alert ordered by id.
func (m *MemStore) Alerts() []domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Readings returns a snapshot of every stored reading in insert order.
func (m *MemStore) Readings() []domain.Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Reading(nil), m.readings...)
}

// AuditEntries returns a snapshot of the audit log in append order.
func (m *MemStore) AuditEntries() []repository.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.AuditEntry(nil), m.audit...)
}

// PutReading stores r verbatim, for tests that need fixed timestamps.
func (m *MemStore) PutReading(r domain.Reading) domain.Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.id()
	}
	m.readings = append(m.readings, r)
	return r
}

// PutAlert stores a verbatim, for tests that need fixed timestamps.
func (m *MemStore) PutAlert(a domain.Alert) domain.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.id()
	}
	m.alerts[a.ID] = a
	return a
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemStore) fail(op string) error {
	if err, ok := m.Fail[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
}

func limitOf(limit int) int {
	return repository.ClampLimit(limit, repository.DefaultListLimit, 1000)
}

func strPtr(s string) *string { return &s }

type memFarms struct{ m *MemStore }

func (r memFarms) List(ctx context.Context) ([]domain.Farm, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("farms.list"); err != nil {
		return nil, err
	}
	out := make([]domain.Farm, 0, len(r.m.farms))
	for _, f := range r.m.farms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memFarms) Get(ctx context.Context, id int64) (domain.Farm, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	f, ok := r.m.farms[id]
	if !ok {
		return domain.Farm{}, notFound("get farm")
	}
	return f, nil
}

func (r memFarms) Create(ctx context.Context, in domain.NewFarm) (domain.Farm, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("farms.create"); err != nil {
		return domain.Farm{}, err
	}
	for _, f := range r.m.farms {
		if f.Name == in.Name {
			return domain.Farm{}, fmt.Errorf("create farm: %w", apperrors.ErrAlreadyExists)
		}
	}
	f := domain.Farm{ID: r.m.id(), Name: in.Name, Location: in.Location, CropType: in.CropType, CreatedAt: r.m.Now()}
	r.m.farms[f.ID] = f
	return f, nil
}

func (r memFarms) Upsert(ctx context.Context, in domain.NewFarm) (domain.Farm, error) {
	r.m.mu.Lock()
	for id, f := range r.m.farms {
		if f.Name == in.Name {
			f.Location, f.CropType = in.Location, in.CropType
			r.m.farms[id] = f
			r.m.mu.Unlock()
			return f, nil
		}
	}
	r.m.mu.Unlock()
	return r.Create(ctx, in)
}

// Delete cascades to sensors, alerts and schedules like the SQL schema.
func (r memFarms) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("farms.delete"); err != nil {
		return err
	}
	if _, ok := r.m.farms[id]; !ok {
		return notFound("delete farm")
	}
	delete(r.m.farms, id)
	for sid, s := range r.m.sensors {
		if s.FarmID == id {
			delete(r.m.sensors, sid)
		}
	}
	for aid, a := range r.m.alerts {
		if a.FarmID == id {
			delete(r.m.alerts, aid)
		}
	}
	kept := r.m.sched[:0]
	for _, s := range r.m.sched {
		if s.FarmID != id {
			kept = append(kept, s)
		}
	}
	r.m.sched = kept
	return nil
}

type memSensors struct{ m *MemStore }

func (r memSensors) Get(ctx context.Context, id string) (domain.Sensor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("sensors.get"); err != nil {
		return domain.Sensor{}, err
	}
	s, ok := r.m.sensors[id]
	if !ok {
		return domain.Sensor{}, notFound("get sensor")
	}
	return s, nil
}

func (r memSensors) List(ctx context.Context, farmID *int64) ([]domain.Sensor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Sensor{}
	for _, s := range r.m.sensors {
		if farmID == nil || s.FarmID == *farmID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSensors) Upsert(ctx context.Context, s domain.Sensor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.farms[s.FarmID]; !ok {
		return fmt.Errorf("upsert sensor: farm %d does not exist", s.FarmID)
	}
	r.m.sensors[s.ID] = s
	return nil
}

type memReadings struct{ m *MemStore }

func (r memReadings) Create(ctx context.Context, in domain.NewReading) (domain.Reading, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("readings.create"); err != nil {
		return domain.Reading{}, err
	}
	rd := domain.Reading{
		ID:           r.m.id(),
		SensorID:     in.SensorID,
		FlowRate:     in.FlowRate,
		Pressure:     in.Pressure,
		Conductivity: in.Conductivity,
		Status:       in.Status,
		Timestamp:    r.m.Now(),
	}
	r.m.readings = append(r.m.readings, rd)
	return rd, nil
}

func (r memReadings) ListRecent(ctx context.Context, f repository.ReadingFilter) ([]domain.ReadingView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("readings.list"); err != nil {
		return nil, err
	}
	sorted := append([]domain.Reading(nil), r.m.readings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		}
		return sorted[i].ID > sorted[j].ID
	})
	limit := limitOf(f.Limit)
	out := []domain.ReadingView{}
	for _, rd := range sorted {
		if f.SensorID != nil && rd.SensorID != *f.SensorID {
			continue
		}
		v := domain.ReadingView{Reading: rd}
		if s, ok := r.m.sensors[rd.SensorID]; ok {
			if farm, ok := r.m.farms[s.FarmID]; ok {
				id := farm.ID
				v.FarmID = &id
				v.FarmName = strPtr(farm.Name)
			}
		}
		if f.FarmID != nil && (v.FarmID == nil || *v.FarmID != *f.FarmID) {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memAlerts struct{ m *MemStore }

func (r memAlerts) Create(ctx context.Context, in domain.NewAlert) (domain.Alert, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("alerts.create"); err != nil {
		return domain.Alert{}, err
	}
	if _, ok := r.m.farms[in.FarmID]; !ok {
		return domain.Alert{}, fmt.Errorf("create alert: farm %d does not exist", in.FarmID)
	}
	a := domain.Alert{
		ID:        r.m.id(),
		FarmID:    in.FarmID,
		Type:      in.Type,
		Severity:  in.Severity,
		Message:   in.Message,
		CreatedAt: r.m.Now(),
	}
	r.m.alerts[a.ID] = a
	return a, nil
}

func (r memAlerts) Get(ctx context.Context, id int64) (domain.Alert, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.alerts[id]
	if !ok {
		return domain.Alert{}, notFound("get alert")
	}
	return a, nil
}

func (r memAlerts) List(ctx context.Context, f domain.AlertFilter, limit int) ([]domain.AlertView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("alerts.list"); err != nil {
		return nil, err
	}
	out := []domain.AlertView{}
	for _, a := range r.m.alerts {
		if f.Severity != nil && a.Severity != *f.Severity {
			continue
		}
		if f.Resolved != nil && a.Resolved != *f.Resolved {
			continue
		}
		if f.FarmID != nil && a.FarmID != *f.FarmID {
			continue
		}
		v := domain.AlertView{Alert: a}
		if farm, ok := r.m.farms[a.FarmID]; ok {
			v.FarmName = strPtr(farm.Name)
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r memAlerts) Resolve(ctx context.Context, id int64) (domain.Alert, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("alerts.resolve"); err != nil {
		return domain.Alert{}, err
	}
	a, ok := r.m.alerts[id]
	if !ok {
		return domain.Alert{}, notFound("resolve alert")
	}
	if a.ResolvedAt == nil {
		at := r.m.Now()
		a.ResolvedAt = &at
	}
	a.Resolved = true
	r.m.alerts[id] = a
	return a, nil
}

func (r memAlerts) Delete(ctx context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.alerts[id]; !ok {
		return notFound("delete alert")
	}
	delete(r.m.alerts, id)
	return nil
}

func (r memAlerts) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("alerts.delete_resolved"); err != nil {
		return 0, err
	}
	var n int64
	for id, a := range r.m.alerts {
		if !a.Resolved {
			continue
		}
		at := a.CreatedAt
		if a.ResolvedAt != nil {
			at = *a.ResolvedAt
		}
		if at.Before(cutoff) {
			delete(r.m.alerts, id)
			n++
		}
	}
	return n, nil
}

type memSchedules struct{ m *MemStore }

func (r memSchedules) Create(ctx context.Context, in domain.NewSchedule) (domain.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("schedules.create"); err != nil {
		return domain.Schedule{}, err
	}
	if _, ok := r.m.farms[in.FarmID]; !ok {
		return domain.Schedule{}, fmt.Errorf("create schedule: farm %d does not exist", in.FarmID)
	}
	s := domain.Schedule{
		ID:               r.m.id(),
		FarmID:           in.FarmID,
		StartTime:        in.StartTime,
		Duration:         in.Duration,
		FertilizerAmount: in.FertilizerAmount,
		CreatedAt:        r.m.Now(),
	}
	r.m.sched = append(r.m.sched, s)
	return s, nil
}

func (r memSchedules) List(ctx context.Context, farmID *int64, limit int) ([]domain.Schedule, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.Schedule{}
	for _, s := range r.m.sched {
		if farmID == nil || s.FarmID == *farmID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type memReports struct{ m *MemStore }

func (r memReports) Create(ctx context.Context, in domain.NewReport) (domain.Report, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("reports.create"); err != nil {
		return domain.Report{}, err
	}
	rep := domain.Report{ID: r.m.id(), UserID: in.UserID, Title: in.Title, SubmittedAt: r.m.Now()}
	if in.Description != "" {
		rep.Description = strPtr(in.Description)
	}
	if in.FileURL != "" {
		rep.FileURL = strPtr(in.FileURL)
	}
	r.m.reports = append(r.m.reports, rep)
	return rep, nil
}

func (r memReports) List(ctx context.Context, limit int) ([]domain.ReportView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := []domain.ReportView{}
	for i := len(r.m.reports) - 1; i >= 0; i-- {
		rep := r.m.reports[i]
		v := domain.ReportView{Report: rep}
		if p, ok := r.m.profiles[rep.UserID]; ok {
			v.AuthorName = strPtr(p.Name)
		}
		out = append(out, v)
	}
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type memProfiles struct{ m *MemStore }

func (r memProfiles) Create(ctx context.Context, in domain.NewProfile) (domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("profiles.create"); err != nil {
		return domain.Profile{}, err
	}
	for _, c := range r.m.profiles {
		if strings.EqualFold(c.Email, in.Email) {
			return domain.Profile{}, fmt.Errorf("create profile: %w", apperrors.ErrAlreadyExists)
		}
	}
	p := domain.Profile{ID: in.ID, Name: in.Name, Email: in.Email, Role: in.Role, CreatedAt: r.m.Now()}
	r.m.profiles[p.ID] = domain.Credentials{Profile: p, PasswordHash: in.PasswordHash}
	return p, nil
}

func (r memProfiles) Get(ctx context.Context, id string) (domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.profiles[id]
	if !ok {
		return domain.Profile{}, notFound("get profile")
	}
	return c.Profile, nil
}

func (r memProfiles) CredentialsByEmail(ctx context.Context, email string) (domain.Credentials, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.profiles {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return domain.Credentials{}, notFound("get credentials")
}

func (r memProfiles) List(ctx context.Context) ([]domain.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.Profile, 0, len(r.m.profiles))
	for _, c := range r.m.profiles {
		out = append(out, c.Profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memContacts struct{ m *MemStore }

func (r memContacts) Create(ctx context.Context, in domain.NewContactQuery) (domain.ContactQuery, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("contact.create"); err != nil {
		return domain.ContactQuery{}, err
	}
	q := domain.ContactQuery{ID: r.m.id(), Name: in.Name, Email: in.Email, Message: in.Message, CreatedAt: r.m.Now()}
	r.m.contacts = append(r.m.contacts, q)
	return q, nil
}

func (r memContacts) List(ctx context.Context, limit int) ([]domain.ContactQuery, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]domain.ContactQuery, 0, len(r.m.contacts))
	for i := len(r.m.contacts) - 1; i >= 0; i-- {
		out = append(out, r.m.contacts[i])
	}
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type memAudit struct{ m *MemStore }

func (r memAudit) Append(ctx context.Context, e repository.AuditEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.fail("audit.append"); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.m.Now()
	}
	r.m.audit = append(r.m.audit, e)
	return nil
}

func (r memAudit) List(ctx context.Context, limit int) ([]repository.AuditEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]repository.AuditEntry, 0, len(r.m.audit))
	for i := len(r.m.audit) - 1; i >= 0; i-- {
		out = append(out, r.m.audit[i])
	}
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}
