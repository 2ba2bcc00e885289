package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fertigation.io/farmwatch/internal/domain"
)

func TestDestinations(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    []Destination
	}{
		{
			name:    "anonymous",
			session: Anonymous(),
			want:    []Destination{DestHome, DestContact},
		},
		{
			name:    "role claim without authentication is ignored",
			session: Session{Role: domain.RoleAdmin},
			want:    []Destination{DestHome, DestContact},
		},
		{
			name:    "farmer",
			session: Session{UserID: "u1", Role: domain.RoleFarmer, Authenticated: true},
			want:    []Destination{DestHome, DestDashboard, DestAlerts, DestAnalytics, DestForms, DestContact},
		},
		{
			name:    "admin",
			session: Session{UserID: "u2", Role: domain.RoleAdmin, Authenticated: true},
			want:    []Destination{DestHome, DestDashboard, DestAlerts, DestAnalytics, DestForms, DestContact, DestAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Destinations(tt.session))
		})
	}
}

func TestCanView_AdminPanel(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleFarmer, domain.RoleOfficer, domain.RoleResearcher} {
		assert.False(t, CanView(Session{Role: role, Authenticated: true}, DestAdmin), role)
	}
	assert.True(t, CanView(Session{Role: domain.RoleAdmin, Authenticated: true}, DestAdmin))
}

func TestAllows(t *testing.T) {
	tests := []struct {
		role   domain.Role
		action Action
		want   bool
	}{
		{domain.RoleAdmin, ActionFarmDelete, true},
		{domain.RoleAdmin, ActionAlertDelete, true},
		{domain.RoleAdmin, ActionReadingCreate, true},
		{domain.RoleAdmin, ActionAlertResolve, true},
		{domain.RoleFarmer, ActionFarmDelete, false},
		{domain.RoleOfficer, ActionFarmDelete, false},
		{domain.RoleResearcher, ActionAlertDelete, false},
		{domain.RoleFarmer, ActionReadingCreate, true},
		{domain.RoleOfficer, ActionReadingCreate, false},
		{domain.RoleResearcher, ActionReadingCreate, false},
		{domain.RoleOfficer, ActionAlertResolve, true},
		{domain.RoleFarmer, ActionAlertResolve, false},
		{domain.RoleResearcher, ActionAlertResolve, false},
		{domain.RoleResearcher, ActionFarmCreate, true},
		{domain.RoleOfficer, ActionScheduleCreate, true},
		{domain.RoleFarmer, ActionReportCreate, true},
		{domain.RoleResearcher, ActionAlertCreate, true},
		{domain.RoleResearcher, ActionAlertRaiseAny, false},
		{domain.RoleFarmer, ActionAlertRaiseAny, false},
		{domain.RoleAdmin, ActionAlertRaiseAny, true},
		{domain.RoleFarmer, ActionAdminView, false},
		{"", ActionFarmCreate, false},
		{"Gardener", ActionAlertCreate, false},
		{domain.RoleAdmin, Action("farm:rename"), false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, Allows(tt.role, tt.action), "Allows(%q, %q)", tt.role, tt.action)
	}
}

func TestCanRaiseAlert(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleFarmer, domain.RoleOfficer, domain.RoleResearcher} {
		assert.True(t, CanRaiseAlert(role, domain.AlertTypeClogging), role)
		for _, typ := range []domain.AlertType{domain.AlertTypeLowFlow, domain.AlertTypePressureDrop, domain.AlertTypeSystemError} {
			assert.Falsef(t, CanRaiseAlert(role, typ), "CanRaiseAlert(%q, %q)", role, typ)
		}
	}
	assert.True(t, CanRaiseAlert(domain.RoleAdmin, domain.AlertTypeLowFlow))
	assert.True(t, CanRaiseAlert(domain.RoleAdmin, domain.AlertTypeSystemError))
	assert.False(t, CanRaiseAlert("", domain.AlertTypeClogging))
}

func TestSessionAllows_RequiresAuthentication(t *testing.T) {
	assert.False(t, SessionAllows(Session{Role: domain.RoleAdmin}, ActionFarmDelete))
	assert.True(t, SessionAllows(Session{Role: domain.RoleAdmin, Authenticated: true}, ActionFarmDelete))
}

func TestPermissions(t *testing.T) {
	assert.Equal(t, allActions, Permissions(domain.RoleAdmin))
	assert.Equal(t, []Action{
		ActionFarmCreate, ActionReadingCreate, ActionAlertCreate, ActionScheduleCreate, ActionReportCreate,
	}, Permissions(domain.RoleFarmer))
	assert.Equal(t, []Action{
		ActionFarmCreate, ActionAlertCreate, ActionAlertResolve, ActionScheduleCreate, ActionReportCreate,
	}, Permissions(domain.RoleOfficer))
	assert.Empty(t, Permissions(""))
}

func TestDestinationPath(t *testing.T) {
	assert.Equal(t, "/", DestHome.Path())
	assert.Equal(t, "/admin", DestAdmin.Path())
	assert.Equal(t, "", Destination("Nowhere").Path())
}
