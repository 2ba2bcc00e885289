// Package access is the role-gated access policy.
//
// Every function here is pure: the caller passes the Session explicitly and
// the answer depends only on its role and authentication state. HTTP
// middleware re-evaluates the policy on each request from the token's role
// claim.
//
// Import Path: fertigation.io/farmwatch/internal/access
package access

import (
	"slices"

	"fertigation.io/farmwatch/internal/domain"
)

// Session is the caller identity the policy is evaluated against.
// The zero value is an unauthenticated visitor.
type Session struct {
	UserID        string
	Name          string
	Role          domain.Role
	Authenticated bool
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session { return Session{} }

// Destination is a navigable view.
type Destination string

const (
	DestHome      Destination = "Home"
	DestDashboard Destination = "Dashboard"
	DestAlerts    Destination = "Alerts"
	DestAnalytics Destination = "Analytics"
	DestForms     Destination = "Forms"
	DestContact   Destination = "Contact"
	DestAdmin     Destination = "Admin"
)

// Path returns the client route for a destination.
func (d Destination) Path() string {
	switch d {
	case DestHome:
		return "/"
	case DestDashboard:
		return "/dashboard"
	case DestAlerts:
		return "/alerts"
	case DestAnalytics:
		return "/analytics"
	case DestForms:
		return "/forms"
	case DestContact:
		return "/contact"
	case DestAdmin:
		return "/admin"
	}
	return ""
}

// Action is a permitted mutation (or, for admin:view, the admin panel).
type Action string

const (
	ActionFarmCreate     Action = "farm:create"
	ActionFarmDelete     Action = "farm:delete"
	ActionReadingCreate  Action = "reading:create"
	ActionAlertCreate    Action = "alert:create"
	ActionAlertRaiseAny  Action = "alert:raise_any"
	ActionAlertResolve   Action = "alert:resolve"
	ActionAlertDelete    Action = "alert:delete"
	ActionScheduleCreate Action = "schedule:create"
	ActionReportCreate   Action = "report:create"
	ActionAdminView      Action = "admin:view"
)

// allActions is in display order.
var allActions = []Action{
	ActionFarmCreate,
	ActionFarmDelete,
	ActionReadingCreate,
	ActionAlertCreate,
	ActionAlertRaiseAny,
	ActionAlertResolve,
	ActionAlertDelete,
	ActionScheduleCreate,
	ActionReportCreate,
	ActionAdminView,
}

// Destinations returns the views s may navigate to, in display order.
func Destinations(s Session) []Destination {
	if !s.Authenticated {
		return []Destination{DestHome, DestContact}
	}
	out := []Destination{DestHome, DestDashboard, DestAlerts, DestAnalytics, DestForms, DestContact}
	if s.Role == domain.RoleAdmin {
		out = append(out, DestAdmin)
	}
	return out
}

// CanView reports whether d is among Destinations(s).
func CanView(s Session, d Destination) bool {
	return slices.Contains(Destinations(s), d)
}

// Allows reports whether role may perform action. Unknown roles get nothing.
func Allows(role domain.Role, action Action) bool {
	switch role {
	case domain.RoleAdmin:
		return slices.Contains(allActions, action)
	case domain.RoleFarmer, domain.RoleOfficer, domain.RoleResearcher:
	default:
		return false
	}

	switch action {
	case ActionFarmCreate, ActionAlertCreate, ActionScheduleCreate, ActionReportCreate:
		return true
	case ActionReadingCreate:
		return role == domain.RoleFarmer
	case ActionAlertResolve:
		return role == domain.RoleOfficer
	}
	return false
}

// CanRaiseAlert reports whether role may raise an alert of type t by hand.
// Only Clogging is a field observation; the other types are raised by
// readings or the system, so raising them manually is reserved for Admin.
func CanRaiseAlert(role domain.Role, t domain.AlertType) bool {
	if Allows(role, ActionAlertRaiseAny) {
		return true
	}
	return t == domain.AlertTypeClogging && Allows(role, ActionAlertCreate)
}

// SessionAllows is Allows gated on authentication.
func SessionAllows(s Session, action Action) bool {
	return s.Authenticated && Allows(s.Role, action)
}

// Permissions lists every action role may perform, in a stable order.
func Permissions(role domain.Role) []Action {
	out := make([]Action, 0, len(allActions))
	for _, a := range allActions {
		if Allows(role, a) {
			out = append(out, a)
		}
	}
	return out
}
