package handlers

import (
	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/access"
	"fertigation.io/farmwatch/internal/api/middleware"
)

// Register mounts every API route on api. auth rejects requests without a
// valid session; optionalAuth attaches a session when one is presented.
// Role checks are per route and come from the access policy.
func (s *Server) Register(api *gin.RouterGroup, auth, optionalAuth gin.HandlerFunc) {
	api.GET("/health/live", s.GetLiveness)
	api.GET("/health/ready", s.GetReadiness)

	public := api.Group("", optionalAuth)
	public.POST("/auth/signup", s.Signup)
	public.POST("/auth/login", s.Login)
	public.GET("/navigation", s.GetNavigation)
	public.POST("/contact", s.SubmitContact)

	authed := api.Group("", auth)
	authed.POST("/auth/logout", s.Logout)
	authed.GET("/auth/me", s.GetMe)

	authed.GET("/farms", s.ListFarms)
	authed.POST("/farms", middleware.RequirePermission(access.ActionFarmCreate), s.CreateFarm)
	authed.DELETE("/farms/:farm_id", middleware.RequirePermission(access.ActionFarmDelete), s.DeleteFarm)
	authed.GET("/sensors", s.ListSensors)

	authed.GET("/readings", s.ListReadings)
	authed.POST("/readings", middleware.RequirePermission(access.ActionReadingCreate), s.SubmitReading)

	authed.GET("/alerts", s.ListAlerts)
	authed.GET("/alerts/stream", s.StreamAlerts)
	authed.POST("/alerts", middleware.RequirePermission(access.ActionAlertCreate), s.CreateAlert)
	authed.POST("/alerts/:alert_id/resolve", middleware.RequirePermission(access.ActionAlertResolve), s.ResolveAlert)
	authed.DELETE("/alerts/:alert_id", middleware.RequirePermission(access.ActionAlertDelete), s.DeleteAlert)

	authed.GET("/schedules", s.ListSchedules)
	authed.POST("/schedules", middleware.RequirePermission(access.ActionScheduleCreate), s.CreateSchedule)
	authed.POST("/reports", middleware.RequirePermission(access.ActionReportCreate), s.SubmitReport)

	authed.GET("/analytics", s.GetAnalytics)
	authed.GET("/analytics/export.csv", s.ExportReadingsCSV)

	admin := authed.Group("/admin", middleware.RequirePermission(access.ActionAdminView))
	admin.GET("/profiles", s.AdminListProfiles)
	admin.GET("/reports", s.AdminListReports)
	admin.GET("/contact-queries", s.AdminListContactQueries)
	admin.GET("/audit-logs", s.AdminListAuditLogs)
}
