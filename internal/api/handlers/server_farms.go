package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
)

// ListFarms handles GET /farms.
func (s *Server) ListFarms(c *gin.Context) {
	farms, err := s.store.Farms.List(c.Request.Context())
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "farms"))
		return
	}
	list(c, farms)
}

// CreateFarm handles POST /farms.
func (s *Server) CreateFarm(c *gin.Context) {
	var req domain.NewFarm
	if !bindJSON(c, &req) {
		return
	}
	farm, err := s.farms.Create(c.Request.Context(), req, actorFromCtx(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// DeleteFarm handles DELETE /farms/:farm_id.
func (s *Server) DeleteFarm(c *gin.Context) {
	id, ok := idParam(c, "farm_id")
	if !ok {
		return
	}
	if err := s.farms.Delete(c.Request.Context(), id, actorFromCtx(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSensors handles GET /sensors.
func (s *Server) ListSensors(c *gin.Context) {
	var farmID *int64
	if !queryParam(c, "farm_id", &farmID) {
		return
	}
	sensors, err := s.store.Sensors.List(c.Request.Context(), farmID)
	if err != nil {
		fail(c, apperrors.ReadFailed(err, "sensors"))
		return
	}
	list(c, sensors)
}
