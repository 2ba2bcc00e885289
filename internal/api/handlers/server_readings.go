package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
	"fertigation.io/farmwatch/internal/usecase"
)

// readingRequest uses pointers so a missing measurement is told apart from 0.
type readingRequest struct {
	SensorID     string   `json:"sensor_id"`
	FlowRate     *float64 `json:"flow_rate"`
	Pressure     *float64 `json:"pressure"`
	Conductivity *float64 `json:"conductivity"`
}

func (r readingRequest) input(actor string) (usecase.SubmitReadingInput, error) {
	var fields []apperrors.FieldError
	for _, m := range []struct {
		name string
		v    *float64
	}{
		{"flow_rate", r.FlowRate},
		{"pressure", r.Pressure},
		{"conductivity", r.Conductivity},
	} {
		if m.v == nil {
			fields = append(fields, apperrors.FieldError{Field: m.name, Code: "required"})
		}
	}
	if len(fields) > 0 {
		return usecase.SubmitReadingInput{}, apperrors.Validation(fields...)
	}
	return usecase.SubmitReadingInput{
		SensorID:     r.SensorID,
		FlowRate:     *r.FlowRate,
		Pressure:     *r.Pressure,
		Conductivity: *r.Conductivity,
		SubmittedBy:  actor,
	}, nil
}

// ListReadings handles GET /readings.
func (s *Server) ListReadings(c *gin.Context) {
	var f repository.ReadingFilter
	if !queryParam(c, "sensor_id", &f.SensorID) || !queryParam(c, "farm_id", &f.FarmID) {
		return
	}
	limit, ok := limitParam(c)
	if !ok {
		return
	}
	f.Limit = limit

	readings, err := s.analytics.RecentReadings(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, readings)
}

// SubmitReading handles POST /readings. A low-flow reading also raises a
// Low Flow alert; the response says whether that happened.
func (s *Server) SubmitReading(c *gin.Context) {
	var req readingRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.input(actorFromCtx(c))
	if err != nil {
		fail(c, err)
		return
	}
	out, err := s.readings.Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
