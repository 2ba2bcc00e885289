package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/testutil"
)

func TestCreateSchedule(t *testing.T) {
	mem := testutil.NewMemStore()
	farm := seedFarmWithSensor(t, mem, "Farm A", "S001")
	uc := NewFormsUseCase(mem.Store())
	start := time.Date(2025, 3, 2, 6, 0, 0, 0, time.FixedZone("EAT", 3*3600))

	s, err := uc.CreateSchedule(context.Background(), ScheduleInput{FarmID: farm.ID, StartTime: start, Duration: 45, FertilizerAmount: 12.5})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, s.StartTime.Location())
	assert.Equal(t, int32(45), s.Duration)

	_, err = uc.CreateSchedule(context.Background(), ScheduleInput{FarmID: 999, StartTime: start, Duration: 1})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeFarmNotFound, appErr.Code)

	_, err = uc.CreateSchedule(context.Background(), ScheduleInput{FertilizerAmount: -1})
	appErr, ok = apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Len(t, appErr.FieldErrors, 4)
}

func TestCreateSchedule_WriteFailure(t *testing.T) {
	mem := testutil.NewMemStore()
	farm := seedFarmWithSensor(t, mem, "Farm A", "S001")
	mem.Fail["schedules.create"] = errors.New("disk full")

	_, err := NewFormsUseCase(mem.Store()).CreateSchedule(context.Background(), ScheduleInput{FarmID: farm.ID, StartTime: time.Now(), Duration: 10})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeScheduleWriteFailed, appErr.Code)
}

func TestSubmitReport(t *testing.T) {
	uc := NewFormsUseCase(testutil.NewMemStore().Store())

	rep, err := uc.SubmitReport(context.Background(), "u1", ReportInput{Title: " Soil EC trends ", Description: "weekly"})
	require.NoError(t, err)
	assert.Equal(t, "Soil EC trends", rep.Title)
	assert.Equal(t, "u1", rep.UserID)
	require.NotNil(t, rep.Description)
	assert.Nil(t, rep.FileURL)

	_, err = uc.SubmitReport(context.Background(), "u1", ReportInput{})
	require.Error(t, err)
}

func TestSubmitContact(t *testing.T) {
	uc := NewFormsUseCase(testutil.NewMemStore().Store())

	q, err := uc.SubmitContact(context.Background(), ContactInput{Name: "Wanjiru", Email: "w@example.com", Message: "Pump quote?"})
	require.NoError(t, err)
	assert.NotZero(t, q.ID)

	_, err = uc.SubmitContact(context.Background(), ContactInput{Email: "nope"})
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Len(t, appErr.FieldErrors, 3)
}
