// Package service holds read-side computations over stored readings.
//
// Import Path: fertigation.io/farmwatch/internal/service
package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fertigation.io/farmwatch/internal/cache"
	"fertigation.io/farmwatch/internal/domain"
	apperrors "fertigation.io/farmwatch/internal/pkg/errors"
	"fertigation.io/farmwatch/internal/repository"
)

const (
	// AnalyticsWindow is how many of the newest readings analytics and the
	// CSV export look at.
	AnalyticsWindow = 50
	// TrendPoints is how many readings the flow trend charts.
	TrendPoints = 7
	// UnknownFarm labels readings whose sensor has no farm.
	UnknownFarm = "Unknown"
)

// FlowPoint is one point of the flow-rate trend.
type FlowPoint struct {
	Label    string  `json:"day"`
	FlowRate float64 `json:"flow"`
}

// FarmPressure is the average pressure over one farm's readings.
type FarmPressure struct {
	Farm        string `json:"farm"`
	AvgPressure string `json:"avg_pressure"`
	Readings    int    `json:"readings"`
}

// Summary holds whole-window statistics.
type Summary struct {
	TotalReadings int    `json:"total_readings"`
	AvgFlowRate   string `json:"avg_flow_rate"`
	AvgPressure   string `json:"avg_pressure"`
}

// Analytics is the aggregated view served to the analytics page.
type Analytics struct {
	FlowTrend      []FlowPoint    `json:"flow_trend"`
	PressureByFarm []FarmPressure `json:"pressure_by_farm"`
	Summary        Summary        `json:"summary"`
}

// Aggregate computes analytics over readings ordered newest first.
//
// The trend takes the first TrendPoints readings and reverses them so the
// oldest comes first, labelled "Day 1".."Day n". Farms keep the order in
// which they first appear. Averages are rendered with two decimals and an
// empty group renders as "0.00".
func Aggregate(readings []domain.ReadingView) Analytics {
	n := min(len(readings), TrendPoints)
	trend := make([]FlowPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		trend = append(trend, FlowPoint{
			Label:    fmt.Sprintf("Day %d", len(trend)+1),
			FlowRate: readings[i].FlowRate,
		})
	}

	type group struct {
		sum   decimal.Decimal
		count int
	}
	var order []string
	groups := map[string]*group{}
	flowSum, pressureSum := decimal.Zero, decimal.Zero
	for _, r := range readings {
		name := UnknownFarm
		if r.FarmName != nil && *r.FarmName != "" {
			name = *r.FarmName
		}
		g, ok := groups[name]
		if !ok {
			g = &group{}
			groups[name] = g
			order = append(order, name)
		}
		p := decimal.NewFromFloat(r.Pressure)
		g.sum = g.sum.Add(p)
		g.count++
		pressureSum = pressureSum.Add(p)
		flowSum = flowSum.Add(decimal.NewFromFloat(r.FlowRate))
	}

	byFarm := make([]FarmPressure, 0, len(order))
	for _, name := range order {
		g := groups[name]
		byFarm = append(byFarm, FarmPressure{Farm: name, AvgPressure: Average(g.sum, g.count), Readings: g.count})
	}

	return Analytics{
		FlowTrend:      trend,
		PressureByFarm: byFarm,
		Summary: Summary{
			TotalReadings: len(readings),
			AvgFlowRate:   Average(flowSum, len(readings)),
			AvgPressure:   Average(pressureSum, len(readings)),
		},
	}
}

// Average renders sum/count with two decimals; a zero count yields "0.00".
func Average(sum decimal.Decimal, count int) string {
	if count == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return sum.Div(decimal.NewFromInt(int64(count))).StringFixed(2)
}

// AnalyticsService serves analytics and recent readings through the view cache.
type AnalyticsService struct {
	readings repository.ReadingRepository
	views    cache.Cache
}

// NewAnalyticsService creates a new AnalyticsService. A nil cache disables caching.
func NewAnalyticsService(readings repository.ReadingRepository, views cache.Cache) *AnalyticsService {
	if views == nil {
		views = cache.Nop{}
	}
	return &AnalyticsService{readings: readings, views: views}
}

// RecentReadings returns the newest readings, up to limit.
func (s *AnalyticsService) RecentReadings(ctx context.Context, f repository.ReadingFilter) ([]domain.ReadingView, error) {
	key := readingsKey(f)
	out, err := cache.Fetch(ctx, s.views, cache.NSReadings, key, func(ctx context.Context) ([]domain.ReadingView, error) {
		return s.readings.ListRecent(ctx, f)
	})
	if err != nil {
		return nil, apperrors.ReadFailed(err, "readings")
	}
	return out, nil
}

// Compute fetches the analytics window and aggregates it.
func (s *AnalyticsService) Compute(ctx context.Context) (Analytics, error) {
	out, err := cache.Fetch(ctx, s.views, cache.NSAnalytics, "window", func(ctx context.Context) (Analytics, error) {
		readings, err := s.readings.ListRecent(ctx, repository.ReadingFilter{Limit: AnalyticsWindow})
		if err != nil {
			return Analytics{}, err
		}
		return Aggregate(readings), nil
	})
	if err != nil {
		return Analytics{}, apperrors.ReadFailed(err, "readings")
	}
	return out, nil
}

func readingsKey(f repository.ReadingFilter) string {
	key := fmt.Sprintf("limit=%d", f.Limit)
	if f.SensorID != nil {
		key += ":sensor=" + *f.SensorID
	}
	if f.FarmID != nil {
		key += fmt.Sprintf(":farm=%d", *f.FarmID)
	}
	return key
}
