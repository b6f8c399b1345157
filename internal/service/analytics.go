package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/forecast"
	"github.com/electometer/smart-meter/internal/repository"
)

const (
	day             = 24 * time.Hour
	areaBillWindow  = 30 * day
	areaTrendWindow = 7 * day
)

type AnalyticsService struct {
	store repository.Store
	now   func() time.Time
}

type AreaPrediction struct {
	NextWeek     float64        `json:"nextWeek"`
	NextMonth    float64        `json:"nextMonth"`
	DailyAverage float64        `json:"dailyAverage"`
	Trend        forecast.Trend `json:"trend"`
}

type AreaAnalytics struct {
	Area              string               `json:"area"`
	MeterCount        int                  `json:"meterCount"`
	Consumption30Days float64              `json:"consumption30Days"`
	Revenue30Days     float64              `json:"revenue30Days"`
	CurrentPower      float64              `json:"currentPower"`
	AvgPowerPerMeter  float64              `json:"avgPowerPerMeter"`
	HourlyTrend       []domain.HourlyPower `json:"hourlyTrend"`
	Prediction        AreaPrediction       `json:"prediction"`
}

// AreaWise aggregates consumption, revenue and load per zone, ordered by zone name.
func (s *AnalyticsService) AreaWise(ctx context.Context) ([]AreaAnalytics, error) {
	meters, err := s.store.ListMeters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meters: %w", err)
	}
	groups := map[string][]string{}
	for _, m := range meters {
		area := m.Area
		if area == "" {
			area = domain.DefaultArea
		}
		groups[area] = append(groups[area], m.MeterID)
	}
	areas := make([]string, 0, len(groups))
	for a := range groups {
		areas = append(areas, a)
	}
	sort.Strings(areas)

	now := s.now().UTC()
	out := make([]AreaAnalytics, 0, len(areas))
	for _, area := range areas {
		a, err := s.area(ctx, area, groups[area], now)
		if err != nil {
			return nil, fmt.Errorf("area %s: %w", area, err)
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *AnalyticsService) area(ctx context.Context, area string, ids []string, now time.Time) (*AreaAnalytics, error) {
	month, err := s.store.BillTotals(ctx, domain.BillFilter{MeterIDs: ids, CreatedSince: now.Add(-areaBillWindow)})
	if err != nil {
		return nil, err
	}
	week, err := s.store.BillTotals(ctx, domain.BillFilter{MeterIDs: ids, CreatedSince: now.Add(-areaTrendWindow)})
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestPower(ctx, ids)
	if err != nil {
		return nil, err
	}
	hourly, err := s.store.HourlyAveragePower(ctx, ids, now.Add(-day))
	if err != nil {
		return nil, err
	}
	daily, err := s.store.DailyAveragePower(ctx, ids, now.Add(-areaTrendWindow))
	if err != nil {
		return nil, err
	}

	var current float64
	for _, p := range latest {
		current += p
	}
	var avg float64
	if len(latest) > 0 {
		avg = current / float64(len(latest))
	}

	trend := forecast.TrendStable
	ys := make([]float64, len(daily))
	for i, d := range daily {
		ys[i] = d.AvgPower
	}
	if slope, _, ok := forecast.Fit(ys); ok {
		trend = forecast.Classify(slope)
	}

	if hourly == nil {
		hourly = []domain.HourlyPower{}
	}
	dailyAvg := week.TotalKWh / 7
	return &AreaAnalytics{
		Area:              area,
		MeterCount:        len(ids),
		Consumption30Days: month.TotalKWh,
		Revenue30Days:     month.Amount,
		CurrentPower:      current,
		AvgPowerPerMeter:  avg,
		HourlyTrend:       hourly,
		Prediction: AreaPrediction{
			NextWeek:     dailyAvg * 7,
			NextMonth:    dailyAvg * 30,
			DailyAverage: dailyAvg,
			Trend:        trend,
		},
	}, nil
}

// Prediction forecasts system-wide average power over the next days, fitted on
// the daily averages of the last month.
func (s *AnalyticsService) Prediction(ctx context.Context, days int) (forecast.Result, error) {
	now := s.now().UTC()
	hist, err := s.store.DailyAveragePower(ctx, nil, now.Add(-forecast.HistoryDays*day))
	if err != nil {
		return forecast.Result{}, fmt.Errorf("daily averages: %w", err)
	}
	if len(hist) > forecast.HistoryDays {
		hist = hist[len(hist)-forecast.HistoryDays:]
	}
	return forecast.Forecast(hist, days, now), nil
}
