// Package forecast extrapolates daily average power with an ordinary least
// squares line fitted over the day index.
package forecast

import (
	"math"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
)

type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

const (
	// TrendThreshold is the slope, in watts per day, beyond which a series counts as moving.
	TrendThreshold = 5.0
	// ConfidenceStep is the confidence lost per forecast day.
	ConfidenceStep = 2.0
	MaxDays        = 365
	DefaultDays    = 30
	// HistoryDays bounds the number of daily points fed into a forecast.
	HistoryDays = 30
)

type Prediction struct {
	Date           string  `json:"date"`
	PredictedPower float64 `json:"predictedPower"`
	Confidence     float64 `json:"confidence"`
}

type Summary struct {
	AvgHistorical float64 `json:"avgHistorical"`
	AvgPredicted  float64 `json:"avgPredicted"`
	ChangePercent float64 `json:"changePercent"`
}

type Result struct {
	Historical []domain.DailyPower `json:"historical"`
	Prediction []Prediction        `json:"prediction"`
	Confidence float64             `json:"confidence"`
	Trend      Trend               `json:"trend"`
	Slope      *float64            `json:"slope,omitempty"`
	Intercept  *float64            `json:"intercept,omitempty"`
	Summary    *Summary            `json:"summary,omitempty"`
}

// Fit returns the least squares line through (i, ys[i]). ok is false when
// fewer than two points are given.
func Fit(ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(ys))
	if len(ys) < 2 {
		return 0, 0, false
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	slope = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

// Classify labels a slope against TrendThreshold.
func Classify(slope float64) Trend {
	switch {
	case slope > TrendThreshold:
		return TrendIncreasing
	case slope < -TrendThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Confidence is the score of the i-th forecast day (0-based).
func Confidence(i int) float64 {
	return math.Max(0, 100-float64(i)*ConfidenceStep)
}

// Forecast extends history by days points, dated from the day after now.
// days is clamped to [1, MaxDays].
func Forecast(history []domain.DailyPower, days int, now time.Time) Result {
	if history == nil {
		history = []domain.DailyPower{}
	}
	ys := make([]float64, len(history))
	for i, h := range history {
		ys[i] = h.AvgPower
	}
	slope, intercept, ok := Fit(ys)
	if !ok {
		return Result{
			Historical: history,
			Prediction: []Prediction{},
			Confidence: 0,
			Trend:      TrendInsufficientData,
		}
	}

	days = max(1, min(days, MaxDays))
	n := len(ys)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	preds := make([]Prediction, days)
	var confSum, predSum float64
	for i := 0; i < days; i++ {
		x := float64(n + i)
		p := Prediction{
			Date:           today.AddDate(0, 0, i+1).Format(time.DateOnly),
			PredictedPower: math.Max(0, slope*x+intercept),
			Confidence:     Confidence(i),
		}
		preds[i] = p
		confSum += p.Confidence
		predSum += p.PredictedPower
	}

	var sumY float64
	for _, y := range ys {
		sumY += y
	}
	avgHist := sumY / float64(n)
	change := 0.0
	if avgHist != 0 {
		change = (preds[days-1].PredictedPower - avgHist) / avgHist * 100
	}

	return Result{
		Historical: history,
		Prediction: preds,
		Confidence: confSum / float64(days),
		Trend:      Classify(slope),
		Slope:      &slope,
		Intercept:  &intercept,
		Summary: &Summary{
			AvgHistorical: avgHist,
			AvgPredicted:  predSum / float64(days),
			ChangePercent: change,
		},
	}
}
