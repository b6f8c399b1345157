package domain

import "time"

// BillFilter narrows bill listings and totals. Zero values mean "any".
type BillFilter struct {
	MeterID      string
	MeterIDs     []string
	Status       BillStatus
	CreatedSince time.Time
	Limit        int
}

// AlertFilter narrows alert listings and counts. Zero values mean "any".
type AlertFilter struct {
	MeterID string
	Type    AlertType
	Since   time.Time
	Limit   int
}

type BillTotals struct {
	Count    int     `db:"count" json:"count"`
	TotalKWh float64 `db:"total_kwh" json:"totalKwh"`
	Amount   float64 `db:"amount" json:"totalAmount"`
}

// DailyPower is the mean instantaneous power of one UTC day.
type DailyPower struct {
	Date          string  `db:"date" json:"date"`
	AvgPower      float64 `db:"avg_power" json:"avgPower"`
	TotalReadings int     `db:"total_readings" json:"totalReadings"`
}

// HourlyPower is the mean instantaneous power for one hour of the day (0-23, UTC).
type HourlyPower struct {
	Hour     int     `db:"hour" json:"hour"`
	AvgPower float64 `db:"avg_power" json:"avgPower"`
}
