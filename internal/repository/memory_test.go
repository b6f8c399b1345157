package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
)

func seeded(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	err := m.InsertMeters(context.Background(), []domain.Meter{
		{MeterID: "MTR-1", OwnerName: "a", Address: "x", Area: "Zone A", CreatedAt: base},
		{MeterID: "MTR-2", OwnerName: "b", Address: "y", CreatedAt: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("insert meters: %v", err)
	}
	return m
}

func TestMemoryMetersNewestFirstAndDefaultArea(t *testing.T) {
	m := seeded(t)
	meters, err := m.ListMeters(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(meters) != 2 || meters[0].MeterID != "MTR-2" {
		t.Fatalf("unexpected order: %+v", meters)
	}
	if meters[0].Area != domain.DefaultArea {
		t.Fatalf("expected default area, got %q", meters[0].Area)
	}
	if err := m.InsertMeters(context.Background(), []domain.Meter{{MeterID: "MTR-1"}}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryReadingsStaySorted(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	for _, off := range []int{3, 1, 2} {
		r := domain.Reading{MeterID: "MTR-1", Timestamp: t0.Add(time.Duration(off) * time.Minute), PowerWatts: float64(off)}
		if err := m.InsertReading(ctx, &r); err != nil {
			t.Fatal(err)
		}
	}
	latest, err := m.LatestReading(ctx, "MTR-1")
	if err != nil {
		t.Fatal(err)
	}
	if latest.PowerWatts != 3 {
		t.Fatalf("latest power %v, want 3", latest.PowerWatts)
	}
	rs, _ := m.ReadingsBetween(ctx, "MTR-1", t0, t0.Add(3*time.Minute))
	if len(rs) != 2 || rs[0].PowerWatts != 1 || rs[1].PowerWatts != 2 {
		t.Fatalf("unexpected window: %+v", rs)
	}
	if _, err := m.LatestReading(ctx, "MTR-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.InsertReading(ctx, &domain.Reading{MeterID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown meter: %v", err)
	}
}

func TestMemoryBillsUniquePerMonth(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()
	bills := []domain.Bill{
		{MeterID: "MTR-1", Month: 1, Year: 2025, TotalKWh: 10, AmountDue: 80},
		{MeterID: "MTR-1", Month: 2, Year: 2025, TotalKWh: 20, AmountDue: 160, Status: domain.BillPaid},
		{MeterID: "MTR-1", Month: 12, Year: 2024, TotalKWh: 30, AmountDue: 240, Status: domain.BillPaid},
	}
	n, err := m.InsertBills(ctx, bills)
	if err != nil || n != 3 {
		t.Fatalf("insert: n=%d err=%v", n, err)
	}
	n, _ = m.InsertBills(ctx, []domain.Bill{{MeterID: "MTR-1", Month: 1, Year: 2025}})
	if n != 0 {
		t.Fatalf("duplicate bill written")
	}

	list, _ := m.ListBills(ctx, domain.BillFilter{MeterID: "MTR-1"})
	if list[0].Month != 2 || list[1].Month != 1 || list[2].Year != 2024 {
		t.Fatalf("unexpected bill order: %+v", list)
	}
	if list[1].Status != domain.BillDue {
		t.Fatalf("expected default DUE status, got %s", list[1].Status)
	}

	totals, _ := m.BillTotals(ctx, domain.BillFilter{Status: domain.BillPaid})
	if totals.Count != 2 || totals.Amount != 400 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	updated, err := m.UpdateBillStatus(ctx, list[1].ID, domain.BillPaid)
	if err != nil || updated.Status != domain.BillPaid {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if _, err := m.UpdateBillStatus(ctx, 999, domain.BillPaid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryAlertFilters(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()
	t0 := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	alerts := []domain.Alert{
		{MeterID: "MTR-1", Timestamp: t0, Type: domain.AlertHighUsage, Message: "h"},
		{MeterID: "MTR-1", Timestamp: t0.Add(time.Hour), Type: domain.AlertTheftSuspicion, Message: "t"},
		{MeterID: "MTR-2", Timestamp: t0.Add(2 * time.Hour), Type: domain.AlertTheftSuspicion, Message: "t"},
	}
	if err := m.InsertAlerts(ctx, alerts); err != nil {
		t.Fatal(err)
	}

	all, _ := m.ListAlerts(ctx, domain.AlertFilter{})
	if len(all) != 3 || all[0].MeterID != "MTR-2" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	theft, _ := m.CountAlerts(ctx, domain.AlertFilter{Type: domain.AlertTheftSuspicion})
	if theft != 2 {
		t.Fatalf("theft count %d", theft)
	}
	recent, _ := m.CountAlerts(ctx, domain.AlertFilter{Since: t0.Add(30 * time.Minute)})
	if recent != 2 {
		t.Fatalf("recent count %d", recent)
	}
	limited, _ := m.ListAlerts(ctx, domain.AlertFilter{MeterID: "MTR-1", Limit: 1})
	if len(limited) != 1 || limited[0].Type != domain.AlertTheftSuspicion {
		t.Fatalf("unexpected limited list %+v", limited)
	}
}

func TestMemoryAggregates(t *testing.T) {
	m := seeded(t)
	ctx := context.Background()
	d1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.Add(24 * time.Hour)
	rs := []domain.Reading{
		{MeterID: "MTR-1", Timestamp: d1, PowerWatts: 100},
		{MeterID: "MTR-2", Timestamp: d1.Add(time.Minute), PowerWatts: 300},
		{MeterID: "MTR-1", Timestamp: d2, PowerWatts: 50},
	}
	if err := m.InsertReadings(ctx, rs); err != nil {
		t.Fatal(err)
	}

	daily, _ := m.DailyAveragePower(ctx, nil, time.Time{})
	if len(daily) != 2 || daily[0].Date != "2025-03-01" || daily[0].AvgPower != 200 || daily[0].TotalReadings != 2 {
		t.Fatalf("unexpected daily: %+v", daily)
	}
	only2, _ := m.DailyAveragePower(ctx, []string{"MTR-2"}, time.Time{})
	if len(only2) != 1 || only2[0].AvgPower != 300 {
		t.Fatalf("unexpected filtered daily: %+v", only2)
	}

	hourly, _ := m.HourlyAveragePower(ctx, nil, d1)
	if len(hourly) != 1 || hourly[0].Hour != 10 || hourly[0].AvgPower != 150 {
		t.Fatalf("unexpected hourly: %+v", hourly)
	}

	latest, _ := m.LatestPower(ctx, nil)
	if latest["MTR-1"] != 50 || latest["MTR-2"] != 300 {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	active, _ := m.ActiveMeterIDs(ctx, d2)
	if len(active) != 1 || active[0] != "MTR-1" {
		t.Fatalf("unexpected active: %v", active)
	}
}

func TestMemoryAdmins(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	a := &domain.Admin{Username: "admin", Email: "a@x", Name: "A", Role: domain.RoleSuperAdmin}
	if err := m.InsertAdmin(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := m.InsertAdmin(ctx, &domain.Admin{Username: "admin", Email: "b@x"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := m.TouchAdminLogin(ctx, a.ID, at); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetAdminByUsername(ctx, "admin")
	if err != nil || got.LastLogin == nil || !got.LastLogin.Equal(at) {
		t.Fatalf("unexpected admin %+v err=%v", got, err)
	}
}
