package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
	"github.com/electometer/smart-meter/internal/service"
)

func newTestApp(t *testing.T) (*fiber.App, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()
	if err := store.InsertMeters(ctx, []domain.Meter{
		{MeterID: "MTR-1001", OwnerName: "Rajesh Kumar", Address: "MG Road", Area: "Zone A", CreatedAt: now.Add(-time.Hour)},
		{MeterID: "MTR-1011", OwnerName: "Tech Solutions", Address: "BKC", Area: "Zone B", CreatedAt: now},
	}); err != nil {
		t.Fatal(err)
	}
	svcs := service.New(store, service.Deps{}, service.DefaultOptions())
	if err := svcs.Admin.EnsureDefaultAdmin(ctx); err != nil {
		t.Fatal(err)
	}
	return NewApp(svcs, Options{}), store
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return payload["error"]
}

func TestBannerAndHealth(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, fiber.MethodGet, "/health", "")
	if status != fiber.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %q", status, body)
	}

	status, body = do(t, app, fiber.MethodGet, "/", "")
	var banner map[string]string
	if err := json.Unmarshal(body, &banner); err != nil || status != fiber.StatusOK {
		t.Fatalf("banner: %d %q", status, body)
	}
	if banner["status"] != "running" || banner["version"] == "" {
		t.Fatalf("unexpected banner %v", banner)
	}

	status, body = do(t, app, fiber.MethodGet, "/metrics", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), "smartmeter_http_requests_total") {
		t.Fatalf("metrics: %d", status)
	}
}

func TestLiveReading(t *testing.T) {
	app, store := newTestApp(t)

	status, body := do(t, app, fiber.MethodGet, "/api/meters/MTR-1001/live", "")
	if status != fiber.StatusNotFound || errorMessage(t, body) != "No readings found for this meter" {
		t.Fatalf("empty live: %d %s", status, body)
	}

	r := domain.Reading{MeterID: "MTR-1001", Timestamp: time.Now().UTC(), PowerWatts: 321.5, Voltage: 230.1, Current: 1.4}
	if err := store.InsertReading(context.Background(), &r); err != nil {
		t.Fatal(err)
	}
	status, body = do(t, app, fiber.MethodGet, "/api/meters/MTR-1001/live", "")
	var got domain.Reading
	if err := json.Unmarshal(body, &got); err != nil || status != fiber.StatusOK {
		t.Fatalf("live: %d %s", status, body)
	}
	if got.PowerWatts != 321.5 || got.MeterID != "MTR-1001" {
		t.Fatalf("unexpected reading %+v", got)
	}
	if !strings.Contains(string(body), `"power_watts":321.5`) {
		t.Fatalf("unexpected wire format %s", body)
	}
}

func TestHistoryDefaultsTo24h(t *testing.T) {
	app, store := newTestApp(t)
	now := time.Now().UTC()
	_ = store.InsertReadings(context.Background(), []domain.Reading{
		{MeterID: "MTR-1001", Timestamp: now.Add(-3 * 24 * time.Hour), PowerWatts: 1},
		{MeterID: "MTR-1001", Timestamp: now.Add(-2 * time.Hour), PowerWatts: 2},
		{MeterID: "MTR-1001", Timestamp: now.Add(-time.Hour), PowerWatts: 3},
	})

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?period=7d", 3},
		{"?period=bogus", 2},
	}
	for _, tt := range tests {
		status, body := do(t, app, fiber.MethodGet, "/api/meters/MTR-1001/history"+tt.query, "")
		var rs []domain.Reading
		if err := json.Unmarshal(body, &rs); err != nil || status != fiber.StatusOK {
			t.Fatalf("%q: %d %s", tt.query, status, body)
		}
		if len(rs) != tt.want {
			t.Errorf("%q: got %d readings, want %d", tt.query, len(rs), tt.want)
		}
	}
}

func TestMeterBillsAndAlerts(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := store.InsertBills(ctx, []domain.Bill{
		{MeterID: "MTR-1001", Month: 11, Year: 2024, TotalKWh: 250, AmountDue: 2000, Status: domain.BillPaid},
		{MeterID: "MTR-1001", Month: 1, Year: 2025, TotalKWh: 300, AmountDue: 2400, Status: domain.BillDue},
		{MeterID: "MTR-1011", Month: 1, Year: 2025, TotalKWh: 100, AmountDue: 800, Status: domain.BillDue},
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.InsertAlerts(ctx, []domain.Alert{
		{MeterID: "MTR-1001", Timestamp: now.Add(-2 * time.Hour), Type: domain.AlertHighUsage, Message: "high"},
		{MeterID: "MTR-1001", Timestamp: now.Add(-time.Hour), Type: domain.AlertTheftSuspicion, Message: "theft"},
	}); err != nil {
		t.Fatal(err)
	}

	status, body := do(t, app, fiber.MethodGet, "/api/meters/MTR-1001/bills", "")
	var bills []domain.Bill
	if err := json.Unmarshal(body, &bills); err != nil || status != fiber.StatusOK {
		t.Fatalf("bills: %d %s", status, body)
	}
	if len(bills) != 2 || bills[0].Year != 2025 || bills[1].Month != 11 {
		t.Fatalf("unexpected bills %+v", bills)
	}

	status, body = do(t, app, fiber.MethodGet, "/api/meters/MTR-1001/alerts", "")
	var alerts []domain.Alert
	if err := json.Unmarshal(body, &alerts); err != nil || status != fiber.StatusOK {
		t.Fatalf("alerts: %d %s", status, body)
	}
	if len(alerts) != 2 || alerts[0].Type != domain.AlertTheftSuspicion {
		t.Fatalf("unexpected alerts %+v", alerts)
	}
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"username":"admin","password":"admin123"}`, fiber.StatusOK},
		{"wrong password", `{"username":"admin","password":"nope"}`, fiber.StatusUnauthorized},
		{"unknown user", `{"username":"root","password":"admin123"}`, fiber.StatusUnauthorized},
		{"missing password", `{"username":"admin"}`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, fiber.MethodPost, "/api/admin/login", tt.body)
			if status != tt.status {
				t.Fatalf("status %d, want %d: %s", status, tt.status, body)
			}
			if status != fiber.StatusOK {
				return
			}
			if strings.Contains(string(body), "password") {
				t.Fatalf("password leaked: %s", body)
			}
			var resp struct {
				Success bool         `json:"success"`
				Admin   domain.Admin `json:"admin"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				t.Fatal(err)
			}
			if !resp.Success || resp.Admin.Role != domain.RoleSuperAdmin || !resp.Admin.UpdateBills {
				t.Fatalf("unexpected login response %s", body)
			}
		})
	}
}

func TestUpdateBillStatus(t *testing.T) {
	app, store := newTestApp(t)
	_, _ = store.InsertBills(context.Background(), []domain.Bill{
		{MeterID: "MTR-1001", Month: 2, Year: 2025, TotalKWh: 250, AmountDue: 2000, Status: domain.BillDue},
	})
	bills, _ := store.ListBills(context.Background(), domain.BillFilter{})
	path := "/api/admin/bills/" + strconv.FormatInt(bills[0].ID, 10)

	status, body := do(t, app, fiber.MethodPut, path, `{"status":"OVERDUE"}`)
	if status != fiber.StatusBadRequest || errorMessage(t, body) != "Invalid status" {
		t.Fatalf("invalid status: %d %s", status, body)
	}
	status, body = do(t, app, fiber.MethodPut, "/api/admin/bills/9999", `{"status":"PAID"}`)
	if status != fiber.StatusNotFound || errorMessage(t, body) != "Bill not found" {
		t.Fatalf("unknown bill: %d %s", status, body)
	}
	status, _ = do(t, app, fiber.MethodPut, "/api/admin/bills/abc", `{"status":"PAID"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad id: %d", status)
	}

	status, body = do(t, app, fiber.MethodPut, path, `{"status":"PAID"}`)
	var b domain.Bill
	if err := json.Unmarshal(body, &b); err != nil || status != fiber.StatusOK {
		t.Fatalf("update: %d %s", status, body)
	}
	if b.Status != domain.BillPaid {
		t.Fatalf("status not updated: %+v", b)
	}
}

func TestAdminListValidation(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		target string
		status int
	}{
		{"/api/admin/bills", fiber.StatusOK},
		{"/api/admin/bills?status=paid&limit=5", fiber.StatusOK},
		{"/api/admin/bills?status=LATE", fiber.StatusBadRequest},
		{"/api/admin/bills?limit=ten", fiber.StatusBadRequest},
		{"/api/admin/alerts?type=theft_suspicion", fiber.StatusOK},
		{"/api/admin/alerts?type=FIRE", fiber.StatusBadRequest},
		{"/api/admin/analytics/prediction?days=x", fiber.StatusBadRequest},
		{"/api/admin/meters/MTR-404", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		status, body := do(t, app, fiber.MethodGet, tt.target, "")
		if status != tt.status {
			t.Errorf("%s: status %d, want %d (%s)", tt.target, status, tt.status, body)
		}
	}
}

func TestAdminMetersAndStats(t *testing.T) {
	app, store := newTestApp(t)
	r := domain.Reading{MeterID: "MTR-1001", Timestamp: time.Now().UTC(), PowerWatts: 0}
	_ = store.InsertReading(context.Background(), &r)

	status, body := do(t, app, fiber.MethodGet, "/api/admin/meters", "")
	var ms []map[string]any
	if err := json.Unmarshal(body, &ms); err != nil || status != fiber.StatusOK {
		t.Fatalf("meters: %d %s", status, body)
	}
	if len(ms) != 2 || ms[0]["meterId"] != "MTR-1011" || ms[0]["latestReading"] != nil || ms[1]["latestReading"] == nil {
		t.Fatalf("unexpected meters %s", body)
	}

	status, body = do(t, app, fiber.MethodGet, "/api/admin/stats", "")
	var st service.SystemStats
	if err := json.Unmarshal(body, &st); err != nil || status != fiber.StatusOK {
		t.Fatalf("stats: %d %s", status, body)
	}
	if st.Meters.Total != 2 || st.Meters.Active != 1 || st.Meters.Inactive != 1 {
		t.Fatalf("unexpected meter stats %+v", st.Meters)
	}

	status, body = do(t, app, fiber.MethodGet, "/api/admin/meters/MTR-1001", "")
	var d service.MeterDetails
	if err := json.Unmarshal(body, &d); err != nil || status != fiber.StatusOK {
		t.Fatalf("details: %d %s", status, body)
	}
	if d.Meter.MeterID != "MTR-1001" || d.Statistics.TotalReadings != 1 || d.LatestReading == nil {
		t.Fatalf("unexpected details %+v", d)
	}
}

func TestAnalyticsRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := do(t, app, fiber.MethodGet, "/api/admin/analytics/area-wise", "")
	var areas []service.AreaAnalytics
	if err := json.Unmarshal(body, &areas); err != nil || status != fiber.StatusOK {
		t.Fatalf("area-wise: %d %s", status, body)
	}
	if len(areas) != 2 || areas[0].Area != "Zone A" || areas[0].Prediction.Trend != "stable" {
		t.Fatalf("unexpected areas %s", body)
	}

	status, body = do(t, app, fiber.MethodGet, "/api/admin/analytics/prediction", "")
	if status != fiber.StatusOK || !strings.Contains(string(body), `"trend":"insufficient_data"`) {
		t.Fatalf("prediction: %d %s", status, body)
	}
}
