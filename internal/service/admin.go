package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/electometer/smart-meter/internal/domain"
	"github.com/electometer/smart-meter/internal/repository"
)

const (
	DefaultListLimit = 100

	activeWindow      = 5 * time.Minute
	recentAlertWindow = 24 * time.Hour
	energyWindow      = 30 * 24 * time.Hour

	defaultAdminName  = "System Administrator"
	defaultAdminEmail = "admin@electometer.com"
)

type AdminService struct {
	store repository.Store
	admin AdminCredentials
	now   func() time.Time
}

// Login checks the credentials and stamps the admin's last login.
func (s *AdminService) Login(ctx context.Context, username, password string) (*domain.Admin, error) {
	a, err := s.store.GetAdminByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	at := s.now().UTC()
	if err := s.store.TouchAdminLogin(ctx, a.ID, at); err != nil {
		return nil, fmt.Errorf("touch admin login: %w", err)
	}
	a.LastLogin = &at
	return a, nil
}

// EnsureDefaultAdmin creates the configured admin account when it does not exist yet.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context) error {
	_, err := s.store.GetAdminByUsername(ctx, s.admin.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup default admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default admin password: %w", err)
	}
	a := &domain.Admin{
		Username:     s.admin.Username,
		PasswordHash: string(hash),
		Name:         defaultAdminName,
		Email:        defaultAdminEmail,
		Role:         domain.RoleSuperAdmin,
		Permissions:  domain.AllPermissions(),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.InsertAdmin(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("insert default admin: %w", err)
	}
	log.Info().Str("username", a.Username).Msg("default admin created")
	return nil
}

type MeterStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type BillStats struct {
	Total int `json:"total"`
	Due   int `json:"due"`
	Paid  int `json:"paid"`
}

type AlertStats struct {
	Total          int `json:"total"`
	Recent24h      int `json:"recent24h"`
	TheftSuspicion int `json:"theftSuspicion"`
	HighUsage      int `json:"highUsage"`
}

type RevenueStats struct {
	Total     float64 `json:"total"`
	Pending   float64 `json:"pending"`
	Collected float64 `json:"collected"`
}

type EnergyStats struct {
	TotalKWh float64 `json:"totalKwh"`
}

// SystemStats is the admin dashboard summary.
type SystemStats struct {
	Meters  MeterStats   `json:"meters"`
	Bills   BillStats    `json:"bills"`
	Alerts  AlertStats   `json:"alerts"`
	Revenue RevenueStats `json:"revenue"`
	Energy  EnergyStats  `json:"energy"`
}

func (s *AdminService) Stats(ctx context.Context) (*SystemStats, error) {
	now := s.now().UTC()
	var st SystemStats

	total, err := s.store.CountMeters(ctx)
	if err != nil {
		return nil, fmt.Errorf("count meters: %w", err)
	}
	active, err := s.store.ActiveMeterIDs(ctx, now.Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("active meters: %w", err)
	}
	st.Meters = MeterStats{Total: total, Active: len(active), Inactive: max(0, total-len(active))}

	all, err := s.store.BillTotals(ctx, domain.BillFilter{})
	if err != nil {
		return nil, fmt.Errorf("bill totals: %w", err)
	}
	due, err := s.store.BillTotals(ctx, domain.BillFilter{Status: domain.BillDue})
	if err != nil {
		return nil, fmt.Errorf("due bill totals: %w", err)
	}
	paid, err := s.store.BillTotals(ctx, domain.BillFilter{Status: domain.BillPaid})
	if err != nil {
		return nil, fmt.Errorf("paid bill totals: %w", err)
	}
	recentBills, err := s.store.BillTotals(ctx, domain.BillFilter{CreatedSince: now.Add(-energyWindow)})
	if err != nil {
		return nil, fmt.Errorf("recent bill totals: %w", err)
	}
	st.Bills = BillStats{Total: all.Count, Due: due.Count, Paid: paid.Count}
	// collected and total revenue are both what has been paid so far
	st.Revenue = RevenueStats{Total: paid.Amount, Pending: due.Amount, Collected: paid.Amount}
	st.Energy = EnergyStats{TotalKWh: recentBills.TotalKWh}

	counts := []struct {
		dst *int
		f   domain.AlertFilter
	}{
		{&st.Alerts.Total, domain.AlertFilter{}},
		{&st.Alerts.Recent24h, domain.AlertFilter{Since: now.Add(-recentAlertWindow)}},
		{&st.Alerts.TheftSuspicion, domain.AlertFilter{Type: domain.AlertTheftSuspicion}},
		{&st.Alerts.HighUsage, domain.AlertFilter{Type: domain.AlertHighUsage}},
	}
	for _, c := range counts {
		n, err := s.store.CountAlerts(ctx, c.f)
		if err != nil {
			return nil, fmt.Errorf("count alerts: %w", err)
		}
		*c.dst = n
	}
	return &st, nil
}

// MeterWithReading is a meter listing row.
type MeterWithReading struct {
	domain.Meter
	LatestReading *domain.Reading `json:"latestReading"`
}

func (s *AdminService) ListMeters(ctx context.Context) ([]MeterWithReading, error) {
	meters, err := s.store.ListMeters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meters: %w", err)
	}
	out := make([]MeterWithReading, 0, len(meters))
	for _, m := range meters {
		r, err := s.latest(ctx, m.MeterID)
		if err != nil {
			return nil, err
		}
		out = append(out, MeterWithReading{Meter: m, LatestReading: r})
	}
	return out, nil
}

func (s *AdminService) latest(ctx context.Context, meterID string) (*domain.Reading, error) {
	r, err := s.store.LatestReading(ctx, meterID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest reading of %s: %w", meterID, err)
	}
	return r, nil
}

type MeterStatistics struct {
	TotalReadings int `json:"totalReadings"`
	TotalBills    int `json:"totalBills"`
	TotalAlerts   int `json:"totalAlerts"`
}

type MeterDetails struct {
	Meter         domain.Meter    `json:"meter"`
	LatestReading *domain.Reading `json:"latestReading"`
	Bills         []domain.Bill   `json:"bills"`
	Alerts        []domain.Alert  `json:"alerts"`
	Statistics    MeterStatistics `json:"statistics"`
}

// MeterDetails returns repository.ErrNotFound for unknown meters.
func (s *AdminService) MeterDetails(ctx context.Context, meterID string) (*MeterDetails, error) {
	m, err := s.store.GetMeter(ctx, meterID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latest(ctx, meterID)
	if err != nil {
		return nil, err
	}
	bills, err := s.store.ListBills(ctx, domain.BillFilter{MeterID: meterID})
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	alerts, err := s.store.ListAlerts(ctx, domain.AlertFilter{MeterID: meterID})
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	readings, err := s.store.CountReadings(ctx, meterID)
	if err != nil {
		return nil, fmt.Errorf("count readings: %w", err)
	}
	return &MeterDetails{
		Meter:         *m,
		LatestReading: latest,
		Bills:         bills,
		Alerts:        alerts,
		Statistics: MeterStatistics{
			TotalReadings: readings,
			TotalBills:    len(bills),
			TotalAlerts:   len(alerts),
		},
	}, nil
}

// ParseBillStatus accepts an empty string (any status) or DUE/PAID in any case.
func ParseBillStatus(raw string) (domain.BillStatus, error) {
	if raw == "" {
		return "", nil
	}
	st := domain.BillStatus(strings.ToUpper(raw))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ParseAlertType accepts an empty string (any type) or a known type in any case.
func ParseAlertType(raw string) (domain.AlertType, error) {
	if raw == "" {
		return "", nil
	}
	t := domain.AlertType(strings.ToUpper(raw))
	if !t.Valid() {
		return "", ErrInvalidAlertType
	}
	return t, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func (s *AdminService) ListBills(ctx context.Context, status domain.BillStatus, limit int) ([]domain.Bill, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.ListBills(ctx, domain.BillFilter{Status: status, Limit: listLimit(limit)})
}

// UpdateBillStatus only accepts DUE and PAID, exactly as written.
func (s *AdminService) UpdateBillStatus(ctx context.Context, id int64, status domain.BillStatus) (*domain.Bill, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	b, err := s.store.UpdateBillStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("bill_id", id).Str("status", string(status)).Msg("bill status updated")
	return b, nil
}

func (s *AdminService) ListAlerts(ctx context.Context, t domain.AlertType, limit int) ([]domain.Alert, error) {
	if t != "" && !t.Valid() {
		return nil, ErrInvalidAlertType
	}
	return s.store.ListAlerts(ctx, domain.AlertFilter{Type: t, Limit: listLimit(limit)})
}
