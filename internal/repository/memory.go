package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/electometer/smart-meter/internal/domain"
)

// Memory is an in-process Store used for local runs without PostgreSQL and for tests.
type Memory struct {
	mu       sync.RWMutex
	meters   map[string]domain.Meter
	readings map[string][]domain.Reading // per meter, kept sorted by timestamp
	bills    []domain.Bill
	alerts   []domain.Alert
	admins   []domain.Admin
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{
		meters:   make(map[string]domain.Meter),
		readings: make(map[string][]domain.Reading),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) InsertMeters(_ context.Context, meters []domain.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range meters {
		if _, ok := m.meters[mt.MeterID]; ok {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	for _, mt := range meters {
		if mt.Area == "" {
			mt.Area = domain.DefaultArea
		}
		if mt.CreatedAt.IsZero() {
			mt.CreatedAt = now
		}
		m.meters[mt.MeterID] = mt
	}
	return nil
}

func (m *Memory) GetMeter(_ context.Context, meterID string) (*domain.Meter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.meters[meterID]
	if !ok {
		return nil, ErrNotFound
	}
	return &mt, nil
}

func (m *Memory) ListMeters(_ context.Context) ([]domain.Meter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Meter, 0, len(m.meters))
	for _, mt := range m.meters {
		out = append(out, mt)
	}
	slices.SortFunc(out, func(a, b domain.Meter) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.MeterID, b.MeterID)
	})
	return out, nil
}

func (m *Memory) CountMeters(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meters), nil
}

func (m *Memory) InsertReading(ctx context.Context, r *domain.Reading) error {
	return m.InsertReadings(ctx, []domain.Reading{*r})
}

func (m *Memory) InsertReadings(_ context.Context, rs []domain.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rs {
		if _, ok := m.meters[r.MeterID]; !ok {
			return ErrNotFound
		}
	}
	touched := map[string]bool{}
	for _, r := range rs {
		m.readings[r.MeterID] = append(m.readings[r.MeterID], r)
		touched[r.MeterID] = true
	}
	for id := range touched {
		slices.SortStableFunc(m.readings[id], func(a, b domain.Reading) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	}
	return nil
}

func (m *Memory) LatestReading(_ context.Context, meterID string) (*domain.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs := m.readings[meterID]
	if len(rs) == 0 {
		return nil, ErrNotFound
	}
	r := rs[len(rs)-1]
	return &r, nil
}

func (m *Memory) ReadingsBetween(_ context.Context, meterID string, from, to time.Time) ([]domain.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Reading{}
	for _, r := range m.readings[meterID] {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) CountReadings(_ context.Context, meterID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.readings[meterID]), nil
}

func (m *Memory) ActiveMeterIDs(_ context.Context, since time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []string{}
	for id, rs := range m.readings {
		if len(rs) > 0 && !rs[len(rs)-1].Timestamp.Before(since) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

// selected returns the meter ids a query applies to; nil means every meter with readings.
func (m *Memory) selected(meterIDs []string) []string {
	if meterIDs != nil {
		return meterIDs
	}
	ids := make([]string, 0, len(m.readings))
	for id := range m.readings {
		ids = append(ids, id)
	}
	return ids
}

func (m *Memory) LatestPower(_ context.Context, meterIDs []string) (map[string]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]float64{}
	for _, id := range m.selected(meterIDs) {
		if rs := m.readings[id]; len(rs) > 0 {
			out[id] = rs[len(rs)-1].PowerWatts
		}
	}
	return out, nil
}

func (m *Memory) DailyAveragePower(_ context.Context, meterIDs []string, since time.Time) ([]domain.DailyPower, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type acc struct {
		sum float64
		n   int
	}
	days := map[string]*acc{}
	for _, id := range m.selected(meterIDs) {
		for _, r := range m.readings[id] {
			if r.Timestamp.Before(since) {
				continue
			}
			key := r.Timestamp.UTC().Format(time.DateOnly)
			a := days[key]
			if a == nil {
				a = &acc{}
				days[key] = a
			}
			a.sum += r.PowerWatts
			a.n++
		}
	}
	out := make([]domain.DailyPower, 0, len(days))
	for day, a := range days {
		out = append(out, domain.DailyPower{Date: day, AvgPower: a.sum / float64(a.n), TotalReadings: a.n})
	}
	slices.SortFunc(out, func(a, b domain.DailyPower) int { return cmp.Compare(a.Date, b.Date) })
	return out, nil
}

func (m *Memory) HourlyAveragePower(_ context.Context, meterIDs []string, since time.Time) ([]domain.HourlyPower, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sums [24]float64
	var counts [24]int
	for _, id := range m.selected(meterIDs) {
		for _, r := range m.readings[id] {
			if r.Timestamp.Before(since) {
				continue
			}
			h := r.Timestamp.UTC().Hour()
			sums[h] += r.PowerWatts
			counts[h]++
		}
	}
	out := []domain.HourlyPower{}
	for h := 0; h < 24; h++ {
		if counts[h] > 0 {
			out = append(out, domain.HourlyPower{Hour: h, AvgPower: sums[h] / float64(counts[h])})
		}
	}
	return out, nil
}

func (m *Memory) InsertBills(_ context.Context, bills []domain.Bill) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	written := 0
	now := time.Now().UTC()
	for i := range bills {
		b := &bills[i]
		if slices.ContainsFunc(m.bills, func(x domain.Bill) bool {
			return x.MeterID == b.MeterID && x.Month == b.Month && x.Year == b.Year
		}) {
			continue
		}
		if b.Status == "" {
			b.Status = domain.BillDue
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.ID = m.id()
		m.bills = append(m.bills, *b)
		written++
	}
	return written, nil
}

func billMatches(f domain.BillFilter, b domain.Bill) bool {
	if f.MeterID != "" && b.MeterID != f.MeterID {
		return false
	}
	if f.MeterIDs != nil && !slices.Contains(f.MeterIDs, b.MeterID) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if !f.CreatedSince.IsZero() && b.CreatedAt.Before(f.CreatedSince) {
		return false
	}
	return true
}

func (m *Memory) ListBills(_ context.Context, f domain.BillFilter) ([]domain.Bill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Bill{}
	for _, b := range m.bills {
		if billMatches(f, b) {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Bill) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Month, a.Month); c != 0 {
			return c
		}
		return cmp.Compare(a.MeterID, b.MeterID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) BillTotals(_ context.Context, f domain.BillFilter) (domain.BillTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var t domain.BillTotals
	for _, b := range m.bills {
		if billMatches(f, b) {
			t.Count++
			t.TotalKWh += b.TotalKWh
			t.Amount += b.AmountDue
		}
	}
	return t, nil
}

func (m *Memory) UpdateBillStatus(_ context.Context, id int64, status domain.BillStatus) (*domain.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bills {
		if m.bills[i].ID == id {
			m.bills[i].Status = status
			b := m.bills[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertAlert(_ context.Context, a *domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meters[a.MeterID]; !ok {
		return ErrNotFound
	}
	a.ID = m.id()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *Memory) InsertAlerts(ctx context.Context, alerts []domain.Alert) error {
	for i := range alerts {
		if err := m.InsertAlert(ctx, &alerts[i]); err != nil {
			return err
		}
	}
	return nil
}

func alertMatches(f domain.AlertFilter, a domain.Alert) bool {
	if f.MeterID != "" && a.MeterID != f.MeterID {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && a.Timestamp.Before(f.Since) {
		return false
	}
	return true
}

func (m *Memory) ListAlerts(_ context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Alert{}
	for _, a := range m.alerts {
		if alertMatches(f, a) {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Alert) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) CountAlerts(_ context.Context, f domain.AlertFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.alerts {
		if alertMatches(f, a) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) GetAdminByUsername(_ context.Context, username string) (*domain.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.admins {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertAdmin(_ context.Context, a *domain.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.admins {
		if x.Username == a.Username || x.Email == a.Email {
			return ErrDuplicate
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.ID = m.id()
	m.admins = append(m.admins, *a)
	return nil
}

func (m *Memory) TouchAdminLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.admins {
		if m.admins[i].ID == id {
			m.admins[i].LastLogin = &at
			return nil
		}
	}
	return ErrNotFound
}
