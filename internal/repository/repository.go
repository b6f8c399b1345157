package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/electometer/smart-meter/internal/domain"
)

// Repos is the PostgreSQL-backed Store.
type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

var _ Store = (*Repos)(nil)

func (r *Repos) InsertMeters(ctx context.Context, meters []domain.Meter) error {
	if len(meters) == 0 {
		return nil
	}
	for i := range meters {
		if meters[i].Area == "" {
			meters[i].Area = domain.DefaultArea
		}
		if meters[i].CreatedAt.IsZero() {
			meters[i].CreatedAt = time.Now().UTC()
		}
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO meters(meter_id, owner_name, address, area, latitude, longitude, created_at)
		VALUES (:meter_id, :owner_name, :address, :area, :latitude, :longitude, :created_at)`, meters)
	return err
}

const meterColumns = `meter_id, owner_name, address, area, latitude, longitude, created_at`

func (r *Repos) GetMeter(ctx context.Context, meterID string) (*domain.Meter, error) {
	var m domain.Meter
	err := r.db.GetContext(ctx, &m, `SELECT `+meterColumns+` FROM meters WHERE meter_id = $1`, meterID)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *Repos) ListMeters(ctx context.Context) ([]domain.Meter, error) {
	out := []domain.Meter{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+meterColumns+` FROM meters ORDER BY created_at DESC, meter_id`)
	return out, err
}

func (r *Repos) CountMeters(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM meters`)
	return n, err
}

func (r *Repos) InsertReading(ctx context.Context, rd *domain.Reading) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO readings(meter_id, timestamp, power_watts, voltage, current) VALUES ($1,$2,$3,$4,$5)`,
		rd.MeterID, rd.Timestamp, rd.PowerWatts, rd.Voltage, rd.Current)
	return err
}

// readingBatch keeps each multi-row insert below the PostgreSQL parameter limit.
const readingBatch = 1000

func (r *Repos) InsertReadings(ctx context.Context, rs []domain.Reading) error {
	for start := 0; start < len(rs); start += readingBatch {
		end := min(start+readingBatch, len(rs))
		_, err := r.db.NamedExecContext(ctx, `INSERT INTO readings(meter_id, timestamp, power_watts, voltage, current)
			VALUES (:meter_id, :timestamp, :power_watts, :voltage, :current)`, rs[start:end])
		if err != nil {
			return fmt.Errorf("insert readings %d-%d: %w", start, end, err)
		}
	}
	return nil
}

const readingColumns = `meter_id, timestamp, power_watts, voltage, current`

func (r *Repos) LatestReading(ctx context.Context, meterID string) (*domain.Reading, error) {
	var rd domain.Reading
	err := r.db.GetContext(ctx, &rd, `SELECT `+readingColumns+` FROM readings WHERE meter_id = $1 ORDER BY timestamp DESC LIMIT 1`, meterID)
	if err != nil {
		return nil, notFound(err)
	}
	return &rd, nil
}

func (r *Repos) ReadingsBetween(ctx context.Context, meterID string, from, to time.Time) ([]domain.Reading, error) {
	out := []domain.Reading{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+readingColumns+` FROM readings
		WHERE meter_id = $1 AND timestamp >= $2 AND timestamp < $3 ORDER BY timestamp`, meterID, from, to)
	return out, err
}

func (r *Repos) CountReadings(ctx context.Context, meterID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM readings WHERE meter_id = $1`, meterID)
	return n, err
}

func (r *Repos) ActiveMeterIDs(ctx context.Context, since time.Time) ([]string, error) {
	out := []string{}
	err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT meter_id FROM readings WHERE timestamp >= $1 ORDER BY meter_id`, since)
	return out, err
}

func (r *Repos) LatestPower(ctx context.Context, meterIDs []string) (map[string]float64, error) {
	var rows []struct {
		MeterID string  `db:"meter_id"`
		Power   float64 `db:"power_watts"`
	}
	q := `SELECT DISTINCT ON (meter_id) meter_id, power_watts FROM readings`
	args := []any{}
	if meterIDs != nil {
		q += ` WHERE meter_id = ANY($1)`
		args = append(args, meterIDs)
	}
	q += ` ORDER BY meter_id, timestamp DESC`
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.MeterID] = row.Power
	}
	return out, nil
}

func (r *Repos) DailyAveragePower(ctx context.Context, meterIDs []string, since time.Time) ([]domain.DailyPower, error) {
	q := `SELECT to_char(timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date,
			avg(power_watts) AS avg_power, count(*) AS total_readings
		FROM readings WHERE timestamp >= $1`
	args := []any{since}
	if meterIDs != nil {
		q += ` AND meter_id = ANY($2)`
		args = append(args, meterIDs)
	}
	q += ` GROUP BY 1 ORDER BY 1`
	out := []domain.DailyPower{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *Repos) HourlyAveragePower(ctx context.Context, meterIDs []string, since time.Time) ([]domain.HourlyPower, error) {
	q := `SELECT extract(hour FROM timestamp AT TIME ZONE 'UTC')::int AS hour, avg(power_watts) AS avg_power
		FROM readings WHERE timestamp >= $1`
	args := []any{since}
	if meterIDs != nil {
		q += ` AND meter_id = ANY($2)`
		args = append(args, meterIDs)
	}
	q += ` GROUP BY 1 ORDER BY 1`
	out := []domain.HourlyPower{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *Repos) InsertBills(ctx context.Context, bills []domain.Bill) (int, error) {
	written := 0
	for i := range bills {
		b := &bills[i]
		if b.Status == "" {
			b.Status = domain.BillDue
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = time.Now().UTC()
		}
		rows, err := r.db.NamedQueryContext(ctx, `INSERT INTO bills(meter_id, month, year, total_kwh, amount_due, status, due_date, created_at)
			VALUES (:meter_id, :month, :year, :total_kwh, :amount_due, :status, :due_date, :created_at)
			ON CONFLICT (meter_id, month, year) DO NOTHING RETURNING id`, b)
		if err != nil {
			return written, fmt.Errorf("insert bill %s %d/%d: %w", b.MeterID, b.Month, b.Year, err)
		}
		if rows.Next() {
			if err := rows.Scan(&b.ID); err != nil {
				rows.Close()
				return written, err
			}
			written++
		}
		rows.Close()
	}
	return written, nil
}

const billColumns = `id, meter_id, month, year, total_kwh, amount_due, status, due_date, created_at`

func billWhere(f domain.BillFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MeterID != "" {
		add("meter_id = $%d", f.MeterID)
	}
	if f.MeterIDs != nil {
		add("meter_id = ANY($%d)", f.MeterIDs)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if !f.CreatedSince.IsZero() {
		add("created_at >= $%d", f.CreatedSince)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repos) ListBills(ctx context.Context, f domain.BillFilter) ([]domain.Bill, error) {
	where, args := billWhere(f)
	q := `SELECT ` + billColumns + ` FROM bills` + where + ` ORDER BY year DESC, month DESC, meter_id`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	out := []domain.Bill{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *Repos) BillTotals(ctx context.Context, f domain.BillFilter) (domain.BillTotals, error) {
	where, args := billWhere(f)
	var t domain.BillTotals
	err := r.db.GetContext(ctx, &t, `SELECT count(*) AS count, coalesce(sum(total_kwh), 0) AS total_kwh,
		coalesce(sum(amount_due), 0) AS amount FROM bills`+where, args...)
	return t, err
}

func (r *Repos) UpdateBillStatus(ctx context.Context, id int64, status domain.BillStatus) (*domain.Bill, error) {
	var b domain.Bill
	err := r.db.GetContext(ctx, &b, `UPDATE bills SET status = $1 WHERE id = $2 RETURNING `+billColumns, string(status), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *Repos) InsertAlert(ctx context.Context, a *domain.Alert) error {
	return r.db.GetContext(ctx, &a.ID, `INSERT INTO alerts(meter_id, timestamp, type, message) VALUES ($1,$2,$3,$4) RETURNING id`,
		a.MeterID, a.Timestamp, string(a.Type), a.Message)
}

func (r *Repos) InsertAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO alerts(meter_id, timestamp, type, message)
		VALUES (:meter_id, :timestamp, :type, :message)`, alerts)
	return err
}

func alertWhere(f domain.AlertFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.MeterID != "" {
		add("meter_id = $%d", f.MeterID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if !f.Since.IsZero() {
		add("timestamp >= $%d", f.Since)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repos) ListAlerts(ctx context.Context, f domain.AlertFilter) ([]domain.Alert, error) {
	where, args := alertWhere(f)
	q := `SELECT id, meter_id, timestamp, type, message FROM alerts` + where + ` ORDER BY timestamp DESC, id DESC`
	if f.Limit > 0 {
		q += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}
	out := []domain.Alert{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *Repos) CountAlerts(ctx context.Context, f domain.AlertFilter) (int, error) {
	where, args := alertWhere(f)
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM alerts`+where, args...)
	return n, err
}

func (r *Repos) GetAdminByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.db.GetContext(ctx, &a, `SELECT id, username, password_hash, name, email, role,
		view_all_meters, view_all_bills, view_all_alerts, update_bills, manage_meters, created_at, last_login
		FROM admins WHERE username = $1`, username)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *Repos) InsertAdmin(ctx context.Context, a *domain.Admin) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	rows, err := r.db.NamedQueryContext(ctx, `INSERT INTO admins(username, password_hash, name, email, role,
			view_all_meters, view_all_bills, view_all_alerts, update_bills, manage_meters, created_at)
		VALUES (:username, :password_hash, :name, :email, :role,
			:view_all_meters, :view_all_bills, :view_all_alerts, :update_bills, :manage_meters, :created_at)
		ON CONFLICT DO NOTHING RETURNING id`, a)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		return ErrDuplicate
	}
	return rows.Scan(&a.ID)
}

func (r *Repos) TouchAdminLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
