package domain

import "time"

type Meter struct {
	MeterID   string    `db:"meter_id" json:"meterId"`
	OwnerName string    `db:"owner_name" json:"ownerName"`
	Address   string    `db:"address" json:"address"`
	Area      string    `db:"area" json:"area"`
	Latitude  *float64  `db:"latitude" json:"latitude"`
	Longitude *float64  `db:"longitude" json:"longitude"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// DefaultArea is assigned to meters registered without a zone.
const DefaultArea = "Zone A"

type Reading struct {
	MeterID    string    `db:"meter_id" json:"meterId"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
	PowerWatts float64   `db:"power_watts" json:"power_watts"`
	Voltage    float64   `db:"voltage" json:"voltage"`
	Current    float64   `db:"current" json:"current"`
}

type BillStatus string

const (
	BillDue  BillStatus = "DUE"
	BillPaid BillStatus = "PAID"
)

func (s BillStatus) Valid() bool { return s == BillDue || s == BillPaid }

type Bill struct {
	ID        int64      `db:"id" json:"id"`
	MeterID   string     `db:"meter_id" json:"meterId"`
	Month     int        `db:"month" json:"month"`
	Year      int        `db:"year" json:"year"`
	TotalKWh  float64    `db:"total_kwh" json:"total_kwh"`
	AmountDue float64    `db:"amount_due" json:"amount_due"`
	Status    BillStatus `db:"status" json:"status"`
	DueDate   time.Time  `db:"due_date" json:"dueDate"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

type AlertType string

const (
	AlertTheftSuspicion AlertType = "THEFT_SUSPICION"
	AlertHighUsage      AlertType = "HIGH_USAGE"
)

func (t AlertType) Valid() bool { return t == AlertTheftSuspicion || t == AlertHighUsage }

const (
	TheftMessage     = "Sudden power drop detected. Potential meter bypass or tampering suspected."
	HighUsageMessage = "Unusually high power consumption detected. Please check your appliances."
)

type Alert struct {
	ID        int64     `db:"id" json:"id"`
	MeterID   string    `db:"meter_id" json:"meterId"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Type      AlertType `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
}

type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

type Permissions struct {
	ViewAllMeters bool `db:"view_all_meters" json:"viewAllMeters"`
	ViewAllBills  bool `db:"view_all_bills" json:"viewAllBills"`
	ViewAllAlerts bool `db:"view_all_alerts" json:"viewAllAlerts"`
	UpdateBills   bool `db:"update_bills" json:"updateBills"`
	ManageMeters  bool `db:"manage_meters" json:"manageMeters"`
}

// AllPermissions is the permission set granted to newly created admins.
func AllPermissions() Permissions {
	return Permissions{true, true, true, true, true}
}

type Admin struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Role         AdminRole  `db:"role" json:"role"`
	Permissions  `json:"permissions"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
}
