package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Spot statuses as stored by the API.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

// Booking statuses.
const (
	BookingActive   = "active"
	BookingReleased = "released"
)

// Lot is a parking lot. Spots is only populated by create/update responses.
type Lot struct {
	ID                int             `json:"id"`
	PrimeLocationName string          `json:"prime_location_name"`
	Address           string          `json:"address"`
	PinCode           string          `json:"pin_code"`
	PricePerHour      decimal.Decimal `json:"price_per_hour"`
	NumberOfSpots     int             `json:"number_of_spots"`
	CreatedAt         string          `json:"created_at,omitempty"`
	Spots             []Spot          `json:"spots,omitempty"`
}

// Spot is a single bookable unit of a lot.
type Spot struct {
	ID            int     `json:"id"`
	LotID         int     `json:"lot_id,omitempty"`
	SpotNumber    string  `json:"spot_number"`
	Status        string  `json:"status"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
	ReservedAt    *string `json:"reserved_at,omitempty"`
}

// Available reports whether the spot can be reserved.
func (s Spot) Available() bool {
	return s.Status == SpotAvailable
}

// LotSpots is the spot listing of one lot.
type LotSpots struct {
	LotName string `json:"lot_name"`
	Spots   []Spot `json:"spots"`
}

// SpotInfo describes a spot and, when occupied, who is parked there.
type SpotInfo struct {
	SpotID        int     `json:"spot_id"`
	SpotNumber    string  `json:"spot_number"`
	Status        string  `json:"status"`
	LotName       *string `json:"lot_name"`
	VehicleNumber *string `json:"vehicle_number"`
	ReservedAt    *string `json:"reserved_at"`
	UserName      *string `json:"user_name"`
	UserEmail     *string `json:"user_email"`
}

// SpotOccupant is the admin view of a spot's current reservation.
type SpotOccupant struct {
	User struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	} `json:"user"`
	VehicleNumber *string         `json:"vehicle_number"`
	StartTime     *string         `json:"start_time"`
	CostTillNow   decimal.Decimal `json:"cost_till_now"`
}

// BookingUser is the user summary attached to admin booking listings.
type BookingUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Booking is a reservation of a spot.
type Booking struct {
	ID               int                 `json:"id"`
	UserID           int                 `json:"user_id"`
	SpotID           int                 `json:"spot_id"`
	LotName          *string             `json:"lot_name"`
	SpotNumber       *string             `json:"spot_number"`
	Status           string              `json:"status"`
	Cost             decimal.NullDecimal `json:"cost"`
	ParkingTimestamp *string             `json:"parking_timestamp"`
	LeavingTimestamp *string             `json:"leaving_timestamp"`
	VehicleNumber    string              `json:"vehicle_number"`
	Remarks          *string             `json:"remarks"`
	User             *BookingUser        `json:"user,omitempty"`
}

// Released reports whether the booking has been finalized.
func (b Booking) Released() bool {
	return b.Status == BookingReleased || b.LeavingTimestamp != nil
}

// LotOccupancy is one bar of the occupancy charts. UserBooked is only set on
// the per-user chart.
type LotOccupancy struct {
	LotID      int    `json:"lot_id"`
	LotName    string `json:"lot_name"`
	TotalSpots int    `json:"total_spots"`
	Available  int    `json:"available,omitempty"`
	Occupied   int    `json:"occupied,omitempty"`
	UserBooked int    `json:"user_booked,omitempty"`
}

// MonthlyCount is reservations per "YYYY-MM".
type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// ChartData holds chart series. The zero value is the empty chart mapping.
type ChartData struct {
	SpotsByLot          []LotOccupancy `json:"spots_by_lot,omitempty"`
	MonthlyReservations []MonthlyCount `json:"monthly_reservations,omitempty"`
}

// Empty reports whether no series are present.
func (c ChartData) Empty() bool {
	return len(c.SpotsByLot) == 0 && len(c.MonthlyReservations) == 0
}

// DashboardSummary is the admin landing page counters.
type DashboardSummary struct {
	Lots               int `json:"lots"`
	Spots              int `json:"spots"`
	OccupiedSpots      int `json:"occupied_spots"`
	Users              int `json:"users"`
	ActiveReservations int `json:"active_reservations"`
}

// Reservation is the result of reserving a spot.
type Reservation struct {
	ReservationID int `json:"reservation_id"`
	SpotID        int `json:"spot_id"`
}

// Export task states reported by the download endpoint.
const (
	ExportPending = "pending"
	ExportFailed  = "failed"
	ExportReady   = "ready"
)

// ExportStatus is the state of a CSV export task. CSV is set once Ready.
type ExportStatus struct {
	State   string
	Message string
	CSV     []byte
}

// LotInput is the create payload of a lot.
type LotInput struct {
	PrimeLocationName string          `json:"prime_location_name" validate:"required"`
	Address           string          `json:"address" validate:"required"`
	PinCode           string          `json:"pin_code" validate:"required,max=10"`
	PricePerHour      decimal.Decimal `json:"price_per_hour"`
	NumberOfSpots     int             `json:"number_of_spots" validate:"gte=0"`
}

// MarshalJSON sends the price as a JSON number; the API parses it as a float.
func (in LotInput) MarshalJSON() ([]byte, error) {
	type plain LotInput
	return json.Marshal(struct {
		plain
		PricePerHour json.Number `json:"price_per_hour"`
	}{plain: plain(in), PricePerHour: json.Number(in.PricePerHour.String())})
}

// LotUpdate is a partial update; nil fields are left untouched.
type LotUpdate struct {
	PrimeLocationName *string          `json:"prime_location_name,omitempty" validate:"omitempty,min=1"`
	Address           *string          `json:"address,omitempty" validate:"omitempty,min=1"`
	PinCode           *string          `json:"pin_code,omitempty" validate:"omitempty,min=1,max=10"`
	PricePerHour      *decimal.Decimal `json:"-"`
	NumberOfSpots     *int             `json:"number_of_spots,omitempty" validate:"omitempty,gte=0"`
}

// MarshalJSON sends the price as a JSON number when present.
func (u LotUpdate) MarshalJSON() ([]byte, error) {
	type plain LotUpdate
	out := struct {
		plain
		PricePerHour *json.Number `json:"price_per_hour,omitempty"`
	}{plain: plain(u)}
	if u.PricePerHour != nil {
		n := json.Number(u.PricePerHour.String())
		out.PricePerHour = &n
	}
	return json.Marshal(out)
}

// ReserveInput is the reservation payload.
type ReserveInput struct {
	UserID        int    `json:"user_id" validate:"required,gt=0"`
	LotID         int    `json:"lot_id" validate:"required,gt=0"`
	VehicleNumber string `json:"vehicle_number" validate:"required,max=20"`
}
