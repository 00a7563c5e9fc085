package model

import (
	"time"

	"innkeep/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                 = "id"
	FieldUserID             = "user_id"
	FieldRoomID             = "room_id"
	FieldBookingType        = "booking_type"
	FieldStartTime          = "start_time"
	FieldEndTime            = "end_time"
	FieldGuestName          = "guest_name"
	FieldGuestEmail         = "guest_email"
	FieldGuestPhone         = "guest_phone"
	FieldNumberOfGuests     = "number_of_guests"
	FieldStatus             = "status"
	FieldTotalPrice         = "total_price"
	FieldActualCheckinTime  = "actual_checkin_time"
	FieldActualCheckoutTime = "actual_checkout_time"
	FieldCancelledAt        = "cancelled_at"
	FieldCancellationReason = "cancellation_reason"
	FieldSpecialRequests    = "special_requests"
	FieldNotes              = "notes"
)

const (
	TypeHourly = "hourly"
	TypeDaily  = "daily"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
	StatusExpired    = "expired"
)

// OccupyingStatuses are the statuses that hold a room for their time range.
// Terminal rows never block new bookings.
var OccupyingStatuses = []string{StatusPending, StatusConfirmed, StatusCheckedIn}

type Booking struct {
	ID                 string          `db:"id"`
	UserID             string          `db:"user_id"`
	RoomID             string          `db:"room_id"`
	BookingType        string          `db:"booking_type"`
	StartTime          time.Time       `db:"start_time"`
	EndTime            time.Time       `db:"end_time"`
	GuestName          string          `db:"guest_name"`
	GuestEmail         string          `db:"guest_email"`
	GuestPhone         string          `db:"guest_phone"`
	NumberOfGuests     int             `db:"number_of_guests"`
	Status             string          `db:"status"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	ActualCheckinTime  *time.Time      `db:"actual_checkin_time"`
	ActualCheckoutTime *time.Time      `db:"actual_checkout_time"`
	CancelledAt        *time.Time      `db:"cancelled_at"`
	CancellationReason *string         `db:"cancellation_reason"`
	SpecialRequests    *string         `db:"special_requests"`
	Notes              *string         `db:"notes"`
	model.Metadata
}

// Occupying reports whether the booking currently holds its room's time range.
func (b *Booking) Occupying() bool {
	for _, status := range OccupyingStatuses {
		if b.Status == status {
			return true
		}
	}

	return false
}

// Overlaps applies the half-open interval rule: [a, b) and [c, d) collide
// when a < d and c < b. Touching boundaries do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

// Duration is the booked length of stay.
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}
