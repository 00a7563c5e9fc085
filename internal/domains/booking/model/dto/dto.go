package dto

import (
	"fmt"
	"time"

	"innkeep/internal/domains/booking/model"
	"innkeep/shared"
	gDto "innkeep/shared/dto"
	"innkeep/shared/failure"
	gModel "innkeep/shared/model"
	"innkeep/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minHourlyDuration = time.Hour
	maxHourlyDuration = 12 * time.Hour
	minDailyDuration  = 24 * time.Hour
)

type CreateBookingRequest struct {
	RoomID          string    `json:"room_id"          validate:"required,uuid"`
	BookingType     string    `json:"booking_type"     validate:"required,oneof=hourly daily"`
	StartTime       time.Time `json:"start_time"       validate:"required"`
	EndTime         time.Time `json:"end_time"         validate:"required"`
	GuestName       string    `json:"guest_name"       validate:"required,max=100"`
	GuestEmail      string    `json:"guest_email"      validate:"required,email"`
	GuestPhone      string    `json:"guest_phone"      validate:"required,min=7,max=20"`
	NumberOfGuests  int       `json:"number_of_guests" validate:"required,min=1"`
	SpecialRequests *string   `json:"special_requests" validate:"omitempty,max=500"`
	Notes           *string   `json:"notes"            validate:"omitempty,max=500"`
}

// Validate enforces the time-range and duration rules the struct tags cannot
// express. Capacity and room checks belong to the service, which holds the
// room record.
func (c *CreateBookingRequest) Validate() error {
	if !c.EndTime.After(c.StartTime) {
		return failure.BadRequestFromString("end_time must be after start_time") //nolint:wrapcheck
	}

	duration := c.EndTime.Sub(c.StartTime)

	switch c.BookingType {
	case model.TypeHourly:
		if duration < minHourlyDuration {
			return failure.BadRequestFromString("hourly bookings must be at least 1 hour") //nolint:wrapcheck
		}

		if duration > maxHourlyDuration {
			return failure.BadRequestFromString("hourly bookings cannot exceed 12 hours") //nolint:wrapcheck
		}
	case model.TypeDaily:
		if duration < minDailyDuration {
			return failure.BadRequestFromString("daily bookings must be at least 24 hours") //nolint:wrapcheck
		}
	}

	return nil
}

func (c *CreateBookingRequest) ToModel(userID string, totalPrice decimal.Decimal) model.Booking {
	return model.Booking{
		ID:              uuid.NewString(),
		UserID:          userID,
		RoomID:          c.RoomID,
		BookingType:     c.BookingType,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		GuestName:       c.GuestName,
		GuestEmail:      c.GuestEmail,
		GuestPhone:      c.GuestPhone,
		NumberOfGuests:  c.NumberOfGuests,
		Status:          model.StatusConfirmed,
		TotalPrice:      totalPrice,
		SpecialRequests: c.SpecialRequests,
		Notes:           c.Notes,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

type BookingResponse struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	RoomID             string          `json:"room_id"`
	BookingType        string          `json:"booking_type"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            time.Time       `json:"end_time"`
	GuestName          string          `json:"guest_name"`
	GuestEmail         string          `json:"guest_email"`
	GuestPhone         string          `json:"guest_phone"`
	NumberOfGuests     int             `json:"number_of_guests"`
	Status             string          `json:"status"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ActualCheckinTime  *time.Time      `json:"actual_checkin_time,omitempty"`
	ActualCheckoutTime *time.Time      `json:"actual_checkout_time,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	SpecialRequests    *string         `json:"special_requests,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(model model.Booking) {
	b.ID = model.ID
	b.UserID = model.UserID
	b.RoomID = model.RoomID
	b.BookingType = model.BookingType
	b.StartTime = model.StartTime
	b.EndTime = model.EndTime
	b.GuestName = model.GuestName
	b.GuestEmail = model.GuestEmail
	b.GuestPhone = model.GuestPhone
	b.NumberOfGuests = model.NumberOfGuests
	b.Status = model.Status
	b.TotalPrice = model.TotalPrice
	b.ActualCheckinTime = model.ActualCheckinTime
	b.ActualCheckoutTime = model.ActualCheckoutTime
	b.CancelledAt = model.CancelledAt
	b.CancellationReason = model.CancellationReason
	b.SpecialRequests = model.SpecialRequests
	b.Notes = model.Notes
	b.Metadata.FromModel(model.Metadata)
}

type CheckOutResponse struct {
	Booking   BookingResponse `json:"booking"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		g.Bookings[i].FromModel(mod)
	}
}

type ExpireBookingsResponse struct {
	Expired int `json:"expired"`
}

// BookingEvent is the lifecycle event published to the booking topic.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	RoomID     string    `json:"room_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(booking model.Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  booking.ID,
		RoomID:     booking.RoomID,
		UserID:     booking.UserID,
		Status:     booking.Status,
		OccurredAt: occurredAt,
	}
}

func (e BookingEvent) String() string {
	return fmt.Sprintf("booking %s -> %s", e.BookingID, e.Status)
}
