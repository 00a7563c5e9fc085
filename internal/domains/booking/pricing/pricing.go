// Package pricing computes booking prices and late-checkout surcharges with
// exact decimal arithmetic. All amounts are rounded half-up to 2 decimals.
package pricing

import (
	"time"

	bookingModel "innkeep/internal/domains/booking/model"
	roomModel "innkeep/internal/domains/room/model"
	"innkeep/shared/failure"

	"github.com/shopspring/decimal"
)

var (
	secondsPerHour = decimal.NewFromInt(3600)
	hoursPerDay    = decimal.NewFromInt(24)
)

// Price returns the total price for booking the room over [start, end).
// Hourly bookings charge fractional hours at the hourly rate; daily bookings
// charge fractional days at the daily rate.
func Price(room roomModel.Room, bookingType string, start, end time.Time) (decimal.Decimal, error) {
	if !end.After(start) {
		return decimal.Zero, failure.BadRequestFromString("end time must be after start time") //nolint:wrapcheck
	}

	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	hours := seconds.Div(secondsPerHour)

	switch bookingType {
	case bookingModel.TypeHourly:
		return hours.Mul(room.HourlyRate).Round(2), nil
	case bookingModel.TypeDaily:
		days := hours.Div(hoursPerDay)

		return days.Mul(room.DailyRate).Round(2), nil
	default:
		return decimal.Zero, failure.BadRequestFromString("unknown booking type") //nolint:wrapcheck
	}
}

// LateCheckoutSurcharge returns the extra charge when the guest leaves after
// the booked end time. Zero when checkout is on time or early.
func LateCheckoutSurcharge(booking bookingModel.Booking, room roomModel.Room, actualCheckout time.Time) decimal.Decimal {
	if !actualCheckout.After(booking.EndTime) {
		return decimal.Zero
	}

	overstaySeconds := decimal.NewFromInt(int64(actualCheckout.Sub(booking.EndTime) / time.Second))
	extraHours := overstaySeconds.Div(secondsPerHour)

	if booking.BookingType == bookingModel.TypeDaily {
		hourlyEquivalent := room.DailyRate.Div(hoursPerDay)

		return extraHours.Mul(hourlyEquivalent).Round(2)
	}

	return extraHours.Mul(room.HourlyRate).Round(2)
}
