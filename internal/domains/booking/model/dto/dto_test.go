package dto_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"innkeep/internal/domains/booking/model"
	"innkeep/internal/domains/booking/model/dto"
)

func TestCreateBookingRequest_Validate(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		bookingType string
		duration    time.Duration
		wantErr     bool
	}{
		{
			name:        "hourly minimum duration",
			bookingType: model.TypeHourly,
			duration:    time.Hour,
		},
		{
			name:        "hourly below minimum",
			bookingType: model.TypeHourly,
			duration:    59 * time.Minute,
			wantErr:     true,
		},
		{
			name:        "hourly maximum duration",
			bookingType: model.TypeHourly,
			duration:    12 * time.Hour,
		},
		{
			name:        "hourly above maximum",
			bookingType: model.TypeHourly,
			duration:    12*time.Hour + time.Second,
			wantErr:     true,
		},
		{
			name:        "daily minimum duration",
			bookingType: model.TypeDaily,
			duration:    24 * time.Hour,
		},
		{
			name:        "daily below minimum",
			bookingType: model.TypeDaily,
			duration:    24*time.Hour - time.Second,
			wantErr:     true,
		},
		{
			name:        "daily multi day",
			bookingType: model.TypeDaily,
			duration:    72 * time.Hour,
		},
		{
			name:        "zero duration",
			bookingType: model.TypeHourly,
			duration:    0,
			wantErr:     true,
		},
		{
			name:        "negative duration",
			bookingType: model.TypeDaily,
			duration:    -time.Hour,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.CreateBookingRequest{
				BookingType: tt.bookingType,
				StartTime:   start,
				EndTime:     start.Add(tt.duration),
			}

			err := req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateBookingRequest_ToModel(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	req := dto.CreateBookingRequest{
		RoomID:         "room-id",
		BookingType:    model.TypeHourly,
		StartTime:      start,
		EndTime:        start.Add(2 * time.Hour),
		GuestName:      "Jane Guest",
		GuestEmail:     "jane@example.com",
		GuestPhone:     "08123456789",
		NumberOfGuests: 2,
	}

	booking := req.ToModel("user-1", decimal.NewFromInt(1000))

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, "user-1", booking.UserID)
	assert.Equal(t, model.StatusConfirmed, booking.Status)
	assert.Equal(t, "1000.00", booking.TotalPrice.StringFixed(2))
	assert.Equal(t, "user-1", booking.CreatedBy)
}
