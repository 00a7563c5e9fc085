package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingModel "innkeep/internal/domains/booking/model"
	"innkeep/internal/domains/booking/pricing"
	roomModel "innkeep/internal/domains/room/model"
)

func testRoom(hourlyRate, dailyRate string) roomModel.Room {
	return roomModel.Room{
		ID:         "room-id",
		HourlyRate: decimal.RequireFromString(hourlyRate),
		DailyRate:  decimal.RequireFromString(dailyRate),
	}
}

func TestPrice(t *testing.T) {
	base := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		room        roomModel.Room
		bookingType string
		start       time.Time
		end         time.Time
		want        string
		wantErr     bool
	}{
		{
			name:        "hourly whole hours",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeHourly,
			start:       base,
			end:         base.Add(2 * time.Hour),
			want:        "1000.00",
		},
		{
			name:        "hourly fractional hours",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeHourly,
			start:       base,
			end:         base.Add(90 * time.Minute),
			want:        "750.00",
		},
		{
			name:        "hourly rounds half up",
			room:        testRoom("99.99", "2000"),
			bookingType: bookingModel.TypeHourly,
			start:       base,
			end:         base.Add(90 * time.Minute),
			want:        "149.99",
		},
		{
			name:        "daily whole day",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeDaily,
			start:       base,
			end:         base.Add(24 * time.Hour),
			want:        "2000.00",
		},
		{
			name:        "daily fractional days",
			room:        testRoom("500", "2400"),
			bookingType: bookingModel.TypeDaily,
			start:       base,
			end:         base.Add(25 * time.Hour),
			want:        "2500.00",
		},
		{
			name:        "daily one and a half days",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeDaily,
			start:       base,
			end:         base.Add(36 * time.Hour),
			want:        "3000.00",
		},
		{
			name:        "end equal to start",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeHourly,
			start:       base,
			end:         base,
			wantErr:     true,
		},
		{
			name:        "end before start",
			room:        testRoom("500", "2000"),
			bookingType: bookingModel.TypeHourly,
			start:       base,
			end:         base.Add(-time.Hour),
			wantErr:     true,
		},
		{
			name:        "unknown booking type",
			room:        testRoom("500", "2000"),
			bookingType: "weekly",
			start:       base,
			end:         base.Add(2 * time.Hour),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.Price(tt.room, tt.bookingType, tt.start, tt.end)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestLateCheckoutSurcharge(t *testing.T) {
	end := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		room           roomModel.Room
		bookingType    string
		actualCheckout time.Time
		want           string
	}{
		{
			name:           "on time checkout",
			room:           testRoom("500", "2000"),
			bookingType:    bookingModel.TypeHourly,
			actualCheckout: end,
			want:           "0.00",
		},
		{
			name:           "early checkout",
			room:           testRoom("500", "2000"),
			bookingType:    bookingModel.TypeHourly,
			actualCheckout: end.Add(-2 * time.Hour),
			want:           "0.00",
		},
		{
			name:           "hourly booking charged at hourly rate",
			room:           testRoom("500", "2000"),
			bookingType:    bookingModel.TypeHourly,
			actualCheckout: end.Add(90 * time.Minute),
			want:           "750.00",
		},
		{
			name:           "daily booking charged at daily rate over 24",
			room:           testRoom("500", "2400"),
			bookingType:    bookingModel.TypeDaily,
			actualCheckout: end.Add(6 * time.Hour),
			want:           "600.00",
		},
		{
			name:           "daily equivalent rate rounds half up",
			room:           testRoom("500", "1000"),
			bookingType:    bookingModel.TypeDaily,
			actualCheckout: end.Add(2 * time.Hour),
			want:           "83.33",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := bookingModel.Booking{
				BookingType: tt.bookingType,
				StartTime:   end.Add(-24 * time.Hour),
				EndTime:     end,
			}

			got := pricing.LateCheckoutSurcharge(booking, tt.room, tt.actualCheckout)

			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}
