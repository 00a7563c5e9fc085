package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innkeep/config"
	kafkaMocks "innkeep/infras/kafka/mocks"
	"innkeep/infras/otel/mocks"
	bookingMocks "innkeep/internal/domains/booking/mocks"
	"innkeep/internal/domains/booking/model"
	"innkeep/internal/domains/booking/model/dto"
	"innkeep/internal/domains/booking/repository"
	"innkeep/internal/domains/booking/service"
	roomMocks "innkeep/internal/domains/room/mocks"
	roomModel "innkeep/internal/domains/room/model"
	cacheMocks "innkeep/shared/cache/mocks"
	"innkeep/shared/clock"
	"innkeep/shared/constant"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	testRoomID    = "7b9f3f6a-1a8e-4a5c-9d2e-5f0c1b2a3d4e"
	testBookingID = "c1d2e3f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.CheckinWindowMinutes = 60

	return cfg
}

func availableRoom() roomModel.Room {
	return roomModel.Room{
		ID:         testRoomID,
		RoomNumber: "101",
		RoomType:   roomModel.TypeDouble,
		Capacity:   2,
		HourlyRate: decimal.NewFromInt(500),
		DailyRate:  decimal.NewFromInt(2000),
		Status:     roomModel.StatusAvailable,
	}
}

func createRequest() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		RoomID:         testRoomID,
		BookingType:    model.TypeHourly,
		StartTime:      testNow.Add(time.Hour),
		EndTime:        testNow.Add(3 * time.Hour),
		GuestName:      "Jane Guest",
		GuestEmail:     "jane@example.com",
		GuestPhone:     "08123456789",
		NumberOfGuests: 2,
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	start := testNow.Add(time.Hour)
	end := testNow.Add(3 * time.Hour)

	tests := []struct {
		name          string
		start         time.Time
		end           time.Time
		setupMock     func()
		wantAvailable bool
		wantReason    string
		wantErr       bool
	}{
		{
			name:          "end not after start",
			start:         start,
			end:           start,
			setupMock:     func() {},
			wantAvailable: false,
			wantReason:    "end time must be after start time",
		},
		{
			name:  "room not found",
			start: start,
			end:   end,
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(roomModel.Room{}, nil)
			},
			wantAvailable: false,
			wantReason:    "room not found",
		},
		{
			name:  "room under maintenance",
			start: start,
			end:   end,
			setupMock: func() {
				room := availableRoom()
				room.Status = roomModel.StatusMaintenance

				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(room, nil)
			},
			wantAvailable: false,
			wantReason:    "room is maintenance",
		},
		{
			name:  "conflicting booking",
			start: start,
			end:   end,
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, start, end, constant.Empty).
					Return(true, nil)
			},
			wantAvailable: false,
			wantReason:    "room is already booked for this period",
		},
		{
			name:  "available",
			start: start,
			end:   end,
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, start, end, constant.Empty).
					Return(false, nil)
			},
			wantAvailable: true,
			wantReason:    service.ReasonAvailable,
		},
		{
			name:  "repository error",
			start: start,
			end:   end,
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(roomModel.Room{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.CheckAvailability(context.Background(), testRoomID, tt.start, tt.end, constant.Empty)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, res.Available)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestBookingService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	tests := []struct {
		name       string
		mutate     func(req *dto.CreateBookingRequest)
		setupMock  func()
		wantErr    bool
		wantStatus string
		wantPrice  string
	}{
		{
			name:       "successful creation",
			mutate:     func(req *dto.CreateBookingRequest) {},
			wantStatus: model.StatusConfirmed,
			wantPrice:  "1000.00",
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, gomock.Any(), gomock.Any(), constant.Empty).
					Return(false, nil)

				mockRepo.EXPECT().
					InsertIfAvailable(gomock.Any(), gomock.Any()).
					Return(nil)
			},
		},
		{
			name: "end before start",
			mutate: func(req *dto.CreateBookingRequest) {
				req.EndTime = req.StartTime.Add(-time.Hour)
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "hourly booking too long",
			mutate: func(req *dto.CreateBookingRequest) {
				req.EndTime = req.StartTime.Add(12*time.Hour + time.Second)
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "daily booking too short",
			mutate: func(req *dto.CreateBookingRequest) {
				req.BookingType = model.TypeDaily
				req.EndTime = req.StartTime.Add(24*time.Hour - time.Second)
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "start time in the past",
			mutate: func(req *dto.CreateBookingRequest) {
				req.StartTime = testNow.Add(-time.Hour)
				req.EndTime = testNow.Add(time.Hour)
			},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name:   "room not found",
			mutate: func(req *dto.CreateBookingRequest) {},
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(roomModel.Room{}, nil)
			},
			wantErr: true,
		},
		{
			name:   "room not bookable",
			mutate: func(req *dto.CreateBookingRequest) {},
			setupMock: func() {
				room := availableRoom()
				room.Status = roomModel.StatusInactive

				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(room, nil)
			},
			wantErr: true,
		},
		{
			name: "guests exceed capacity",
			mutate: func(req *dto.CreateBookingRequest) {
				req.NumberOfGuests = 5
			},
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)
			},
			wantErr: true,
		},
		{
			name:   "period already booked",
			mutate: func(req *dto.CreateBookingRequest) {},
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, gomock.Any(), gomock.Any(), constant.Empty).
					Return(true, nil)
			},
			wantErr: true,
		},
		{
			name:       "serialization conflict retried once",
			mutate:     func(req *dto.CreateBookingRequest) {},
			wantStatus: model.StatusConfirmed,
			wantPrice:  "1000.00",
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, gomock.Any(), gomock.Any(), constant.Empty).
					Return(false, nil)

				gomock.InOrder(
					mockRepo.EXPECT().
						InsertIfAvailable(gomock.Any(), gomock.Any()).
						Return(repository.ErrSerialization),
					mockRepo.EXPECT().
						InsertIfAvailable(gomock.Any(), gomock.Any()).
						Return(nil),
				)
			},
		},
		{
			name:   "loses the race twice",
			mutate: func(req *dto.CreateBookingRequest) {},
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, gomock.Any(), gomock.Any(), constant.Empty).
					Return(false, nil)

				mockRepo.EXPECT().
					InsertIfAvailable(gomock.Any(), gomock.Any()).
					Return(repository.ErrSerialization).
					Times(2)
			},
			wantErr: true,
		},
		{
			name:   "room taken inside the transaction",
			mutate: func(req *dto.CreateBookingRequest) {},
			setupMock: func() {
				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					OverlapExists(gomock.Any(), testRoomID, gomock.Any(), gomock.Any(), constant.Empty).
					Return(false, nil)

				mockRepo.EXPECT().
					InsertIfAvailable(gomock.Any(), gomock.Any()).
					Return(repository.ErrRoomNoLongerAvailable)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			req := createRequest()
			tt.mutate(&req)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.Create(ctx, req)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantPrice, res.TotalPrice.StringFixed(2))
			assert.Equal(t, "test-user-id", res.UserID)
		})
	}
}

func confirmedBooking() model.Booking {
	return model.Booking{
		ID:          testBookingID,
		UserID:      "test-user-id",
		RoomID:      testRoomID,
		BookingType: model.TypeHourly,
		StartTime:   testNow.Add(30 * time.Minute),
		EndTime:     testNow.Add(3 * time.Hour),
		Status:      model.StatusConfirmed,
		TotalPrice:  decimal.NewFromInt(1250),
	}
}

func TestBookingService_CheckIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockCache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful check in within window",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)

				mockRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), testBookingID, model.StatusConfirmed, gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name: "too early to check in",
			setupMock: func() {
				booking := confirmedBooking()
				booking.StartTime = testNow.Add(61 * time.Minute)
				booking.EndTime = testNow.Add(4 * time.Hour)

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
		{
			name: "booking window already over",
			setupMock: func() {
				booking := confirmedBooking()
				booking.StartTime = testNow.Add(-3 * time.Hour)
				booking.EndTime = testNow.Add(-time.Minute)

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
		{
			name: "already checked in",
			setupMock: func() {
				booking := confirmedBooking()
				booking.Status = model.StatusCheckedIn

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
		{
			name: "cancelled booking",
			setupMock: func() {
				booking := confirmedBooking()
				booking.Status = model.StatusCancelled

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
		{
			name: "booking not found",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: true,
		},
		{
			name: "lost concurrent transition",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)

				mockRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), testBookingID, model.StatusConfirmed, gomock.Any()).
					Return(false, nil)

				cancelled := confirmedBooking()
				cancelled.Status = model.StatusCancelled

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(cancelled, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.CheckIn(ctx, testBookingID)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCheckedIn, res.Status)
			require.NotNil(t, res.ActualCheckinTime)
			assert.Equal(t, testNow, *res.ActualCheckinTime)
		})
	}
}

func TestBookingService_CheckOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockCache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	checkedIn := func(end time.Time) model.Booking {
		booking := confirmedBooking()
		booking.Status = model.StatusCheckedIn
		booking.StartTime = end.Add(-3 * time.Hour)
		booking.EndTime = end

		return booking
	}

	tests := []struct {
		name          string
		setupMock     func()
		wantErr       bool
		wantSurcharge string
	}{
		{
			name:          "on time checkout has no surcharge",
			wantSurcharge: "0.00",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(checkedIn(testNow.Add(time.Hour)), nil)

				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), testBookingID, model.StatusCheckedIn, gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name:          "late checkout is surcharged",
			wantSurcharge: "750.00",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(checkedIn(testNow.Add(-90*time.Minute)), nil)

				mockRoomRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(availableRoom(), nil)

				mockRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), testBookingID, model.StatusCheckedIn, gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name: "not checked in",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)
			},
			wantErr: true,
		},
		{
			name: "already checked out",
			setupMock: func() {
				booking := confirmedBooking()
				booking.Status = model.StatusCheckedOut

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.CheckOut(ctx, testBookingID)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCheckedOut, res.Booking.Status)
			assert.Equal(t, tt.wantSurcharge, res.Surcharge.StringFixed(2))
			require.NotNil(t, res.Booking.ActualCheckoutTime)
			assert.Equal(t, testNow, *res.Booking.ActualCheckoutTime)
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockCache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	tests := []struct {
		name      string
		reason    string
		setupMock func()
		wantErr   bool
	}{
		{
			name:   "cancel confirmed booking",
			reason: "change of plans",
			setupMock: func() {
				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(confirmedBooking(), nil)

				mockRepo.EXPECT().
					UpdateStatusIf(gomock.Any(), testBookingID, model.StatusConfirmed, gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name: "cannot cancel after check in",
			setupMock: func() {
				booking := confirmedBooking()
				booking.Status = model.StatusCheckedIn

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
		{
			name: "already cancelled",
			setupMock: func() {
				booking := confirmedBooking()
				booking.Status = model.StatusCancelled

				mockRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
			res, err := svc.Cancel(ctx, testBookingID, dto.CancelBookingRequest{Reason: tt.reason})

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
			require.NotNil(t, res.CancelledAt)
			assert.Equal(t, testNow, *res.CancelledAt)

			if tt.reason != "" {
				require.NotNil(t, res.CancellationReason)
				assert.Equal(t, tt.reason, *res.CancellationReason)
			}
		})
	}
}

func TestBookingService_ExpireDue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockCache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, testConfig(), mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	tests := []struct {
		name      string
		setupMock func()
		want      int
		wantErr   bool
	}{
		{
			name: "expires overdue bookings",
			want: 2,
			setupMock: func() {
				expired := []model.Booking{
					{ID: "booking-1", RoomID: testRoomID, Status: model.StatusExpired},
					{ID: "booking-2", RoomID: testRoomID, Status: model.StatusExpired},
				}

				mockRepo.EXPECT().
					ExpireDue(gomock.Any(), testNow).
					Return(expired, nil)
			},
		},
		{
			name: "nothing due",
			want: 0,
			setupMock: func() {
				mockRepo.EXPECT().
					ExpireDue(gomock.Any(), testNow).
					Return(nil, nil)
			},
		},
		{
			name: "repository error",
			setupMock: func() {
				mockRepo.EXPECT().
					ExpireDue(gomock.Any(), testNow).
					Return(nil, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			count, err := svc.ExpireDue(context.Background())

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestBookingService_PublishFailureDoesNotFailTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockRoomRepo := roomMocks.NewMockRoom(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockKafka := kafkaMocks.NewMockClient(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := testConfig()
	cfg.Kafka.Enable = true
	cfg.Kafka.BookingTopic = "booking-events"

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockCache.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	mockKafka.EXPECT().
		SendMessages(gomock.Any(), "booking-events", gomock.Any()).
		Return(errors.New("broker unavailable")).
		AnyTimes()

	svc := service.New(mockRepo, mockRoomRepo, cfg, mockCache, mockOtel, clock.Fixed{Instant: testNow}, mockKafka)

	mockRepo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(confirmedBooking(), nil)

	mockRepo.EXPECT().
		UpdateStatusIf(gomock.Any(), testBookingID, model.StatusConfirmed, gomock.Any()).
		Return(true, nil)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
	res, err := svc.CheckIn(ctx, testBookingID)

	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, res.Status)
}
