package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"innkeep/config"
	"innkeep/infras/kafka"
	"innkeep/infras/otel"
	"innkeep/internal/domains/booking/model"
	"innkeep/internal/domains/booking/model/dto"
	"innkeep/internal/domains/booking/pricing"
	"innkeep/internal/domains/booking/repository"
	roomModel "innkeep/internal/domains/room/model"
	roomDto "innkeep/internal/domains/room/model/dto"
	roomRepository "innkeep/internal/domains/room/repository"
	"innkeep/shared"
	"innkeep/shared/cache"
	"innkeep/shared/clock"
	"innkeep/shared/constant"
	gDto "innkeep/shared/dto"
	"innkeep/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"

	ReasonAvailable = "available"
)

type Booking interface {
	CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (dto.AvailabilityResponse, error)
	SearchAvailableRooms(ctx context.Context, start, end time.Time, roomType string, minCapacity int) (roomDto.SearchAvailableRoomsResponse, error)
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	CheckIn(ctx context.Context, id string) (dto.BookingResponse, error)
	CheckOut(ctx context.Context, id string) (dto.CheckOutResponse, error)
	Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (dto.BookingResponse, error)
	ExpireDue(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error)
}

type serviceImpl struct {
	repo     repository.Booking
	roomRepo roomRepository.Room
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	clock    clock.Clock
	kafka    kafka.Client
}

func New(
	repo repository.Booking,
	roomRepo roomRepository.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	clk clock.Clock,
	kafkaClient kafka.Client,
) Booking {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		clock:    clk,
		kafka:    kafkaClient,
	}
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttributes(map[string]any{
		"booking.room_id":    roomID,
		"booking.start_time": start,
		"booking.end_time":   end,
	})

	if !end.After(start) {
		return dto.AvailabilityResponse{Available: false, Reason: "end time must be after start time"}, nil
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for availability check")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	// Fails closed: an unknown room is never available.
	if room.ID == constant.Empty {
		return dto.AvailabilityResponse{Available: false, Reason: "room not found"}, nil
	}

	if !room.Bookable() {
		return dto.AvailabilityResponse{Available: false, Reason: "room is " + room.Status}, nil
	}

	overlap, err := s.repo.OverlapExists(ctx, roomID, start, end, excludeBookingID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking overlap")

		return res, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	if overlap {
		return dto.AvailabilityResponse{Available: false, Reason: "room is already booked for this period"}, nil
	}

	return dto.AvailabilityResponse{Available: true, Reason: ReasonAvailable}, nil
}

func (s *serviceImpl) SearchAvailableRooms(ctx context.Context, start, end time.Time, roomType string, minCapacity int) (res roomDto.SearchAvailableRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchAvailableRooms")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !end.After(start) {
		return res, failure.BadRequestFromString("end time must be after start time") //nolint:wrapcheck
	}

	// One query for the occupied set, then a single filtered room query.
	occupied, err := s.repo.OccupiedRoomIDs(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to list occupied rooms")

		return res, fmt.Errorf("failed to list occupied rooms: %w", err)
	}

	filters := []any{
		gDto.Filter{
			Field:    roomModel.FieldStatus,
			Value:    roomModel.StatusAvailable,
			Operator: gDto.FilterOperatorEq,
			Table:    roomModel.TableName,
		},
	}

	if roomType != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    roomModel.FieldRoomType,
			Value:    roomType,
			Operator: gDto.FilterOperatorEq,
			Table:    roomModel.TableName,
		})
	}

	if minCapacity > 0 {
		filters = append(filters, gDto.Filter{
			Field:    roomModel.FieldCapacity,
			Value:    minCapacity,
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    roomModel.TableName,
		})
	}

	if len(occupied) > 0 {
		filters = append(filters, gDto.Filter{
			ArgName:  "occupied_id",
			Field:    roomModel.FieldID,
			Value:    occupied,
			Operator: gDto.FilterOperatorNotIn,
			Table:    roomModel.TableName,
		})
	}

	rooms, err := s.roomRepo.GetAll(ctx, gDto.QueryParams{
		SortBy:  roomModel.FieldRoomNumber,
		SortDir: gDto.SortDirAsc,
	}, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  filters,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to search available rooms")

		return res, fmt.Errorf("failed to search available rooms: %w", err)
	}

	res.FromModels(rooms)

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = req.Validate(); err != nil {
		return res, err
	}

	now := s.clock.Now()
	if req.StartTime.Before(now) {
		return res, failure.BadRequestFromString("start_time cannot be in the past") //nolint:wrapcheck
	}

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for booking")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") //nolint:wrapcheck
	}

	if !room.Bookable() {
		return res, failure.Conflict("room is " + room.Status) //nolint:wrapcheck
	}

	if req.NumberOfGuests > room.Capacity {
		return res, failure.BadRequestFromString(fmt.Sprintf("number_of_guests exceeds room capacity of %d", room.Capacity)) //nolint:wrapcheck
	}

	overlap, err := s.repo.OverlapExists(ctx, req.RoomID, req.StartTime, req.EndTime, constant.Empty)
	if err != nil {
		log.Error().Err(err).Msg("failed to check booking overlap")

		return res, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	if overlap {
		return res, failure.Conflict("room is already booked for this period") //nolint:wrapcheck
	}

	price, err := pricing.Price(room, req.BookingType, req.StartTime, req.EndTime)
	if err != nil {
		return res, err
	}

	booking := req.ToModel(userID, price)

	if err = s.insertWithRetry(ctx, booking); err != nil {
		return res, err
	}

	s.publishEvent(ctx, booking, now)
	s.invalidateListCaches(ctx)

	res.FromModel(booking)

	return res, nil
}

// insertWithRetry runs the transactional check-and-insert, retrying once on a
// transient serialization conflict before surfacing the loss of the race.
func (s *serviceImpl) insertWithRetry(ctx context.Context, booking model.Booking) error {
	err := s.repo.InsertIfAvailable(ctx, booking)
	if errors.Is(err, repository.ErrSerialization) {
		log.Warn().Str("bookingID", booking.ID).Msg("booking insert hit a serialization conflict, retrying once")

		err = s.repo.InsertIfAvailable(ctx, booking)
	}

	if errors.Is(err, repository.ErrRoomNoLongerAvailable) || errors.Is(err, repository.ErrSerialization) {
		return failure.Conflict("room is no longer available") //nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to insert booking")

		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return nil
}

func (s *serviceImpl) CheckIn(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckIn")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.getModel(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.Status != model.StatusConfirmed {
		return res, checkInRefusal(booking.Status)
	}

	now := s.clock.Now()
	windowOpen := booking.StartTime.Add(-time.Duration(s.cfg.Booking.CheckinWindowMinutes) * time.Minute)

	if now.Before(windowOpen) {
		return res, failure.Conflict("too early to check in") //nolint:wrapcheck
	}

	if now.After(booking.EndTime) {
		return res, failure.Conflict("booking has expired") //nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	applied, err := s.repo.UpdateStatusIf(ctx, id, model.StatusConfirmed, map[string]any{
		model.FieldStatus:            model.StatusCheckedIn,
		model.FieldActualCheckinTime: now,
		constant.FieldModifiedAt:     now,
		constant.FieldModifiedBy:     user,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check in booking")

		return res, fmt.Errorf("failed to check in booking: %w", err)
	}

	// Lost a concurrent transition; report the state that won.
	if !applied {
		booking, err = s.getModel(ctx, id)
		if err != nil {
			return res, err
		}

		return res, checkInRefusal(booking.Status)
	}

	booking.Status = model.StatusCheckedIn
	booking.ActualCheckinTime = &now

	s.publishEvent(ctx, booking, now)
	s.invalidateBookingCaches(ctx, id)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) CheckOut(ctx context.Context, id string) (res dto.CheckOutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckOut")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.getModel(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.Status != model.StatusCheckedIn {
		return res, checkOutRefusal(booking.Status)
	}

	room, err := s.roomRepo.Get(ctx, shared.FilterByID(booking.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for checkout")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	now := s.clock.Now()
	surcharge := pricing.LateCheckoutSurcharge(booking, room, now)

	notes := booking.Notes
	if surcharge.IsPositive() {
		surchargeNote := fmt.Sprintf("Late checkout surcharge: %s", surcharge.StringFixed(2))
		if notes != nil && *notes != constant.Empty {
			surchargeNote = surchargeNote + "\n" + *notes
		}

		notes = &surchargeNote
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	applied, err := s.repo.UpdateStatusIf(ctx, id, model.StatusCheckedIn, map[string]any{
		model.FieldStatus:             model.StatusCheckedOut,
		model.FieldActualCheckoutTime: now,
		model.FieldNotes:              notes,
		constant.FieldModifiedAt:      now,
		constant.FieldModifiedBy:      user,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check out booking")

		return res, fmt.Errorf("failed to check out booking: %w", err)
	}

	if !applied {
		booking, err = s.getModel(ctx, id)
		if err != nil {
			return res, err
		}

		return res, checkOutRefusal(booking.Status)
	}

	booking.Status = model.StatusCheckedOut
	booking.ActualCheckoutTime = &now
	booking.Notes = notes

	s.publishEvent(ctx, booking, now)
	s.invalidateBookingCaches(ctx, id)

	res.Booking.FromModel(booking)
	res.Surcharge = surcharge

	return res, nil
}

func (s *serviceImpl) Cancel(ctx context.Context, id string, req dto.CancelBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.getModel(ctx, id)
	if err != nil {
		return res, err
	}

	if booking.Status != model.StatusPending && booking.Status != model.StatusConfirmed {
		return res, cancelRefusal(booking.Status)
	}

	now := s.clock.Now()
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var reason *string
	if req.Reason != constant.Empty {
		reason = &req.Reason
	}

	applied, err := s.repo.UpdateStatusIf(ctx, id, booking.Status, map[string]any{
		model.FieldStatus:             model.StatusCancelled,
		model.FieldCancelledAt:        now,
		model.FieldCancellationReason: reason,
		constant.FieldModifiedAt:      now,
		constant.FieldModifiedBy:      user,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to cancel booking")

		return res, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if !applied {
		booking, err = s.getModel(ctx, id)
		if err != nil {
			return res, err
		}

		return res, cancelRefusal(booking.Status)
	}

	booking.Status = model.StatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reason

	s.publishEvent(ctx, booking, now)
	s.invalidateBookingCaches(ctx, id)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) ExpireDue(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ExpireDue")
	defer scope.End()
	defer scope.TraceIfError(err)

	now := s.clock.Now()

	expired, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("failed to expire bookings")

		return 0, fmt.Errorf("failed to expire bookings: %w", err)
	}

	if len(expired) == 0 {
		return 0, nil
	}

	for _, booking := range expired {
		s.publishEvent(ctx, booking, now)
	}

	s.invalidateListCaches(ctx)

	go func() {
		c := context.WithoutCancel(ctx)

		for _, booking := range expired {
			if cacheErr := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, booking.ID)); cacheErr != nil {
				log.Error().Err(cacheErr).Msg("failed to delete booking cache")
			}
		}
	}()

	log.Info().Int("count", len(expired)).Msg("expired overdue bookings")

	return len(expired), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.getModel(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) getModel(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound("booking not found") //nolint:wrapcheck
	}

	return booking, nil
}

// publishEvent emits the lifecycle event fire-and-forget; a publish failure
// never fails the transition.
func (s *serviceImpl) publishEvent(ctx context.Context, booking model.Booking, occurredAt time.Time) {
	if !s.cfg.Kafka.Enable {
		return
	}

	event := dto.NewBookingEvent(booking, occurredAt)
	topic := s.cfg.Kafka.BookingTopic

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.kafka.SendMessages(c, topic, kafka.Message{
			Key:   booking.ID,
			Value: event,
		}); err != nil {
			log.Error().Err(err).Str("bookingID", booking.ID).Str("status", booking.Status).Msg("failed to publish booking event")
		}
	}()
}

func (s *serviceImpl) invalidateListCaches(ctx context.Context) {
	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}

func (s *serviceImpl) invalidateBookingCaches(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()
}

func checkInRefusal(status string) error {
	switch status {
	case model.StatusCheckedIn:
		return failure.Conflict("already checked in") //nolint:wrapcheck
	case model.StatusCheckedOut:
		return failure.Conflict("already checked out") //nolint:wrapcheck
	case model.StatusCancelled:
		return failure.Conflict("cannot check in a cancelled booking") //nolint:wrapcheck
	case model.StatusExpired:
		return failure.Conflict("booking has expired") //nolint:wrapcheck
	default:
		return failure.Conflict("booking is not confirmed") //nolint:wrapcheck
	}
}

func checkOutRefusal(status string) error {
	if status == model.StatusCheckedOut {
		return failure.Conflict("already checked out") //nolint:wrapcheck
	}

	return failure.Conflict("cannot check out a booking that is not checked in") //nolint:wrapcheck
}

func cancelRefusal(status string) error {
	switch status {
	case model.StatusCheckedIn:
		return failure.Conflict("cannot cancel a booking that is already checked in") //nolint:wrapcheck
	case model.StatusCheckedOut:
		return failure.Conflict("cannot cancel a completed booking") //nolint:wrapcheck
	case model.StatusCancelled:
		return failure.Conflict("booking is already cancelled") //nolint:wrapcheck
	case model.StatusExpired:
		return failure.Conflict("booking has expired") //nolint:wrapcheck
	default:
		return failure.Conflict("booking cannot be cancelled") //nolint:wrapcheck
	}
}
