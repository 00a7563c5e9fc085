package booking

import (
	"net/http"
	"time"

	"innkeep/infras/otel"
	"innkeep/internal/domains/booking/model"
	"innkeep/internal/domains/booking/model/dto"
	"innkeep/internal/domains/booking/service"
	"innkeep/shared/constant"
	gDto "innkeep/shared/dto"
	"innkeep/shared/failure"
	"innkeep/shared/timezone"
	"innkeep/shared/validator"
	"innkeep/transport/http/middleware"
	"innkeep/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

const (
	requestParamRoomID    = "room_id"
	requestParamStartTime = "start_time"
	requestParamEndTime   = "end_time"
	requestParamView      = "view"

	viewUpcoming = "upcoming"
	viewPast     = "past"
	viewActive   = "active"
)

type Handler struct {
	service service.Booking
	otel    otel.Otel
	auth    middleware.Auth
}

func New(service service.Booking, otel otel.Otel, auth middleware.Auth) Handler {
	return Handler{
		service: service,
		otel:    otel,
		auth:    auth,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Get("/availability", handler.CheckAvailability)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.auth.Auth)

			protected.Post("/expire", handler.ExpireBookings)
			protected.Post("/", handler.CreateBooking)
			protected.Get("/", handler.GetBookings)
			protected.Get("/mybookings", handler.GetMyBookings)
			protected.Get("/{id}", handler.GetBookingByID)
			protected.Post("/{id}/checkin", handler.CheckIn)
			protected.Post("/{id}/checkout", handler.CheckOut)
			protected.Post("/{id}/cancel", handler.CancelBooking)
		})
	})
}

// CreateBooking creates a booking for the authenticated user and returns it.
func (handler *Handler) CreateBooking(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateBooking")
	defer scope.End()

	req := dto.CreateBookingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	booking, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create booking")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Booking created successfully by user " + user)

	response.WithJSON(writer, http.StatusCreated, booking)
}

// CheckAvailability reports whether a room is free for the given interval.
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckAvailability")
	defer scope.End()

	roomID := r.URL.Query().Get(requestParamRoomID)
	if roomID == constant.Empty {
		response.WithError(w, failure.BadRequestFromString("room_id is required"))

		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	availability, err := handler.service.CheckAvailability(ctx, roomID, start, end, constant.Empty)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, availability)
}

// GetBookings retrieves all bookings based on query parameters.
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := bookingFilters(r, constant.Empty)

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Bookings retrieved successfully")

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetMyBookings retrieves the authenticated user's bookings.
func (handler *Handler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetMyBookings")
	defer scope.End()

	userID, ok := ctx.Value(constant.ContextKeyUserID).(string)
	if !ok || userID == constant.Empty {
		log.Error().Msg("failed to get user ID from context")
		response.WithError(w, failure.Unauthorized("unauthorized"))

		return
	}

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := bookingFilters(r, userID)

	bookings, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get user bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("User bookings retrieved successfully for user " + userID)

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves a booking by its ID.
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking retrieved successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckIn transitions a confirmed booking to checked_in within its window.
func (handler *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckIn")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.CheckIn(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check in booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking checked in successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// CheckOut transitions a checked_in booking to checked_out, charging a late
// surcharge when applicable.
func (handler *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckOut")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	result, err := handler.service.CheckOut(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check out booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking checked out successfully")

	response.WithJSON(w, http.StatusOK, result)
}

// CancelBooking cancels a pending or confirmed booking.
func (handler *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelBooking")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.CancelBookingRequest{}
	if r.ContentLength > 0 {
		if err := validator.Validate(r.Body, &req); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Msg("failed to validate request body")

			response.WithError(w, err)

			return
		}
	}

	booking, err := handler.service.Cancel(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel booking")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking cancelled successfully")

	response.WithJSON(w, http.StatusOK, booking)
}

// ExpireBookings sweeps confirmed bookings past their end time. Also invoked
// periodically by the background worker.
func (handler *Handler) ExpireBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ExpireBookings")
	defer scope.End()

	count, err := handler.service.ExpireDue(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to expire bookings")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Overdue bookings expired")

	response.WithJSON(w, http.StatusOK, dto.ExpireBookingsResponse{Expired: count})
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startRaw := r.URL.Query().Get(requestParamStartTime)
	endRaw := r.URL.Query().Get(requestParamEndTime)

	if startRaw == constant.Empty || endRaw == constant.Empty {
		return start, end, failure.BadRequestFromString("start_time and end_time are required") //nolint:wrapcheck
	}

	start, err = timezone.Parse(constant.DateFormat, startRaw)
	if err != nil {
		return start, end, failure.BadRequestFromString("start_time must be a valid RFC3339 timestamp") //nolint:wrapcheck
	}

	end, err = timezone.Parse(constant.DateFormat, endRaw)
	if err != nil {
		return start, end, failure.BadRequestFromString("end_time must be a valid RFC3339 timestamp") //nolint:wrapcheck
	}

	return start, end, nil
}

// bookingFilters builds the list filter set from query parameters. A non-empty
// userID pins the result to that user's bookings.
func bookingFilters(r *http.Request, userID string) gDto.FilterGroup {
	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if userID != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldUserID,
			Operator: gDto.FilterOperatorEq,
			Value:    userID,
			Table:    model.TableName,
		})
	} else if queryUser := r.URL.Query().Get(model.FieldUserID); queryUser != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldUserID,
			Operator: gDto.FilterOperatorEq,
			Value:    queryUser,
			Table:    model.TableName,
		})
	}

	if roomID := r.URL.Query().Get(model.FieldRoomID); roomID != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    roomID,
			Table:    model.TableName,
		})
	}

	if status := r.URL.Query().Get(model.FieldStatus); status != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if bookingType := r.URL.Query().Get(model.FieldBookingType); bookingType != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldBookingType,
			Operator: gDto.FilterOperatorEq,
			Value:    bookingType,
			Table:    model.TableName,
		})
	}

	if fromRaw := r.URL.Query().Get(requestParamStartTime); fromRaw != constant.Empty {
		if from, err := timezone.Parse(constant.DateFormat, fromRaw); err == nil {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				ArgName:  "range_start",
				Field:    model.FieldStartTime,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    from,
				Table:    model.TableName,
			})
		}
	}

	if toRaw := r.URL.Query().Get(requestParamEndTime); toRaw != constant.Empty {
		if to, err := timezone.Parse(constant.DateFormat, toRaw); err == nil {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				ArgName:  "range_end",
				Field:    model.FieldEndTime,
				Operator: gDto.FilterOperatorLessEq,
				Value:    to,
				Table:    model.TableName,
			})
		}
	}

	switch r.URL.Query().Get(requestParamView) {
	case viewUpcoming:
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  "view_start",
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorGreater,
			Value:    timezone.Now(),
			Table:    model.TableName,
		}, gDto.Filter{
			ArgName:  "view_status",
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorIn,
			Value:    model.OccupyingStatuses,
			Table:    model.TableName,
		})
	case viewPast:
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  "view_end",
			Field:    model.FieldEndTime,
			Operator: gDto.FilterOperatorLess,
			Value:    timezone.Now(),
			Table:    model.TableName,
		})
	case viewActive:
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  "view_start",
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorLessEq,
			Value:    timezone.Now(),
			Table:    model.TableName,
		}, gDto.Filter{
			ArgName:  "view_end",
			Field:    model.FieldEndTime,
			Operator: gDto.FilterOperatorGreater,
			Value:    timezone.Now(),
			Table:    model.TableName,
		}, gDto.Filter{
			ArgName:  "view_status",
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorIn,
			Value:    model.OccupyingStatuses,
			Table:    model.TableName,
		})
	}

	return filterGroup
}
