package room

import (
	"net/http"
	"strconv"

	"innkeep/infras/otel"
	bookingService "innkeep/internal/domains/booking/service"
	"innkeep/internal/domains/room/model"
	"innkeep/internal/domains/room/model/dto"
	"innkeep/internal/domains/room/service"
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
	requestParamStartTime   = "start_time"
	requestParamEndTime     = "end_time"
	requestParamMinCapacity = "min_capacity"
)

type Handler struct {
	service  service.Room
	bookings bookingService.Booking
	otel     otel.Otel
	auth     middleware.Auth
}

func New(service service.Room, bookings bookingService.Booking, otel otel.Otel, auth middleware.Auth) Handler {
	return Handler{
		service:  service,
		bookings: bookings,
		otel:     otel,
		auth:     auth,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rooms", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetRooms)
		routerGroup.Get("/available", handler.SearchAvailableRooms)
		routerGroup.Get("/{id}", handler.GetRoomByID)

		routerGroup.Group(func(protected chi.Router) {
			protected.Use(handler.auth.Auth)

			protected.Post("/", handler.CreateRoom)
			protected.Patch("/{id}", handler.UpdateRoom)
			protected.Delete("/{id}", handler.DeleteRoom)
		})
	})
}

// CreateRoom registers a new room.
func (handler *Handler) CreateRoom(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRoom")
	defer scope.End()

	req := dto.CreateRoomRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create room")

		response.WithError(writer, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room created successfully by user " + user)

	response.WithMessage(writer, http.StatusCreated, "Room created successfully")
}

// GetRooms retrieves rooms with optional type/status/capacity filters.
func (handler *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRooms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if roomType := r.URL.Query().Get(model.FieldRoomType); roomType != constant.Empty {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldRoomType,
			Operator: gDto.FilterOperatorEq,
			Value:    roomType,
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

	if minCapacity := r.URL.Query().Get(requestParamMinCapacity); minCapacity != constant.Empty {
		if capacity, err := strconv.Atoi(minCapacity); err == nil && capacity > 0 {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    model.FieldCapacity,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    capacity,
				Table:    model.TableName,
			})
		}
	}

	rooms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// SearchAvailableRooms lists rooms free for the requested interval.
func (handler *Handler) SearchAvailableRooms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchAvailableRooms")
	defer scope.End()

	startRaw := r.URL.Query().Get(requestParamStartTime)
	endRaw := r.URL.Query().Get(requestParamEndTime)

	start, err := timezone.Parse(constant.DateFormat, startRaw)
	if err != nil {
		response.WithError(w, failure.BadRequestFromString("start_time must be a valid RFC3339 timestamp"))

		return
	}

	end, err := timezone.Parse(constant.DateFormat, endRaw)
	if err != nil {
		response.WithError(w, failure.BadRequestFromString("end_time must be a valid RFC3339 timestamp"))

		return
	}

	roomType := r.URL.Query().Get(model.FieldRoomType)

	minCapacity := 0
	if raw := r.URL.Query().Get(requestParamMinCapacity); raw != constant.Empty {
		if capacity, convErr := strconv.Atoi(raw); convErr == nil {
			minCapacity = capacity
		}
	}

	rooms, err := handler.bookings.SearchAvailableRooms(ctx, start, end, roomType, minCapacity)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search available rooms")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Available rooms retrieved successfully")

	response.WithJSON(w, http.StatusOK, rooms)
}

// GetRoomByID retrieves a room by its ID.
func (handler *Handler) GetRoomByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRoomByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	room, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get room by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Room retrieved successfully")

	response.WithJSON(w, http.StatusOK, room)
}

// UpdateRoom updates an existing room by its ID.
func (handler *Handler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateRoomRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room updated successfully")
}

// DeleteRoom deletes a room by its ID.
func (handler *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRoom")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete room")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Room deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Room deleted successfully")
}
