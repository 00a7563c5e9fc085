package dto

import (
	"innkeep/internal/domains/room/model"
	"innkeep/shared"
	gDto "innkeep/shared/dto"
	"innkeep/shared/failure"
	gModel "innkeep/shared/model"
	"innkeep/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateRoomRequest struct {
	RoomNumber  string          `json:"room_number" validate:"required,max=20"`
	RoomType    string          `json:"room_type"   validate:"required,oneof=single double suite deluxe presidential"`
	Capacity    int             `json:"capacity"    validate:"required,min=1"`
	HourlyRate  decimal.Decimal `json:"hourly_rate" validate:"required"`
	DailyRate   decimal.Decimal `json:"daily_rate"  validate:"required"`
	Floor       *int            `json:"floor"       validate:"omitempty"`
	Amenities   []string        `json:"amenities"   validate:"omitempty,dive,max=50"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	ImageURL    string          `json:"image_url"   validate:"omitempty,max=500"`
	Status      string          `json:"status"      validate:"omitempty,oneof=available maintenance inactive"`
}

// Validate covers the rate rules the struct tags cannot express.
func (c *CreateRoomRequest) Validate() error {
	if !c.HourlyRate.IsPositive() {
		return failure.BadRequestFromString("hourly_rate must be greater than zero") //nolint:wrapcheck
	}

	if !c.DailyRate.IsPositive() {
		return failure.BadRequestFromString("daily_rate must be greater than zero") //nolint:wrapcheck
	}

	return nil
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	status := model.StatusAvailable
	if c.Status != "" {
		status = c.Status
	}

	return model.Room{
		ID:          uuid.NewString(),
		RoomNumber:  c.RoomNumber,
		RoomType:    c.RoomType,
		Capacity:    c.Capacity,
		HourlyRate:  c.HourlyRate,
		DailyRate:   c.DailyRate,
		Floor:       c.Floor,
		Amenities:   c.Amenities,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		Status:      status,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	RoomNumber  string           `db:"room_number" json:"room_number" validate:"omitempty,max=20"`
	RoomType    string           `db:"room_type"   json:"room_type"   validate:"omitempty,oneof=single double suite deluxe presidential"`
	Capacity    *int             `db:"capacity"    json:"capacity"    validate:"omitempty,min=1"`
	HourlyRate  *decimal.Decimal `db:"hourly_rate" json:"hourly_rate" validate:"omitempty"`
	DailyRate   *decimal.Decimal `db:"daily_rate"  json:"daily_rate"  validate:"omitempty"`
	Floor       *int             `db:"floor"       json:"floor"       validate:"omitempty"`
	Description string           `db:"description" json:"description" validate:"omitempty,max=500"`
	ImageURL    string           `db:"image_url"   json:"image_url"   validate:"omitempty,max=500"`
	Status      string           `db:"status"      json:"status"      validate:"omitempty,oneof=available maintenance inactive"`
}

func (u *UpdateRoomRequest) Validate() error {
	if u.HourlyRate != nil && !u.HourlyRate.IsPositive() {
		return failure.BadRequestFromString("hourly_rate must be greater than zero") //nolint:wrapcheck
	}

	if u.DailyRate != nil && !u.DailyRate.IsPositive() {
		return failure.BadRequestFromString("daily_rate must be greater than zero") //nolint:wrapcheck
	}

	return nil
}

type RoomResponse struct {
	ID          string          `json:"id"`
	RoomNumber  string          `json:"room_number"`
	RoomType    string          `json:"room_type"`
	Capacity    int             `json:"capacity"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	Floor       *int            `json:"floor,omitempty"`
	Amenities   []string        `json:"amenities"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Status      string          `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.RoomNumber = model.RoomNumber
	r.RoomType = model.RoomType
	r.Capacity = model.Capacity
	r.HourlyRate = model.HourlyRate
	r.DailyRate = model.DailyRate
	r.Floor = model.Floor
	r.Amenities = model.Amenities
	r.Description = model.Description
	r.ImageURL = model.ImageURL
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

type SearchAvailableRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

func (r *SearchAvailableRoomsResponse) FromModels(models []model.Room) {
	r.Total = len(models)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
