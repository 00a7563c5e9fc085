package model

import (
	"innkeep/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID          = "id"
	FieldRoomNumber  = "room_number"
	FieldRoomType    = "room_type"
	FieldCapacity    = "capacity"
	FieldHourlyRate  = "hourly_rate"
	FieldDailyRate   = "daily_rate"
	FieldFloor       = "floor"
	FieldAmenities   = "amenities"
	FieldDescription = "description"
	FieldImageURL    = "image_url"
	FieldStatus      = "status"
)

const (
	TypeSingle       = "single"
	TypeDouble       = "double"
	TypeSuite        = "suite"
	TypeDeluxe       = "deluxe"
	TypePresidential = "presidential"

	StatusAvailable   = "available"
	StatusMaintenance = "maintenance"
	StatusInactive    = "inactive"
)

type Room struct {
	ID          string          `db:"id"`
	RoomNumber  string          `db:"room_number"`
	RoomType    string          `db:"room_type"`
	Capacity    int             `db:"capacity"`
	HourlyRate  decimal.Decimal `db:"hourly_rate"`
	DailyRate   decimal.Decimal `db:"daily_rate"`
	Floor       *int            `db:"floor"`
	Amenities   pq.StringArray  `db:"amenities"`
	Description string          `db:"description"`
	ImageURL    string          `db:"image_url"`
	Status      string          `db:"status"`
	model.Metadata
}

// Bookable reports whether the room can take new bookings at all,
// regardless of date conflicts.
func (r *Room) Bookable() bool {
	return r.Status == StatusAvailable
}
