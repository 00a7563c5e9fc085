package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"innkeep/infras/otel"
	"innkeep/infras/postgres"
	"innkeep/internal/domains/booking/model"
	roomModel "innkeep/internal/domains/room/model"
	"innkeep/shared/constant"
	gDto "innkeep/shared/dto"
	"innkeep/shared/logger"
	gRepo "innkeep/shared/repository"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var (
	// ErrRoomNoLongerAvailable reports that a competing booking won the race
	// for the same room and interval.
	ErrRoomNoLongerAvailable = errors.New("room is no longer available")

	// ErrSerialization reports a transient transaction conflict worth one retry.
	ErrSerialization = errors.New("transaction serialization conflict")
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error

	// InsertIfAvailable runs the transactional check-and-insert: lock the room
	// row, re-check for occupying overlaps, insert. The exclusion constraint
	// on bookings backstops the same invariant at the storage layer.
	InsertIfAvailable(ctx context.Context, booking model.Booking) error

	// OverlapExists reports whether an occupying booking overlaps
	// [start, end) for the room, half-open.
	OverlapExists(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (bool, error)

	// OccupiedRoomIDs returns the distinct room ids holding an occupying
	// booking that overlaps [start, end).
	OccupiedRoomIDs(ctx context.Context, start, end time.Time) ([]string, error)

	// UpdateStatusIf applies the update only when the booking still holds
	// fromStatus, reporting whether a row was affected.
	UpdateStatusIf(ctx context.Context, id, fromStatus string, set map[string]any) (bool, error)

	// ExpireDue marks confirmed bookings whose end time passed as expired and
	// returns their ids.
	ExpireDue(ctx context.Context, now time.Time) ([]model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

const overlapCondition = `room_id = $1 AND status = ANY($2) AND start_time < $4 AND $3 < end_time`

// overlapExistsQuery builds the existence query and its arguments. The id
// exclusion is appended only when a booking id is given: an empty string must
// never reach the database as a uuid parameter.
func overlapExistsQuery(roomID string, start, end time.Time, excludeBookingID string) (string, []any) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s)`, model.TableName, overlapCondition)
	args := []any{roomID, pq.Array(model.OccupyingStatuses), start, end}

	if excludeBookingID != constant.Empty {
		query = fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s AND id != $5)`, model.TableName, overlapCondition)
		args = append(args, excludeBookingID)
	}

	return query, args
}

func (repo *repositoryImpl) OverlapExists(ctx context.Context, roomID string, start, end time.Time, excludeBookingID string) (exists bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.OverlapExists")
	defer scope.End()
	defer scope.TraceIfError(err)

	query, args := overlapExistsQuery(roomID, start, end, excludeBookingID)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.db.Read.GetContext(ctx, &exists, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return exists, nil
}

func (repo *repositoryImpl) OccupiedRoomIDs(ctx context.Context, start, end time.Time) (ids []string, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.OccupiedRoomIDs")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(`SELECT DISTINCT room_id FROM %s WHERE status = ANY($1) AND start_time < $3 AND $2 < end_time`, model.TableName)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = repo.db.Read.SelectContext(ctx, &ids, query, pq.Array(model.OccupyingStatuses), start, end)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to list occupied rooms: %w", err)
	}

	return ids, nil
}

func (repo *repositoryImpl) InsertIfAvailable(ctx context.Context, booking model.Booking) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.InsertIfAvailable")
	defer scope.End()
	defer scope.TraceIfError(err)

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin booking transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to rollback booking transaction")
			}
		}
	}()

	// Serializes competing creates for the same room.
	lockQuery := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, roomModel.TableName)

	var lockedID string
	if err = tx.GetContext(ctx, &lockedID, lockQuery, booking.RoomID); err != nil {
		logger.ErrorWithStack(err)

		return classifyConflict(fmt.Errorf("failed to lock room row: %w", err))
	}

	overlapQuery := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s)`, model.TableName, overlapCondition)

	var exists bool
	if err = tx.GetContext(ctx, &exists, overlapQuery, booking.RoomID, pq.Array(model.OccupyingStatuses), booking.StartTime, booking.EndTime); err != nil {
		logger.ErrorWithStack(err)

		return classifyConflict(fmt.Errorf("failed to re-check booking overlap: %w", err))
	}

	if exists {
		err = ErrRoomNoLongerAvailable

		return err
	}

	if err = repo.InsertTx(ctx, tx, booking); err != nil {
		return classifyConflict(err)
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return classifyConflict(fmt.Errorf("failed to commit booking transaction: %w", err))
	}

	return nil
}

func (repo *repositoryImpl) UpdateStatusIf(ctx context.Context, id, fromStatus string, set map[string]any) (applied bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatusIf")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    id,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "current_status",
				Field:    model.FieldStatus,
				Value:    fromStatus,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	where, args := repo.BuildWhereClause(ctx, filter)

	setClause := ""
	for col := range set {
		if setClause != "" {
			setClause += ", "
		}

		setClause += fmt.Sprintf("%s = :%s", col, col)
	}

	for col, val := range set {
		args[col] = val
	}

	query := fmt.Sprintf("UPDATE %s SET %s %s", model.TableName, setClause, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := repo.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		logger.ErrorWithStack(err)

		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

// expireArgs orders the parameters for the expiry sweep update, recording the
// system actor on the audit columns.
func expireArgs(now time.Time) []any {
	return []any{model.StatusExpired, now, constant.SystemActor, model.StatusConfirmed}
}

func (repo *repositoryImpl) ExpireDue(ctx context.Context, now time.Time) (expired []model.Booking, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExpireDue")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		`UPDATE %s SET status = $1, modified_at = $2, modified_by = $3 WHERE status = $4 AND end_time < $2 RETURNING id, user_id, room_id, status`,
		model.TableName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	rows, err := repo.db.Write.QueryxContext(ctx, query, expireArgs(now)...)
	if err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to expire bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var booking model.Booking
		if err = rows.StructScan(&booking); err != nil {
			logger.ErrorWithStack(err)

			return nil, fmt.Errorf("failed to scan expired booking: %w", err)
		}

		expired = append(expired, booking)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to read expired bookings: %w", err)
	}

	return expired, nil
}

// classifyConflict translates storage-level constraint and serialization
// errors into the repository's sentinel errors.
func classifyConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeExclusionViolation, constant.PqErrorCodeUniqueViolation:
		return ErrRoomNoLongerAvailable
	case constant.PqErrorCodeSerializationFail:
		return ErrSerialization
	default:
		return err
	}
}
