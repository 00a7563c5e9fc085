package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"innkeep/internal/domains/booking/model"
	"innkeep/shared/constant"
)

func TestOverlapExistsQuery(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("without exclusion sends four parameters", func(t *testing.T) {
		query, args := overlapExistsQuery("room-1", start, end, constant.Empty)

		assert.NotContains(t, query, "$5")
		assert.Len(t, args, 4)
	})

	t.Run("with exclusion appends the booking id", func(t *testing.T) {
		id := "5f6c0a52-9d0e-4a51-9c5d-2f4f4c3b1a00"

		query, args := overlapExistsQuery("room-1", start, end, id)

		assert.Contains(t, query, "id != $5")
		assert.Len(t, args, 5)
		assert.Equal(t, id, args[4])
	})
}

func TestExpireArgs(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	args := expireArgs(now)

	assert.Equal(t, []any{model.StatusExpired, now, constant.SystemActor, model.StatusConfirmed}, args)
}
