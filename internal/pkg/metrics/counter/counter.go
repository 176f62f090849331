package counter

import (
	"context"
	"strconv"

	"github.com/lribeiro/eventgate/app/models"
	"github.com/lribeiro/eventgate/internal/pkg/cache"
	"github.com/lribeiro/eventgate/internal/pkg/database"
)

const eventCheckInsKey = "event:counters:checkins"

// AddEventCheckIn increments the cached check-in counter for an event in Redis
func AddEventCheckIn(eventID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(eventID), 10)
	return cache.GetClient().HIncrBy(ctx, eventCheckInsKey, field, 1).Err()
}

// GetEventCheckIns returns the cached check-in count for an event. A cache
// miss is seeded from the database so restarts do not reset the counter.
func GetEventCheckIns(eventID uint) (int64, error) {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(eventID), 10)

	raw, err := cache.GetClient().HGet(ctx, eventCheckInsKey, field).Result()
	if err == nil {
		if count, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			return count, nil
		}
	}

	var count int64
	if err := database.GetDB().Model(&models.Registration{}).
		Where("event_id = ? AND checked_in = ?", eventID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}

	// Best effort seed; the next check-in increments on top of it.
	_ = cache.GetClient().HSet(ctx, eventCheckInsKey, field, count).Err()

	return count, nil
}

// ResetEventCheckIns drops the cached counter so the next read reseeds from
// the database.
func ResetEventCheckIns(eventID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(eventID), 10)
	return cache.GetClient().HDel(ctx, eventCheckInsKey, field).Err()
}
