package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"propel-server/models"
	"propel-server/storage"
)

// ProfileCache is the one place profile lookups by ID go through. Entries are
// keyed by profile user ID and invalidated explicitly on mutation.
type ProfileCache struct {
	TTL time.Duration
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{TTL: 10 * time.Minute}
}

func profileCacheKey(userID uint) string {
	return fmt.Sprintf("profile:%d", userID)
}

// Get returns the cached profile for a user, falling back to the database and
// filling the cache on a miss.
func (pc *ProfileCache) Get(userID uint) (*models.Profile, error) {
	ctx := context.Background()

	if storage.Redis != nil {
		if cached, err := storage.Redis.Get(ctx, profileCacheKey(userID)).Result(); err == nil {
			var profile models.Profile
			if err := json.Unmarshal([]byte(cached), &profile); err == nil {
				return &profile, nil
			}
			// Corrupt entry: drop it and fall through to the database
			storage.Redis.Del(ctx, profileCacheKey(userID))
		}
	}

	var profile models.Profile
	if err := storage.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if storage.Redis != nil {
		if payload, err := json.Marshal(&profile); err == nil {
			storage.Redis.Set(ctx, profileCacheKey(userID), payload, pc.TTL)
		}
	}

	return &profile, nil
}

// Invalidate drops the cached entry after a profile mutation.
func (pc *ProfileCache) Invalidate(userID uint) {
	if storage.Redis == nil {
		return
	}
	storage.Redis.Del(context.Background(), profileCacheKey(userID))
}
