package cache

import (
	"time"

	"github.com/google/uuid"
)

const userKeyPrefix = "user:"

// UserTTL is the default lifetime of cached user records.
const UserTTL = 5 * time.Minute

// UserKey is the cache key for a user record.
func UserKey(id uuid.UUID) string {
	return userKeyPrefix + id.String()
}
