package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locks is the subset of *redis.Client the submission guard needs.
type Locks interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// releaseLock deletes the key only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SubmissionGuard lets one request per caller through at a time for the
// wrapped route. A second request while the first holds the lock gets 409.
// The TTL bounds how long a crashed request can keep the lock; a request that
// outlives it never releases a lock taken after expiry. Must run after Auth.
func SubmissionGuard(locks Locks, name string, ttl time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "submit:" + name + ":" + CallerFrom(c).ID.String()
		ctx := c.Request.Context()

		token := uuid.NewString()
		ok, err := locks.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			log.Error("acquire submission lock", "key", key, "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request already in progress"})
			return
		}
		defer func() {
			err := releaseLock.Run(context.WithoutCancel(ctx), locks, []string{key}, token).Err()
			if err != nil {
				log.Error("release submission lock", "key", key, "error", err)
			}
		}()

		c.Next()
	}
}
