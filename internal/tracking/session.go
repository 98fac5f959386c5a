package tracking

import (
	"math/rand"
	"strconv"
	"time"
)

const sessionRandomBits = 40

// GenerateSessionID returns an opaque correlation token built from the current
// time and a random suffix. Uniqueness is best-effort: the token correlates
// page views, searches and orders, it is never an auth or idempotency key.
func GenerateSessionID() string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strconv.FormatInt(rand.Int63n(1<<sessionRandomBits), 36)
	return "sess_" + timestamp + "_" + suffix
}
