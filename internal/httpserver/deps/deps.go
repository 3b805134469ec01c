package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	Store           store.Bookmarks // bookmark persistence (possibly cache-wrapped)
	RedisClient     *redis.Client   // nil when the read cache is disabled
	APIToken        string          // shared bearer secret for the bookmarks API
	CORSOrigins     []string        // allowed origins, empty => "*"
	AllowedCIDRS    []string        // IPs allowed to access healthz/readyz endpoints
	TrustProxy      bool            // true if running behind a trusted reverse proxy
	RateLimitBurst  int             // per-IP burst on the bookmarks API, 0 => disabled
	RateLimitPerMin int             // per-IP refill rate
}
