package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByClientIP charges requests to the client address.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUser charges requests to the authenticated user, falling back to the
// client address before Auth has run.
func ByUser(c *gin.Context) string {
	if uid := GetUserID(c); uid != 0 {
		return "uid:" + strconv.FormatInt(uid, 10)
	}
	return ByClientIP(c)
}

const (
	limiterIdle = 10 * time.Minute
	pruneEvery  = 5 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	r         rate.Limit
	b         int
	buckets   map[string]*bucket
	lastPrune time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastPrune) > pruneEvery {
		for k, v := range s.buckets {
			if now.Sub(v.lastSeen) > limiterIdle {
				delete(s.buckets, k)
			}
		}
		s.lastPrune = now
	}
	bk, ok := s.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(s.r, s.b)}
		s.buckets[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter
}

// RateLimit provides token-bucket rate limiting per key (ByClientIP when key
// is nil). r = requests per second, b = burst size. Idle buckets are pruned
// lazily on later requests.
func RateLimit(r rate.Limit, b int, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = ByClientIP
	}
	set := &limiterSet{r: r, b: b, buckets: make(map[string]*bucket), lastPrune: time.Now()}

	return func(c *gin.Context) {
		now := time.Now()
		lim := set.get(key(c), now)
		if !lim.AllowN(now, 1) {
			if r > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(r)))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
