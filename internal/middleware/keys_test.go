package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/streamapp/stream-platform/internal/config"
)

func testCtx(t *testing.T, target string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := echo.New().NewContext(req, httptest.NewRecorder())
	c.SetPath(strings.SplitN(target, "?", 2)[0])
	return c
}

// The limiter runs ahead of the auth middleware, so the default key
// must not depend on a user identity that is never set at that point.
func TestRateKeyDefaultHasNoUserComponent(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}
	c := testCtx(t, "/api/movies")

	key := rateKey(cfg, c)
	require.True(t, strings.HasPrefix(key, "rl:ip:"))
	require.Contains(t, key, ":route:GET /api/movies")
	require.NotContains(t, key, ":user:")
}

func TestRateKeyUserStrategy(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	c := testCtx(t, "/api/movies")
	c.Set("user_id", "u-1")

	require.Equal(t, "rl:user:u-1:route:GET /api/movies", rateKey(cfg, c))
}

func TestLoadRateLimitConfigDefaultStrategy(t *testing.T) {
	t.Setenv("RATE_LIMIT_KEY_STRATEGY", "")

	require.Equal(t, "ip_route", config.LoadRateLimitConfig().KeyStrategy)
}

// Catalog payloads differ between entitled users and guests, so the
// cache key must split on the caller.
func TestCacheKeySplitsOnCaller(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	guest := cacheKey(cfg, testCtx(t, "/api/movies?searchTerm=dark"))
	c := testCtx(t, "/api/movies?searchTerm=dark")
	c.Set("user_id", "u-1")
	user := cacheKey(cfg, c)

	require.NotEqual(t, guest, user)

	again := testCtx(t, "/api/movies?searchTerm=dark")
	again.Set("user_id", "u-1")
	require.Equal(t, user, cacheKey(cfg, again))
}

func TestCacheKeySplitsOnQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}

	a := cacheKey(cfg, testCtx(t, "/api/movies?searchTerm=dark"))
	b := cacheKey(cfg, testCtx(t, "/api/movies?searchTerm=light"))
	require.NotEqual(t, a, b)
}
