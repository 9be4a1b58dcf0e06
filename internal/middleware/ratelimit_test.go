package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/thestylist/booking-api/internal/config"
)

func rateCtx(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/services", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/services")
	return c
}

func TestBuildRateKeyDefaultHasNoUserComponent(t *testing.T) {
	// The limiter runs before JWT verification, so the default key must
	// not depend on identity: keying unauthenticated traffic by user
	// would collapse everything into one "anon" bucket.
	c := rateCtx(t)
	key := buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c)
	if strings.Contains(key, ":user:") || strings.Contains(key, "anon") {
		t.Errorf("default key %q carries a user component", key)
	}
	if !strings.Contains(key, ":ip:") || !strings.Contains(key, "GET /v1/services") {
		t.Errorf("default key %q missing ip or route", key)
	}
}

func TestBuildRateKeyUserStrategies(t *testing.T) {
	c := rateCtx(t)
	c.Set("user_id", uint64(7))
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	if key := buildRateKey(cfg, c); !strings.Contains(key, ":user:7") {
		t.Errorf("key %q missing user component", key)
	}

	anon := rateCtx(t)
	if key := buildRateKey(cfg, anon); !strings.Contains(key, ":user:anon") {
		t.Errorf("key %q should fall back to the anon bucket", key)
	}
}
