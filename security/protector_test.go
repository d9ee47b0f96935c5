package security

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProtector(t *testing.T, production bool) *Protector {
	p, err := New(Config{Key: "test", Production: production})
	require.NoError(t, err)
	return p
}

func TestWindowQuotaPerRole(t *testing.T) {
	quotas := map[string]int{
		"admin": 20,
		"user":  10,
		"guest": 5,
	}

	for role, max := range quotas {
		t.Run(role, func(t *testing.T) {
			p := newTestProtector(t, false)
			client := p.WithWindow(WindowRule{
				Name:     role + "-rate-limit",
				Max:      max,
				Interval: time.Minute,
			})

			req := httptest.NewRequest("GET", "/api/users", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			req.Header.Set("User-Agent", "acceptance-suite/1.0")

			for i := 0; i < max; i++ {
				d, err := client.Protect(context.Background(), req)
				require.NoError(t, err)
				assert.False(t, d.Denied, "request %d within quota should pass", i+1)
			}

			d, err := client.Protect(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, d.Denied)
			assert.Equal(t, ReasonRateLimit, d.Reason)
			assert.Equal(t, role+"-rate-limit", d.RuleName)
		})
	}
}

func TestWindowKeysAreIndependent(t *testing.T) {
	p := newTestProtector(t, false)
	client := p.WithWindow(WindowRule{Name: "guest-rate-limit", Max: 2, Interval: time.Minute})

	first := httptest.NewRequest("GET", "/", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	second := httptest.NewRequest("GET", "/", nil)
	second.RemoteAddr = "10.0.0.2:1000"

	for i := 0; i < 2; i++ {
		d, err := client.Protect(context.Background(), first)
		require.NoError(t, err)
		assert.False(t, d.Denied)
	}
	d, err := client.Protect(context.Background(), first)
	require.NoError(t, err)
	assert.True(t, d.Denied)

	// A different caller still has a fresh window.
	d, err = client.Protect(context.Background(), second)
	require.NoError(t, err)
	assert.False(t, d.Denied)
}

func TestBotDetection(t *testing.T) {
	p := newTestProtector(t, true)

	cases := []struct {
		name      string
		userAgent string
		denied    bool
	}{
		{"plain browser", "Mozilla/5.0 (X11; Linux x86_64) Firefox/127.0", false},
		{"curl", "curl/8.5.0", true},
		{"scripted client", "python-requests/2.31", true},
		{"empty agent", "", true},
		{"search engine allowed", "Mozilla/5.0 (compatible; Googlebot/2.1)", false},
		{"link preview allowed", "Slackbot-LinkExpanding 1.0", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api", nil)
			req.RemoteAddr = "10.1.0.1:1"
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}

			d, err := p.Protect(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tc.denied, d.Denied)
			if tc.denied {
				assert.Equal(t, ReasonBot, d.Reason)
			}
		})
	}
}

func TestShieldBlocksHostilePatterns(t *testing.T) {
	p := newTestProtector(t, true)

	for _, target := range []string{
		"/api/users/../../etc/passwd",
		"/api/users?id=1%20union%20select%20password",
		"/search?q=<script>alert(1)</script>",
	} {
		req := httptest.NewRequest("GET", target, nil)
		req.RemoteAddr = "10.2.0.1:1"
		req.Header.Set("User-Agent", "Mozilla/5.0 Firefox/127.0")

		d, err := p.Protect(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, d.Denied, "target %s should be blocked", target)
		assert.Equal(t, ReasonShield, d.Reason)
	}
}

func TestShieldDryRunOutsideProduction(t *testing.T) {
	p := newTestProtector(t, false)

	req := httptest.NewRequest("GET", "/api/users/../../etc/passwd", nil)
	req.RemoteAddr = "10.2.0.2:1"
	req.Header.Set("User-Agent", "curl/8.5.0")

	// Dev rules: shield dry-run, no bot rule, no baseline window.
	d, err := p.Protect(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, d.Denied)
}

func TestParseRulesOverride(t *testing.T) {
	data := []byte(`{
		"shield": {"mode": "LIVE"},
		"bot": {"mode": "DRY_RUN", "allow": ["CATEGORY:SEARCH_ENGINE"]},
		"baseline": {"name": "baseline", "max": 100, "interval": 60}
	}`)

	rules, err := ParseRules(data)
	require.NoError(t, err)
	assert.Equal(t, ModeLive, rules.Shield.Mode)
	require.NotNil(t, rules.Bot)
	assert.Equal(t, ModeDryRun, rules.Bot.Mode)
	require.NotNil(t, rules.Baseline)
	assert.Equal(t, 100, rules.Baseline.Max)
	assert.Equal(t, time.Minute, rules.Baseline.Interval)
}

func TestRedisWindowStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p, err := New(Config{Key: "test", Store: NewRedisWindowStore(client)})
	require.NoError(t, err)
	limited := p.WithWindow(WindowRule{Name: "guest-rate-limit", Max: 3, Interval: time.Minute})

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.RemoteAddr = "10.3.0.1:1"
	req.Header.Set("User-Agent", "acceptance-suite/1.0")

	for i := 0; i < 3; i++ {
		d, err := limited.Protect(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, d.Denied, "request %d within quota should pass", i+1)
	}
	d, err := limited.Protect(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, d.Denied)
	assert.Equal(t, ReasonRateLimit, d.Reason)
}

func TestStoreFailureSurfacesError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p, err := New(Config{Key: "test", Store: NewRedisWindowStore(client)})
	require.NoError(t, err)
	limited := p.WithWindow(WindowRule{Name: "guest-rate-limit", Max: 3, Interval: time.Minute})

	mr.Close()

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.RemoteAddr = "10.3.0.2:1"
	req.Header.Set("User-Agent", "acceptance-suite/1.0")

	_, err = limited.Protect(context.Background(), req)
	assert.Error(t, err)
}

func TestMemoryStorePrune(t *testing.T) {
	store := NewMemoryWindowStore()

	for i := 0; i < 4; i++ {
		_, err := store.Hit(context.Background(), fmt.Sprintf("key-%d", i), 10*time.Millisecond)
		require.NoError(t, err)
	}
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 4, store.Prune())
	assert.Equal(t, 0, store.Prune())
}

func TestStatsCounters(t *testing.T) {
	p := newTestProtector(t, false)
	client := p.WithWindow(WindowRule{Name: "guest-rate-limit", Max: 1, Interval: time.Minute})

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.4.0.1:1"
	req.Header.Set("User-Agent", "acceptance-suite/1.0")

	_, err := client.Protect(context.Background(), req)
	require.NoError(t, err)
	_, err = client.Protect(context.Background(), req)
	require.NoError(t, err)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Allowed)
	assert.Equal(t, int64(1), stats.DeniedRateLimit)
}
