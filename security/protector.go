package security

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/acquisitions/api/logger"
)

// Config assembles a Protector. Key identifies the deployment in window keys
// so several apps can share one redis. Rules defaults via DefaultRules when
// RulesJSON is empty.
type Config struct {
	Key        string
	Production bool
	RulesJSON  []byte
	Store      WindowStore
}

// Protector evaluates the configured rule set against individual requests.
// Safe for concurrent use; derived protectors from WithWindow share the
// store and counters of their parent.
type Protector struct {
	key     string
	rules   Rules
	store   WindowStore
	extra   []WindowRule
	metrics *counters
}

func New(cfg Config) (*Protector, error) {
	rules := DefaultRules(cfg.Production)
	if len(cfg.RulesJSON) > 0 {
		parsed, err := ParseRules(cfg.RulesJSON)
		if err != nil {
			return nil, err
		}
		rules = parsed
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryWindowStore()
	}
	return &Protector{
		key:     cfg.Key,
		rules:   rules,
		store:   store,
		metrics: &counters{},
	}, nil
}

// WithWindow returns a Protector that additionally enforces the given
// sliding-window rule. The base rule set, store and counters are shared.
func (p *Protector) WithWindow(rule WindowRule) *Protector {
	derived := *p
	derived.extra = append(append([]WindowRule{}, p.extra...), rule)
	return &derived
}

// Protect runs the admission check for one request. A non-nil error means
// the check itself failed (store unavailable, bad rule) and the caller must
// decide the failure policy; no Decision is implied.
func (p *Protector) Protect(ctx context.Context, r *http.Request) (Decision, error) {
	if matchShield(r) {
		if p.rules.Shield.Mode == ModeLive {
			d := deny(ReasonShield)
			p.metrics.record(d)
			return d, nil
		}
		logger.Noticef("shield rule matched in dry-run: %s %s", r.Method, r.URL.Path)
	}

	if p.rules.Bot != nil && matchBot(p.rules.Bot, r.UserAgent()) {
		if p.rules.Bot.Mode == ModeLive {
			d := deny(ReasonBot)
			p.metrics.record(d)
			return d, nil
		}
		logger.Noticef("bot rule matched in dry-run: %q on %s", r.UserAgent(), r.URL.Path)
	}

	windows := p.extra
	if p.rules.Baseline != nil {
		windows = append([]WindowRule{*p.rules.Baseline}, p.extra...)
	}
	ip := clientIP(r)
	for _, rule := range windows {
		count, err := p.store.Hit(ctx, p.windowKey(rule.Name, ip), rule.Interval)
		if err != nil {
			p.metrics.failures.Inc()
			return Decision{}, err
		}
		if count > int64(rule.Max) {
			d := deny(ReasonRateLimit)
			d.RuleName = rule.Name
			p.metrics.record(d)
			return d, nil
		}
	}

	d := allow()
	p.metrics.record(d)
	return d, nil
}

// Stats returns the admission counters accumulated since startup.
func (p *Protector) Stats() Stats {
	return p.metrics.snapshot()
}

func (p *Protector) windowKey(rule, ip string) string {
	return "aq:" + p.key + ":" + rule + ":" + ip
}

// clientIP extracts the caller address from proxy headers or the socket.
func clientIP(r *http.Request) string {
	if v := r.Header.Get("X-Real-IP"); v != "" {
		return v
	}
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		return strings.TrimSpace(strings.Split(v, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
