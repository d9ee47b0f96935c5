package security

import (
	"time"

	"github.com/goccy/go-json"
)

// RuleMode controls whether a rule denies requests or only logs matches.
type RuleMode string

const (
	ModeLive   RuleMode = "LIVE"
	ModeDryRun RuleMode = "DRY_RUN"
)

// Bot allow-list categories.
const (
	CategorySearchEngine = "CATEGORY:SEARCH_ENGINE"
	CategoryPreview      = "CATEGORY:PREVIEW"
)

type ShieldRule struct {
	Mode RuleMode `json:"mode"`
}

type BotRule struct {
	Mode  RuleMode `json:"mode"`
	Allow []string `json:"allow"`
}

// WindowRule is a sliding-window rate limit: at most Max requests per caller
// within any Interval-long span.
type WindowRule struct {
	Name     string        `json:"name"`
	Max      int           `json:"max"`
	Interval time.Duration `json:"-"`

	// IntervalSeconds is the wire form of Interval in rule config files.
	IntervalSeconds int `json:"interval"`
}

// Rules is the full rule set a Protector evaluates on every request.
type Rules struct {
	Shield   ShieldRule  `json:"shield"`
	Bot      *BotRule    `json:"bot,omitempty"`
	Baseline *WindowRule `json:"baseline,omitempty"`
}

// DefaultRules mirrors the deployment defaults: shield always on (dry-run
// outside production), bot detection and a generous baseline window only in
// production.
func DefaultRules(production bool) Rules {
	rules := Rules{
		Shield: ShieldRule{Mode: ModeDryRun},
	}
	if !production {
		return rules
	}
	rules.Shield.Mode = ModeLive
	rules.Bot = &BotRule{
		Mode:  ModeLive,
		Allow: []string{CategorySearchEngine, CategoryPreview},
	}
	rules.Baseline = &WindowRule{
		Name:     "baseline",
		Max:      500,
		Interval: 60 * time.Second,
	}
	return rules
}

// ParseRules decodes a JSON rule-set override.
func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, err
	}
	if rules.Baseline != nil && rules.Baseline.IntervalSeconds > 0 {
		rules.Baseline.Interval = time.Duration(rules.Baseline.IntervalSeconds) * time.Second
	}
	return rules, nil
}
