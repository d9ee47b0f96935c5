// Package security implements per-request admission control for the
// acquisitions API: WAF-style shield rules, bot detection, and sliding-window
// rate limiting. Callers submit a request through Protect and receive a
// single Decision; the deny reason is a closed enum so response mapping can
// match it exhaustively.
package security

// Reason tags why a request was denied.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonRateLimit
	ReasonBot
	ReasonShield
)

func (r Reason) String() string {
	switch r {
	case ReasonRateLimit:
		return "rate_limit"
	case ReasonBot:
		return "bot"
	case ReasonShield:
		return "shield"
	default:
		return "none"
	}
}

// Decision is the outcome of one admission check. Ephemeral, never stored.
type Decision struct {
	Denied bool
	Reason Reason
	// RuleName names the rule that produced a rate-limit denial.
	RuleName string
}

func allow() Decision {
	return Decision{}
}

func deny(reason Reason) Decision {
	return Decision{Denied: true, Reason: reason}
}
