package security

import "go.uber.org/atomic"

// Stats is a point-in-time snapshot of admission outcomes since startup.
type Stats struct {
	Allowed           int64 `json:"allowed"`
	DeniedRateLimit   int64 `json:"denied_rate_limit"`
	DeniedBot         int64 `json:"denied_bot"`
	DeniedShield      int64 `json:"denied_shield"`
	EvaluationFailure int64 `json:"evaluation_failures"`
}

type counters struct {
	allowed         atomic.Int64
	deniedRateLimit atomic.Int64
	deniedBot       atomic.Int64
	deniedShield    atomic.Int64
	failures        atomic.Int64
}

func (c *counters) record(d Decision) {
	if !d.Denied {
		c.allowed.Inc()
		return
	}
	switch d.Reason {
	case ReasonRateLimit:
		c.deniedRateLimit.Inc()
	case ReasonBot:
		c.deniedBot.Inc()
	case ReasonShield:
		c.deniedShield.Inc()
	case ReasonNone:
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Allowed:           c.allowed.Load(),
		DeniedRateLimit:   c.deniedRateLimit.Load(),
		DeniedBot:         c.deniedBot.Load(),
		DeniedShield:      c.deniedShield.Load(),
		EvaluationFailure: c.failures.Load(),
	}
}
