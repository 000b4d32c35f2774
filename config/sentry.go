package config

// SentryConfig defines settings for Sentry error monitoring. Solver
// failures, broker publish errors and panics of background servers are
// reported when DSN is set.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// SampleRate is the fraction of error events sent, 1 when zero.
	SampleRate float64 `json:"sample_rate"`
	Debug      bool    `json:"debug"`
}

func (c SentryConfig) Enabled() bool { return c.DSN != "" }
