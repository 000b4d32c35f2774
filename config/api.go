package config

// APIConfig enables the read-only HTTP API serving the journal and the
// eco KPIs.
type APIConfig struct {
	// Addr enables the API when set, e.g. ":8080".
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on every request.
	Token string `json:"token"`
}
