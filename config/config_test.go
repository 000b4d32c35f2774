package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `battery:
  battery_capacity: 60
  initial_soc: 20
  allow_idle: true
solver:
  time_limit_ms: 2000
planner:
  mode: eco
  deadline_hours: 24
  start_hour: 18
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  plan_topic: "ev/plan"
  qos: 1
journal:
  backend: sqlite
  path: solves.db
metrics:
  prometheus_addr: ":9090"
  sinks:
    - type: "nop"
sentry:
  dsn: "https://key@example.invalid/1"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"battery_capacity", cfg.Battery.BatteryCapacity, 60.0},
		{"initial_soc", cfg.Battery.InitialSoC, 20.0},
		{"allow_idle", cfg.Battery.AllowIdle, true},
		{"max_charge_rate default", cfg.Battery.MaxChargeRate, 11.0},
		{"emission_factor default", cfg.Battery.EmissionFactor, 0.233},
		{"time_limit", cfg.Solver.Options().TimeLimit, 2 * time.Second},
		{"max_nodes default", cfg.Solver.MaxNodes, 50000},
		{"algorithm default", cfg.Solver.Algorithm, AlgorithmDP},
		{"mode", cfg.Planner.Mode, "eco"},
		{"deadline_hours", cfg.Planner.DeadlineHours, 24},
		{"start_hour", cfg.Planner.StartHour, 18},
		{"interval default", cfg.Planner.IntervalMinutes, 60},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "cli"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"plan_topic", cfg.MQTT.PlanTopic, "ev/plan"},
		{"qos", cfg.MQTT.QoS, byte(1)},
		{"journal backend", cfg.Journal.Backend, "sqlite"},
		{"journal path", cfg.Journal.Options().Path, "solves.db"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9090"},
		{"sentry", cfg.Sentry.DSN, "https://key@example.invalid/1"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("K_BATTERY__INITIAL_SOC", "12.5")
	t.Setenv("K_PLANNER__MODE", "eco")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, cfg.Battery.InitialSoC, 1e-9)
	assert.Equal(t, "eco", cfg.Planner.Mode)
	assert.InDelta(t, 75.0, cfg.Battery.BatteryCapacity, 1e-9)
	assert.Equal(t, "jsonl", cfg.Journal.Backend)
}

func TestSolverDefaultsBoundEverySolve(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmDP, cfg.Solver.Algorithm)
	assert.Equal(t, 5*time.Second, cfg.Solver.TimeLimit())
	assert.Equal(t, 5*time.Second, cfg.Solver.Options().TimeLimit)

	t.Setenv("K_SOLVER__ALGORITHM", AlgorithmBranchAndBound)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, AlgorithmBranchAndBound, cfg.Solver.Algorithm)
}

func TestLoadRejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"mode":      "planner:\n  mode: fastest\n",
		"soc":       "battery:\n  initial_soc: 100\n",
		"backend":   "journal:\n  backend: csv\n",
		"rotation":  "journal:\n  backend: sqlite\n  max_size_mb: 5\n",
		"broker":    "mqtt:\n  enabled: true\n",
		"hour":      "planner:\n  start_hour: 24\n",
		"algorithm": "solver:\n  algorithm: simplex\n",
		"limit":     "solver:\n  time_limit_ms: -1\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(dir, "config.toml"))
	assert.Error(t, err)
}

func TestPlannerEnergy(t *testing.T) {
	cfg := Default()
	cfg.Planner.RequiredEnergy = 30
	assert.InDelta(t, 30.0, cfg.Planner.Energy(cfg.Battery), 1e-9)
	cfg.Planner.RequiredRangeMiles = 100
	assert.InDelta(t, 25.0, cfg.Planner.Energy(cfg.Battery), 1e-9)
	assert.NoError(t, cfg.Validate())
}
