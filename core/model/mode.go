package model

import (
	"fmt"
	"strings"
)

// Mode selects the planning objective.
type Mode int

const (
	// ModeCost reaches the required energy at minimum cost.
	ModeCost Mode = iota
	// ModeEco forbids grid charging and maximizes solar to V2G arbitrage,
	// returning to the starting state of charge.
	ModeEco
)

func (m Mode) String() string {
	switch m {
	case ModeCost:
		return "cost"
	case ModeEco:
		return "eco"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts "cost" or "eco" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cost":
		return ModeCost, nil
	case "eco":
		return ModeEco, nil
	default:
		return ModeCost, fmt.Errorf("unknown mode %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
