package model

// Action is what the battery does during one hour.
type Action int

const (
	ActionIdle Action = iota
	ActionSolar
	ActionGrid
	ActionDischarge
)

func (a Action) String() string {
	switch a {
	case ActionSolar:
		return "solar"
	case ActionGrid:
		return "grid"
	case ActionDischarge:
		return "discharge"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	switch string(b) {
	case "solar":
		*a = ActionSolar
	case "grid":
		*a = ActionGrid
	case "discharge":
		*a = ActionDischarge
	default:
		*a = ActionIdle
	}
	return nil
}
