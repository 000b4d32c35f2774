package journal

import "fmt"

// Options selects and tunes a Store backend.
type Options struct {
	// Backend is "jsonl" or "sqlite".
	Backend string
	Path    string
	// MaxSizeMB enables rotation of the jsonl backend when positive.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open builds the Store described by o.
func Open(o Options) (Store, error) {
	switch o.Backend {
	case "", "jsonl":
		if o.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(o.Path, o.MaxSizeMB, o.MaxBackups, o.MaxAgeDays)
		}
		return NewJSONLStore(o.Path)
	case "sqlite":
		return NewSQLiteStore(o.Path)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", o.Backend)
	}
}
