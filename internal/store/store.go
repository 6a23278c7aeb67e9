// Package store persists conversion summaries behind a backend-agnostic
// repository interface.
//
// Backends register themselves from init() under a kind string ("sqlite",
// "postgres", "mssql"); the command selects one by configuration. The
// interface is intentionally minimal: ensure schema, append a row, close.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Config selects and configures a backend.
//
// Kind must match a registered backend; DSN is passed through to the backend
// factory, validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Conversion is one persisted summary row.
type Conversion struct {
	// Source identifies the input ("stdin" or a file name).
	Source string

	TotalScore    int64
	MatchedScores int
	SkippedScores int
	WarningCount  int

	// Payload is the serialized JSON structure.
	Payload string

	ConvertedAt time.Time
}

// Repository is the backend-agnostic persistence surface.
type Repository interface {
	// EnsureSchema creates the conversions table when missing. Idempotent;
	// called once at startup.
	EnsureSchema(ctx context.Context) error

	// InsertConversion appends one summary row.
	InsertConversion(ctx context.Context, c Conversion) error

	// Close releases backend resources. Call once at shutdown.
	Close()
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend factory under kind.
//
// Call from an init() function in a backend package. Registering an empty
// kind, a nil factory, or a duplicate kind panics: backend selection must be
// unambiguous, and failing at init beats failing at first use.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("store: Register called with empty kind")
	}
	if f == nil {
		panic("store: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("store: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Kinds returns the registered backend kinds, sorted, for diagnostics.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New constructs a Repository using the registered factory for cfg.Kind.
//
// Errors:
//   - cfg.Kind empty or unregistered.
//   - Whatever the backend factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("store: missing Kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("store: unsupported kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}
