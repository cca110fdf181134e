// Package sink abstracts where the anonymized table ends up.
//
// The default sink writes a delimited file; database sinks load the
// table into a scratch database so downstream test pipelines can query
// the surrogate data directly. Backends register themselves with the
// factory from their package init, and commands pull them all in with a
// blank import of sink/all.
//
// A sink receives the complete anonymized table only after every
// transformation stage has succeeded, which keeps output atomic with
// respect to pipeline failure.
package sink

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"csvanon/internal/config"
	"csvanon/internal/table"
)

// Config carries the sink selection and its settings, decoupled from
// the job document shape.
type Config struct {
	Kind      string
	Path      string
	Encoding  string
	Delimiter rune
	DSN       string
	Table     string
	Options   config.Options
}

// Sink writes one table to a destination.
type Sink interface {
	Write(ctx context.Context, t table.Table) error
	Close() error
}

// Factory constructs a sink for a config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a factory under a kind name. Called from backend
// package init; duplicate registration panics.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("sink: duplicate registration for %q", kind))
	}
	factories[kind] = f
}

// New builds the sink for cfg.Kind. Empty kind means "file".
func New(ctx context.Context, cfg Config) (Sink, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = "file"
	}
	mu.RLock()
	f, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sink: unknown kind %q (registered: %s)", kind, strings.Join(kinds(), ", "))
	}
	return f(ctx, cfg)
}

func kinds() []string {
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NormalizeColumn converts a header name into a safe lowercase SQL
// identifier: whitespace and separators become underscores, anything
// outside [a-z0-9_] is dropped, and an empty result falls back to
// "col".
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	prevUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.' || r == '/' || r == ':':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}
	return out
}

// NormalizeColumns maps NormalizeColumn over a header, de-duplicating
// collisions with numeric suffixes so the DDL stays valid.
func NormalizeColumns(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		n := NormalizeColumn(h)
		base := n
		for j := 2; ; j++ {
			if _, dup := seen[n]; !dup {
				break
			}
			n = fmt.Sprintf("%s_%d", base, j)
		}
		seen[n] = struct{}{}
		out[i] = n
	}
	return out
}
