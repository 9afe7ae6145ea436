// Package lumen provides a filter-and-projection engine for pre-aggregated
// analytics tables, plus the loader and HTTP surfaces around it.
//
// Usage:
//
//	import "github.com/lumen-org/lumen/engine"
//
//	filtered, err := engine.Apply(people, engine.FilterConfig{
//	    Min:    []engine.MinFilter{{Column: "total_sessions", Threshold: 5}},
//	    Search: &engine.SearchFilter{Term: "alice", Columns: []string{"fullName", "username", "email"}},
//	})
//	view, err := engine.Project(filtered, []string{"fullName", "email", "total_sessions"})
//
// The engine takes an immutable Rowset and an explicit FilterConfig built
// once per interaction, and returns zero-copy views. Predicates are
// AND-combined and each is evaluated against the original row, so the
// result is independent of predicate order.
//
// Data loading is handled separately by the warehouse package. The engine
// never fetches anything — all computation is local.
package lumen
