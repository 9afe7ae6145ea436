package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lumen-org/lumen/engine"
)

// ============================================================================
// PARAMS — query string → filter configuration
// ============================================================================
// Each request builds a fresh, explicit FilterConfig; an absent parameter
// is an inactive predicate, never an existence check downstream.
// ============================================================================

var errBadParam = errors.New("bad parameter")

func badParam(name, value string) error {
	return fmt.Errorf("%w: %s=%q", errBadParam, name, value)
}

// searchColumns are the People tab's search targets.
var searchColumns = []string{"fullName", "username", "email"}

// peopleFilter maps the People tab's controls onto predicates:
// user_type (all|business|non_business), min_sessions, country, search.
func peopleFilter(q url.Values) (engine.FilterConfig, error) {
	var f engine.FilterConfig

	switch userType := q.Get("user_type"); userType {
	case "", "all":
	case "business":
		f.Equals = append(f.Equals, engine.EqualsFilter{Column: "businessUser", Value: engine.Bool(true)})
	case "non_business":
		f.Equals = append(f.Equals, engine.EqualsFilter{Column: "businessUser", Value: engine.Bool(false)})
	default:
		return engine.FilterConfig{}, badParam("user_type", userType)
	}

	if raw := q.Get("min_sessions"); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || n < 0 {
			return engine.FilterConfig{}, badParam("min_sessions", raw)
		}
		f.Min = append(f.Min, engine.MinFilter{Column: "total_sessions", Threshold: n})
	}

	if country := q.Get("country"); country != "" && country != "All" {
		f.Equals = append(f.Equals, engine.EqualsFilter{Column: "country", Value: engine.String(country)})
	}

	if term := q.Get("search"); term != "" {
		f.Search = &engine.SearchFilter{Term: term, Columns: searchColumns}
	}

	return f, nil
}

// sessionsFilter maps the Sessions tab's controls onto predicates:
// events (comma list of flag columns), country, from/to date bounds.
func sessionsFilter(q url.Values) (engine.FilterConfig, error) {
	var f engine.FilterConfig

	if raw := q.Get("events"); raw != "" {
		for _, ev := range strings.Split(raw, ",") {
			ev = strings.TrimSpace(ev)
			if ev == "" {
				continue
			}
			f.Flags = append(f.Flags, engine.FlagFilter{Column: ev})
		}
	}

	if country := q.Get("country"); country != "" && country != "All" {
		f.Equals = append(f.Equals, engine.EqualsFilter{Column: "country", Value: engine.String(country)})
	}

	from, to := q.Get("from"), q.Get("to")
	switch {
	case from == "" && to == "":
	case from == "" || to == "":
		return engine.FilterConfig{}, fmt.Errorf("%w: from and to must be supplied together", errBadParam)
	default:
		start, err := time.Parse("2006-01-02", from)
		if err != nil {
			return engine.FilterConfig{}, badParam("from", from)
		}
		end, err := time.Parse("2006-01-02", to)
		if err != nil {
			return engine.FilterConfig{}, badParam("to", to)
		}
		// An inverted range passes through: the engine treats it as a
		// defined empty result, same as the dashboard always has.
		f.Range = &engine.DateRangeFilter{Column: "start_timestamp", Start: start, End: end}
	}

	return f, nil
}

// columnSelection resolves the columns parameter. Absent means the
// dataset's defaults; present-but-empty is a deliberate zero-column
// selection the handler must warn about.
func columnSelection(q url.Values, defaults []string) []string {
	if !q.Has("columns") {
		return defaults
	}
	var cols []string
	for _, c := range strings.Split(q.Get("columns"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}
