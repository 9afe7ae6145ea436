package engine

import (
	"errors"
	"testing"
	"time"
)

// ============================================================================
// TEST FIXTURES
// ============================================================================

func mustTable(t *testing.T, cols []string, rows ...[]Value) *Table {
	t.Helper()
	tbl, err := NewTable(cols)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	for _, r := range rows {
		if err := tbl.AppendRow(r...); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	return tbl
}

func peopleFixture(t *testing.T) *Table {
	t.Helper()
	nullStr := Null(KindString)
	return mustTable(t,
		[]string{"fullName", "username", "email", "country", "total_sessions", "businessUser"},
		[]Value{String("Alice Smith"), String("asmith"), String("alice@example.com"), String("Germany"), Number(3), Bool(true)},
		[]Value{String("Bob Jones"), String("bob99"), nullStr, String("France"), Number(5), Bool(false)},
		[]Value{Null(KindString), String("carol"), String("carol@example.com"), Null(KindString), Number(7), Bool(true)},
		[]Value{String("Dan Brown"), String("dan"), String("dan@example.com"), String("Germany"), Null(KindNumber), Null(KindBool)},
	)
}

func sessionsFixture(t *testing.T) *Table {
	t.Helper()
	ts := func(day int) Value {
		return Time(time.Date(2024, 1, day, 14, 30, 0, 0, time.UTC))
	}
	return mustTable(t,
		[]string{"session_id", "country", "start_timestamp", "session_duration", "screen_count", "created_event", "viewed_event"},
		[]Value{String("s1"), String("Germany"), ts(1), Number(120), Number(4), Bool(true), Bool(false)},
		[]Value{String("s2"), String("France"), ts(5), Number(300), Number(9), Bool(false), Bool(true)},
		[]Value{String("s3"), String("Germany"), ts(10), Number(45), Number(2), Bool(true), Bool(true)},
		[]Value{String("s4"), Null(KindString), Null(KindTime), Number(600), Number(12), Null(KindBool), Bool(false)},
	)
}

// surviving collects one column's rendered values in row order — handy for
// asserting which rows a filter kept.
func surviving(rs Rowset, col string) []string {
	var out []string
	for i := 0; i < rs.Len(); i++ {
		out = append(out, rs.Value(i, col).Render())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// PREDICATE SEMANTICS
// ============================================================================

func TestApplyEmptyConfigIsIdentity(t *testing.T) {
	people := peopleFixture(t)

	got, err := Apply(people, FilterConfig{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Len() != people.Len() {
		t.Errorf("identity law violated: got %d rows, want %d", got.Len(), people.Len())
	}
	// An all-inactive set must hand back the very same rowset.
	if got != Rowset(people) {
		t.Error("empty config should return the input unchanged")
	}
}

func TestBooleanFlagFilter(t *testing.T) {
	people := peopleFixture(t)

	got, err := Apply(people, FilterConfig{
		Equals: []EqualsFilter{{Column: "businessUser", Value: Bool(true)}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"asmith", "carol"}
	if !equalStrings(surviving(got, "username"), want) {
		t.Errorf("business-user filter: got %v, want %v", surviving(got, "username"), want)
	}
}

func TestBooleanEqualsFalse(t *testing.T) {
	people := peopleFixture(t)

	// The tri-state user-type selector has an explicit ==false branch.
	// A null cell matches neither branch.
	got, err := Apply(people, FilterConfig{
		Equals: []EqualsFilter{{Column: "businessUser", Value: Bool(false)}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"bob99"}
	if !equalStrings(surviving(got, "username"), want) {
		t.Errorf("non-business filter: got %v, want %v", surviving(got, "username"), want)
	}
}

func TestNumericLowerBound(t *testing.T) {
	people := peopleFixture(t)

	// total_sessions = [3, 5, 7, null]; threshold 5 keeps 5 and 7.
	got, err := Apply(people, FilterConfig{
		Min: []MinFilter{{Column: "total_sessions", Threshold: 5}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"bob99", "carol"}
	if !equalStrings(surviving(got, "username"), want) {
		t.Errorf("min filter: got %v, want %v", surviving(got, "username"), want)
	}
}

func TestSearchAcrossColumns(t *testing.T) {
	people := peopleFixture(t)

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"matches fullName despite null email", "alice", []string{"asmith"}},
		{"case folded", "ALICE", []string{"asmith"}},
		{"matches username only", "bob99", []string{"bob99"}},
		{"null fullName still matches on email", "carol@", []string{"carol"}},
		{"row included once even when several columns match", "dan", []string{"dan"}},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(people, FilterConfig{
				Search: &SearchFilter{
					Term:    tt.term,
					Columns: []string{"fullName", "username", "email"},
				},
			})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !equalStrings(surviving(got, "username"), tt.want) {
				t.Errorf("search %q: got %v, want %v", tt.term, surviving(got, "username"), tt.want)
			}
		})
	}
}

func TestEmptySearchTermIsInactive(t *testing.T) {
	people := peopleFixture(t)

	got, err := Apply(people, FilterConfig{
		Search: &SearchFilter{Term: "", Columns: []string{"fullName"}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Len() != people.Len() {
		t.Errorf("empty term should impose no constraint: got %d rows, want %d", got.Len(), people.Len())
	}
}

func TestDateRangeInclusive(t *testing.T) {
	sessions := sessionsFixture(t)

	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		start, end time.Time
		want       []string
	}{
		{"mid range", day(2), day(6), []string{"s2"}},
		{"bounds inclusive", day(1), day(10), []string{"s1", "s2", "s3"}},
		{"exact day", day(5), day(5), []string{"s2"}},
		{"inverted range matches nothing", day(6), day(2), nil},
		{"null timestamp always fails", day(1), day(31), []string{"s1", "s2", "s3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(sessions, FilterConfig{
				Range: &DateRangeFilter{Column: "start_timestamp", Start: tt.start, End: tt.end},
			})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !equalStrings(surviving(got, "session_id"), tt.want) {
				t.Errorf("range [%s, %s]: got %v, want %v",
					tt.start.Format("2006-01-02"), tt.end.Format("2006-01-02"),
					surviving(got, "session_id"), tt.want)
			}
		})
	}
}

func TestDateRangeIgnoresTimeOfDay(t *testing.T) {
	sessions := sessionsFixture(t)

	// Fixture timestamps carry 14:30; bounds at midnight must still include
	// the same calendar day on both ends.
	got, err := Apply(sessions, FilterConfig{
		Range: &DateRangeFilter{
			Column: "start_timestamp",
			Start:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !equalStrings(surviving(got, "session_id"), []string{"s3"}) {
		t.Errorf("got %v, want [s3]", surviving(got, "session_id"))
	}
}

func TestEqualityOnNullableString(t *testing.T) {
	people := peopleFixture(t)

	got, err := Apply(people, FilterConfig{
		Equals: []EqualsFilter{{Column: "country", Value: String("Germany")}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// carol's null country must not match.
	want := []string{"asmith", "dan"}
	if !equalStrings(surviving(got, "username"), want) {
		t.Errorf("country filter: got %v, want %v", surviving(got, "username"), want)
	}
}

func TestFlagFilterRequiresTrue(t *testing.T) {
	sessions := sessionsFixture(t)

	got, err := Apply(sessions, FilterConfig{
		Flags: []FlagFilter{{Column: "created_event"}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// s2 is false, s4 is null — both fail.
	want := []string{"s1", "s3"}
	if !equalStrings(surviving(got, "session_id"), want) {
		t.Errorf("flag filter: got %v, want %v", surviving(got, "session_id"), want)
	}
}

func TestUnknownColumnFailsLoudly(t *testing.T) {
	people := peopleFixture(t)

	_, err := Apply(people, FilterConfig{
		Min: []MinFilter{{Column: "no_such_column", Threshold: 1}},
	})
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("want ErrUnknownColumn, got %v", err)
	}
}

// ============================================================================
// COMPOSITION LAWS
// ============================================================================

func TestFilterOrderIndependence(t *testing.T) {
	sessions := sessionsFixture(t)

	forward := FilterConfig{
		Flags:  []FlagFilter{{Column: "created_event"}},
		Equals: []EqualsFilter{{Column: "country", Value: String("Germany")}},
	}
	reversed := FilterConfig{
		Equals: []EqualsFilter{{Column: "country", Value: String("Germany")}},
		Flags:  []FlagFilter{{Column: "created_event"}},
	}

	a, err := Apply(sessions, forward)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	b, err := Apply(sessions, reversed)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !equalStrings(surviving(a, "session_id"), surviving(b, "session_id")) {
		t.Errorf("order dependence: %v vs %v", surviving(a, "session_id"), surviving(b, "session_id"))
	}
}

func TestCombinedEqualsIntersection(t *testing.T) {
	sessions := sessionsFixture(t)

	p1 := FilterConfig{Flags: []FlagFilter{{Column: "viewed_event"}}}
	p2 := FilterConfig{Equals: []EqualsFilter{{Column: "country", Value: String("Germany")}}}
	combined := FilterConfig{
		Flags:  p1.Flags,
		Equals: p2.Equals,
	}

	a, err := Apply(sessions, p1)
	if err != nil {
		t.Fatalf("Apply p1: %v", err)
	}
	b, err := Apply(sessions, p2)
	if err != nil {
		t.Fatalf("Apply p2: %v", err)
	}
	both, err := Apply(sessions, combined)
	if err != nil {
		t.Fatalf("Apply combined: %v", err)
	}

	inA := make(map[string]bool)
	for _, id := range surviving(a, "session_id") {
		inA[id] = true
	}
	var intersection []string
	for _, id := range surviving(b, "session_id") {
		if inA[id] {
			intersection = append(intersection, id)
		}
	}

	if !equalStrings(surviving(both, "session_id"), intersection) {
		t.Errorf("apply(P1 ∪ P2) = %v, intersection = %v", surviving(both, "session_id"), intersection)
	}
}

func TestApplyIdempotence(t *testing.T) {
	people := peopleFixture(t)

	f := FilterConfig{
		Min:    []MinFilter{{Column: "total_sessions", Threshold: 4}},
		Search: &SearchFilter{Term: "o", Columns: []string{"fullName", "username", "email"}},
	}

	once, err := Apply(people, f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	twice, err := Apply(once, f)
	if err != nil {
		t.Fatalf("Apply twice: %v", err)
	}

	if !equalStrings(surviving(once, "username"), surviving(twice, "username")) {
		t.Errorf("idempotence violated: %v vs %v", surviving(once, "username"), surviving(twice, "username"))
	}
}

func TestFilteringPreservesRowOrder(t *testing.T) {
	sessions := sessionsFixture(t)

	got, err := Apply(sessions, FilterConfig{
		Min: []MinFilter{{Column: "session_duration", Threshold: 46}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// s1, s2, s4 pass and must come back in original relative order.
	want := []string{"s1", "s2", "s4"}
	if !equalStrings(surviving(got, "session_id"), want) {
		t.Errorf("row order: got %v, want %v", surviving(got, "session_id"), want)
	}
}

func TestFilteringDoesNotMutateSource(t *testing.T) {
	people := peopleFixture(t)
	before := people.Len()

	if _, err := Apply(people, FilterConfig{Min: []MinFilter{{Column: "total_sessions", Threshold: 100}}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if people.Len() != before {
		t.Errorf("source mutated: len %d, want %d", people.Len(), before)
	}
	if people.Value(0, "username").Str != "asmith" {
		t.Error("source rows changed")
	}
}
