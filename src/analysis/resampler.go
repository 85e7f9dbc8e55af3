package analysis

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dayLayouts are tried in order; the first that parses wins.
var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05-07:00",
}

// nullTokens are the spellings of a missing cell in the exports.
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"na":   {},
	"n/a":  {},
}

// -----------------------------------------------------------------------------

// ParseDay turns a date or timestamp cell into a UTC calendar date. A
// timestamp maps to the calendar day of its own offset.
func ParseDay(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ParseOptionalFloat maps null spellings and malformed numbers to nil.
func ParseOptionalFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if _, isNull := nullTokens[strings.ToLower(s)]; isNull {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// -----------------------------------------------------------------------------

// DayGroup is every item that fell on one calendar day, in input order.
type DayGroup[T any] struct {
	Day   time.Time
	Items []T
}

// GroupByDay buckets items by day and returns the groups sorted ascending.
// days and data are parallel slices.
func GroupByDay[T any](days []time.Time, data []T) []DayGroup[T] {
	if len(days) == 0 {
		return []DayGroup[T]{}
	}

	index := make(map[time.Time]int)
	var groups []DayGroup[T]
	for i, d := range days {
		if i >= len(data) {
			break
		}
		idx, ok := index[d]
		if !ok {
			idx = len(groups)
			index[d] = idx
			groups = append(groups, DayGroup[T]{Day: d})
		}
		groups[idx].Items = append(groups[idx].Items, data[i])
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.Before(groups[j].Day)
	})
	return groups
}

// -----------------------------------------------------------------------------

// SearchDay returns the first index whose day is not before value. days must
// be sorted ascending.
func SearchDay(days []time.Time, value time.Time) int {
	return sort.Search(len(days), func(i int) bool {
		return !days[i].Before(value)
	})
}
