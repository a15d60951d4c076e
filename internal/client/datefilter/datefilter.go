// Package datefilter selects records by the date they carry, for the
// "this week / this month / this year / range / all" views.
package datefilter

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/timex"
)

type Kind string

const (
	All   Kind = "all"
	Week  Kind = "week"
	Month Kind = "month"
	Year  Kind = "year"
	Range Kind = "range"
)

// Kinds in the order they are offered to the user.
var Kinds = []Kind{All, Week, Month, Year, Range}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Options configure Filter. From and To are only used by Range. A zero Now
// means time.Now.
type Options struct {
	Kind Kind
	From string
	To   string
	Now  time.Time
}

// Filter returns the items of in whose date, as returned by dateOf, matches
// opts. The input is never modified and the relative order is kept. Items
// with an unparseable date are dropped by every kind except All. A Range with
// a missing or unparseable bound returns the input unfiltered.
func Filter[T any](in []T, dateOf func(T) string, opts Options) []T {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := timex.StartOfDay(now)

	var keep func(d time.Time) bool

	switch opts.Kind {
	case All, "":
		return in
	case Week:
		keep = func(d time.Time) bool {
			// rounding absorbs DST shifts between the two midnights
			days := math.Round(today.Sub(timex.StartOfDay(d)).Hours() / 24)
			return days >= 0 && days <= 7
		}
	case Month:
		keep = func(d time.Time) bool {
			return d.Year() == now.Year() && d.Month() == now.Month()
		}
	case Year:
		keep = func(d time.Time) bool {
			return d.Year() == now.Year()
		}
	case Range:
		from, okFrom := timex.ParseDate(opts.From)
		to, okTo := timex.ParseDate(opts.To)
		if !okFrom || !okTo {
			return in
		}
		from, to = timex.StartOfDay(from), timex.StartOfDay(to)
		keep = func(d time.Time) bool {
			day := timex.StartOfDay(d)
			return !day.Before(from) && !day.After(to)
		}
	default:
		return in
	}

	out := make([]T, 0, len(in))
	for _, it := range in {
		d, ok := timex.ParseDate(dateOf(it))
		if !ok {
			continue
		}
		// timestamps with an offset are judged in now's zone
		if keep(d.In(now.Location())) {
			out = append(out, it)
		}
	}
	return out
}

// DayTotal is the sum of values recorded on one date.
type DayTotal struct {
	Date  string
	Total float64
}

// DailyTotals sums value per date and returns the days in ascending order.
// Items with an unparseable date are skipped.
func DailyTotals[T any](in []T, dateOf func(T) string, value func(T) float64) []DayTotal {
	sums := make(map[string]float64)
	for _, it := range in {
		d, ok := timex.ParseDate(dateOf(it))
		if !ok {
			continue
		}
		sums[d.Format(time.DateOnly)] += value(it)
	}

	out := make([]DayTotal, 0, len(sums))
	for day, total := range sums {
		out = append(out, DayTotal{Date: day, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
