package datasource

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Range selects a slice of price history: either a Period keyword alone,
// or both Start and End. Interval is the bar size and defaults to "1d".
type Range struct {
	Period   string
	Start    time.Time
	End      time.Time
	Interval string
}

// DefaultPeriod is used when a Range names neither a period nor dates.
const DefaultPeriod = "1mo"

// DefaultInterval is the bar size used when a Range leaves it empty.
const DefaultInterval = "1d"

// Periods lists the accepted period keywords.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// Intervals lists the accepted bar intervals.
var Intervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"}

// periodAliases maps extra spellings onto Yahoo keywords.
var periodAliases = map[string]string{
	"1w":  "5d",
	"1wk": "5d",
	"1m":  "1mo",
	"3m":  "3mo",
	"6m":  "6mo",
}

// PeriodRange returns a Range for a period keyword.
func PeriodRange(period, interval string) Range {
	return Range{Period: period, Interval: interval}
}

// DateRange returns a Range between two dates.
func DateRange(start, end time.Time, interval string) Range {
	return Range{Start: start, End: end, Interval: interval}
}

// Normalize validates r and fills in defaults.
func (r Range) Normalize() (Range, error) {
	hasDates := !r.Start.IsZero() || !r.End.IsZero()
	r.Period = strings.ToLower(strings.TrimSpace(r.Period))
	r.Interval = strings.TrimSpace(r.Interval)

	switch {
	case r.Period != "" && hasDates:
		return r, fmt.Errorf("%w: give either a period or start and end dates, not both", ErrInvalidRange)
	case hasDates && (r.Start.IsZero() || r.End.IsZero()):
		return r, fmt.Errorf("%w: start and end dates must be given together", ErrInvalidRange)
	case hasDates && !r.Start.Before(r.End):
		return r, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidRange,
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	case !hasDates:
		if r.Period == "" {
			r.Period = DefaultPeriod
		}
		if alias, ok := periodAliases[r.Period]; ok {
			r.Period = alias
		}
		if !contains(Periods, r.Period) {
			return r, fmt.Errorf("%w: unknown period %q", ErrInvalidRange, r.Period)
		}
	}

	if r.Interval == "" {
		r.Interval = DefaultInterval
	}
	if !contains(Intervals, r.Interval) {
		return r, fmt.Errorf("%w: %q", ErrInvalidInterval, r.Interval)
	}
	return r, nil
}

// query encodes a normalized range as Yahoo chart parameters.
func (r Range) query() url.Values {
	q := url.Values{}
	if r.Period != "" {
		q.Set("range", r.Period)
	} else {
		q.Set("period1", strconv.FormatInt(r.Start.Unix(), 10))
		q.Set("period2", strconv.FormatInt(r.End.Unix(), 10))
	}
	q.Set("interval", r.Interval)
	q.Set("events", "div,splits")
	q.Set("includeAdjustedClose", "true")
	return q
}

// key identifies a normalized range in cache keys.
func (r Range) key() string {
	if r.Period != "" {
		return r.Period + ":" + r.Interval
	}
	return fmt.Sprintf("%d-%d:%s", r.Start.Unix(), r.End.Unix(), r.Interval)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
