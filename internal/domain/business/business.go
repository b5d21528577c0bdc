// Package business holds catalog business details and opening-hours evaluation.
package business

import (
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // business timezones must resolve in minimal containers
)

// Business holds the details joined onto catalog candidates.
type Business struct {
	ID          string
	Name        string
	Description string
	Images      []string
	// Hours maps lowercase weekday ("monday") to "HH:MM-HH:MM" ranges, comma separated.
	// "closed" or an empty value means closed all day.
	Hours       map[string]string
	Timezone    string
	OpenNow     *bool
	Phone       string
	Website     string
	Email       string
	Verified    bool
	Rating      float64
	ReviewCount int
}

// Details is a business as returned by the details join.
// Found is false when no record exists for the id.
type Details struct {
	Business
	Found bool
}

// IsOpen reports whether the business is open at now.
// An explicit OpenNow flag wins, then weekly hours in the business timezone.
// A business that publishes neither is treated as open.
func (b *Business) IsOpen(now time.Time) bool {
	if b.OpenNow != nil {
		return *b.OpenNow
	}
	if len(b.Hours) == 0 {
		return true
	}
	return OpenAt(b.Hours, now.In(b.location()))
}

func (b *Business) location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OpenAt evaluates weekly hours at local time t. Ranges whose end is not after
// their start run past midnight into the next day.
func OpenAt(hours map[string]string, t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	today := strings.ToLower(t.Weekday().String())
	yesterday := strings.ToLower(t.AddDate(0, 0, -1).Weekday().String())

	for _, r := range parseRanges(hours[today]) {
		if r.overnight() {
			if minute >= r.start {
				return true
			}
			continue
		}
		if minute >= r.start && minute < r.end {
			return true
		}
	}
	for _, r := range parseRanges(hours[yesterday]) {
		if r.overnight() && minute < r.end {
			return true
		}
	}
	return false
}

type span struct {
	start, end int
}

func (s span) overnight() bool { return s.end <= s.start }

func parseRanges(v string) []span {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "closed" {
		return nil
	}
	if v == "24h" || v == "open 24 hours" {
		return []span{{start: 0, end: 24 * 60}}
	}
	var out []span
	for _, part := range strings.Split(v, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(part), "-")
		if !ok {
			continue
		}
		start, okStart := parseClock(from)
		end, okEnd := parseClock(to)
		if !okStart || !okEnd {
			continue
		}
		out = append(out, span{start: start, end: end})
	}
	return out
}

// parseClock reads "HH:MM" into minutes after midnight. "24:00" is allowed as an end.
func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, false
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 24 {
		return 0, false
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 || (hh == 24 && mm != 0) {
		return 0, false
	}
	return hh*60 + mm, true
}
