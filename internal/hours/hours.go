// Package hours turns a venue's free-text weekly opening hours into
// per-weekday open spans. It is deliberately lenient: a weekday whose text it
// cannot read is reported as open all day rather than closed.
package hours

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FullDay is the number of minutes in a day.
const FullDay = 24 * 60

// Span is an opening interval in minutes after midnight, Close exclusive.
type Span struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Contains reports whether minute falls inside the span.
func (s Span) Contains(minute int) bool { return minute >= s.Open && minute < s.Close }

type dayState int

const (
	stateUnknown dayState = iota
	stateClosed
	stateOpen
)

type daySchedule struct {
	state dayState
	spans []Span
}

// Week is a parsed weekly schedule indexed by time.Weekday.
type Week struct {
	days [7]daySchedule
}

// Parse reads a weekly hours table. Keys name one day ("monday", "tue"), a
// day range ("tue-sun", "mon to fri"), a list ("sat, sun") or a group
// ("daily", "weekdays", "weekends"). Narrower keys win over wider ones, so
// {"daily": "10-5", "monday": "closed"} closes Mondays. Days the table does
// not mention are unknown.
func Parse(raw map[string]string) Week {
	type entry struct {
		key   string
		days  []time.Weekday
		value string
	}
	entries := make([]entry, 0, len(raw))
	for k, v := range raw {
		if days := parseDays(k); len(days) > 0 {
			entries = append(entries, entry{key: k, days: days, value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].days) != len(entries[j].days) {
			return len(entries[i].days) > len(entries[j].days)
		}
		return entries[i].key < entries[j].key
	})
	var w Week
	for _, e := range entries {
		sched := parseValue(e.value)
		for _, d := range e.days {
			w.days[d] = sched
		}
	}
	return w
}

// Known reports whether the text for wd was understood.
func (w Week) Known(wd time.Weekday) bool { return w.days[wd].state != stateUnknown }

// OpenOn reports whether the venue opens at all on wd.
func (w Week) OpenOn(wd time.Weekday) bool { return w.days[wd].state != stateClosed }

// OpenAt reports whether the venue is open at minute on wd.
func (w Week) OpenAt(wd time.Weekday, minute int) bool {
	for _, s := range w.Spans(wd) {
		if s.Contains(minute) {
			return true
		}
	}
	return false
}

// Spans returns the opening spans of wd in order. An unknown day is a single
// all-day span; a closed day has none.
func (w Week) Spans(wd time.Weekday) []Span {
	d := w.days[wd]
	switch d.state {
	case stateClosed:
		return nil
	case stateUnknown:
		return []Span{{Open: 0, Close: FullDay}}
	}
	return d.spans
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func dayOf(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if len(s) < 3 {
		return 0, false
	}
	d, ok := dayNames[s[:3]]
	return d, ok
}

func parseDays(key string) []time.Weekday {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "daily", "everyday", "every day", "all":
		return []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
	case "weekdays":
		return []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
	case "weekends", "weekend":
		return []time.Weekday{time.Saturday, time.Sunday}
	}
	var out []time.Weekday
	for _, part := range strings.Split(k, ",") {
		from, to, isRange := splitRange(part)
		if !isRange {
			if d, ok := dayOf(part); ok {
				out = append(out, d)
			}
			continue
		}
		a, ok1 := dayOf(from)
		b, ok2 := dayOf(to)
		if !ok1 || !ok2 {
			continue
		}
		for d := a; ; d = (d + 1) % 7 {
			out = append(out, d)
			if d == b {
				break
			}
		}
	}
	return out
}

func splitRange(s string) (string, string, bool) {
	for _, sep := range []string{" to ", "–", "—", "-"} {
		if a, b, ok := strings.Cut(s, sep); ok {
			return a, b, true
		}
	}
	return s, "", false
}

func parseValue(v string) daySchedule {
	s := strings.ToLower(strings.TrimSpace(v))
	switch {
	case s == "":
		return daySchedule{}
	case strings.Contains(s, "closed"):
		return daySchedule{state: stateClosed}
	case strings.Contains(s, "24 hours") || strings.Contains(s, "open 24"):
		return daySchedule{state: stateOpen, spans: []Span{{Open: 0, Close: FullDay}}}
	}
	var spans []Span
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		for _, chunk := range strings.Split(part, " and ") {
			from, to, ok := splitRange(chunk)
			if !ok {
				return daySchedule{}
			}
			sp, ok := parseSpan(from, to)
			if !ok {
				return daySchedule{}
			}
			spans = append(spans, sp)
		}
	}
	if len(spans) == 0 {
		return daySchedule{}
	}
	return daySchedule{state: stateOpen, spans: spans}
}

var clockRe = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)?$`)

type clock struct {
	minute   int
	meridiem string
}

func parseClock(s string) (clock, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "noon":
		return clock{minute: 12 * 60, meridiem: "pm"}, true
	case "midnight":
		return clock{minute: FullDay, meridiem: "am"}, true
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return clock{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mins := 0
	if m[2] != "" {
		mins, _ = strconv.Atoi(m[2])
	}
	if h > 24 || mins > 59 {
		return clock{}, false
	}
	mer := strings.ReplaceAll(m[3], ".", "")
	switch mer {
	case "am":
		if h == 12 {
			h = 0
		}
	case "pm":
		if h < 12 {
			h += 12
		}
	}
	return clock{minute: h*60 + mins, meridiem: mer}, true
}

func parseSpan(from, to string) (Span, bool) {
	a, ok1 := parseClock(from)
	b, ok2 := parseClock(to)
	if !ok1 || !ok2 {
		return Span{}, false
	}
	// "10-5pm": a bare start borrows the end's meridiem when that makes sense.
	if a.meridiem == "" && b.meridiem == "pm" && a.minute+12*60 < b.minute {
		a.minute += 12 * 60
	}
	// "10:00-5:00": a bare afternoon close.
	if b.meridiem == "" && b.minute <= a.minute && b.minute < 12*60 {
		b.minute += 12 * 60
	}
	if b.minute == 0 {
		b.minute = FullDay
	}
	if b.minute <= a.minute {
		// Past-midnight closing is clamped to the end of the day.
		b.minute = FullDay
	}
	if b.minute > FullDay {
		b.minute = FullDay
	}
	return Span{Open: a.minute, Close: b.minute}, true
}
