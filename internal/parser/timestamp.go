package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Cheap pre-check patterns so we only pay for time.Parse on plausible input.
// Structured logs overwhelmingly use some iso8601 variant, so that check
// runs first.
var (
	rfc3339Re = regexp.MustCompile(
		`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})`)
	rfc2822Re = regexp.MustCompile(
		`\w{3}, \d{1,2} \w{3} \d{4} \d{2}:\d{2}:\d{2} (?:UTC|GMT|[+-]\d{4})`)
)

// parseRFC3339 parses s when it is a simple RFC-3339 datetime, normalized
// to UTC.
func parseRFC3339(s string) (time.Time, bool) {
	if !rfc3339Re.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, strings.Replace(s, ",", ".", 1))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parseRFC2822 parses s when it is a simple RFC-2822 datetime, normalized
// to UTC.
func parseRFC2822(s string) (time.Time, bool) {
	if !rfc2822Re.MatchString(s) {
		return time.Time{}, false
	}
	// RFC-2822 allows a one- or two-digit day, so the day verb is "2"
	for _, layout := range []string{
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// freeformPattern ties an extraction regex to the layout that parses it.
// Layouts omit fractional seconds; time.Parse accepts them after the
// seconds field regardless.
type freeformPattern struct {
	re     *regexp.Regexp
	layout string

	// the matched text carries no year; supply the current UTC year
	yearless bool
}

var freeformPatterns = []freeformPattern{
	{re: regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`), layout: ""},
	{re: regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`), layout: "2006-01-02 15:04:05"},
	{re: regexp.MustCompile(`\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}`), layout: "2006/01/02 15:04:05"},
	{re: regexp.MustCompile(`\d{2}/(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)/\d{4}:\d{2}:\d{2}:\d{2} [+-]\d{4}`), layout: "02/Jan/2006:15:04:05 -0700"},
	{re: regexp.MustCompile(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) {1,2}\d{1,2} \d{2}:\d{2}:\d{2}`), layout: "Jan _2 15:04:05", yearless: true},
}

// versionRe matches version-like triples so 1.2.3 never becomes a
// timestamp.
var versionRe = regexp.MustCompile(`^\d+(?:\.\d+){2,}$`)

// saneYear bounds accepted years; anything outside is a false positive.
func saneYear(t time.Time) bool {
	return t.Year() >= 1970 && t.Year() <= 2100
}

// extractTimestamp opportunistically finds a timestamp inside an arbitrary
// line. It is deliberately conservative: pure integers, version triples and
// implausible years are rejected rather than guessed at.
func extractTimestamp(line string) (time.Time, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || versionRe.MatchString(trimmed) {
		return time.Time{}, false
	}

	for _, p := range freeformPatterns {
		match := p.re.FindString(line)
		if match == "" {
			continue
		}
		if versionRe.MatchString(match) {
			continue
		}

		var t time.Time
		if p.layout == "" {
			parsed, ok := parseRFC3339(match)
			if !ok {
				// no zone suffix; retry as a naive local-format UTC time
				parsed2, err := time.Parse("2006-01-02T15:04:05", match)
				if err != nil {
					continue
				}
				parsed = parsed2
			}
			t = parsed
		} else {
			parsed, err := time.Parse(p.layout, match)
			if err != nil {
				continue
			}
			t = parsed
		}

		if p.yearless {
			now := time.Now().UTC()
			t = time.Date(now.Year(), t.Month(), t.Day(),
				t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		}
		t = t.UTC()
		if !saneYear(t) {
			continue
		}
		return t, true
	}

	return time.Time{}, false
}

// strftimeConversions maps the chrono/strftime verbs accepted in regex
// config files onto Go reference-time fragments.
var strftimeConversions = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'j': "002",
	'%': "%",
}

// strftimeToLayout converts a strftime format string to a Go time layout.
// Fractional-second verbs are dropped: time.Parse picks up fractions after
// the seconds field on its own.
func strftimeToLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(format) {
			return "", fmt.Errorf("trailing %% in datetime format %q", format)
		}
		// chrono spells sub-second precision as %.f / %.3f etc.
		if format[i] == '.' {
			for i < len(format) && format[i] != 'f' {
				i++
			}
			continue
		}
		if format[i] == 'f' {
			continue
		}
		frag, ok := strftimeConversions[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported datetime verb %%%c in %q", format[i], format)
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}
