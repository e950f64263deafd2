package parser

import (
	"testing"
	"time"
)

func TestStrftimeToLayout(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"%Y-%m-%d %H:%M:%S", "2006-01-02 15:04:05"},
		{"%Y %m%d %H:%M:%S", "2006 0102 15:04:05"},
		{"%d/%b/%Y", "02/Jan/2006"},
		{"%H:%M:%S%.f", "15:04:05"},
		{"%H:%M:%S.%f", "15:04:05."},
		{"100%%", "100%"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := strftimeToLayout(tc.in)
			if err != nil {
				t.Fatalf("strftimeToLayout(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("strftimeToLayout(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStrftimeToLayoutInvalid(t *testing.T) {
	for _, in := range []string{"%Q", "trailing%"} {
		if _, err := strftimeToLayout(in); err == nil {
			t.Fatalf("strftimeToLayout(%q) should fail", in)
		}
	}
}

func TestParseRFC3339Variants(t *testing.T) {
	cases := []string{
		"2020-01-02T03:04:05Z",
		"2020-01-02T03:04:05.123Z",
		"2020-01-02T03:04:05-04:00",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			if _, ok := parseRFC3339(in); !ok {
				t.Fatalf("parseRFC3339(%q) failed", in)
			}
		})
	}

	if _, ok := parseRFC3339("not a date"); ok {
		t.Fatal("parseRFC3339 accepted garbage")
	}
	if _, ok := parseRFC3339("2020-01-02T03:04:05"); ok {
		t.Fatal("parseRFC3339 should require a zone suffix")
	}
}

func TestExtractTimestampSyslog(t *testing.T) {
	ts, ok := extractTimestamp("Jan  2 03:04:05 host daemon[1]: hi")
	if !ok {
		t.Fatal("expected a syslog timestamp")
	}
	want := time.Date(time.Now().UTC().Year(), 1, 2, 3, 4, 5, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("timestamp = %v, want %v (current year supplied)", ts, want)
	}
}
