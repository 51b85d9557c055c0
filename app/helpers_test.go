package app

import (
	"testing"
	"time"
)

func TestLocalPart(t *testing.T) {
	cases := map[string]string{
		"ann@school.test": "ann",
		"no-at-sign":      "no-at-sign",
		"a@b@c":           "a",
	}
	for email, want := range cases {
		if got := localPart(email); got != want {
			t.Fatalf("localPart(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseID("42")
		if err != nil || got != 42 {
			t.Fatalf("parseID valid = (%d,%v), want (42,nil)", got, err)
		}
	})
	t.Run("zero", func(t *testing.T) {
		if _, err := parseID("0"); err == nil {
			t.Fatalf("parseID should reject zero")
		}
	})
	t.Run("garbage", func(t *testing.T) {
		if _, err := parseID("abc"); err == nil {
			t.Fatalf("parseID should reject non-numeric input")
		}
	})
}

func TestTodayUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	stamp := time.Date(2024, time.November, 22, 23, 30, 0, 0, loc)
	if got := todayUTC(stamp); got != "2024-11-23" {
		t.Fatalf("todayUTC = %q, want 2024-11-23", got)
	}
}
