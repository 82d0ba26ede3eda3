package feed

import (
	"testing"
	"time"
)

var sentinel = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseDateRFC822(t *testing.T) {
	got := ParseDate("Mon, 02 Jan 2006 15:04:05 -0700", sentinel)
	if got.UTC() != time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC) {
		t.Errorf("unexpected RFC 822 parse: %v", got)
	}

	got = ParseDate("Mon, 02 Jan 2006 15:04:05 GMT", sentinel)
	if got.Year() != 2006 || got.Month() != time.January {
		t.Errorf("unexpected RFC 1123 parse: %v", got)
	}
}

func TestParseDateISO8601(t *testing.T) {
	got := ParseDate("2023-06-07T12:30:00Z", sentinel)
	want := time.Date(2023, 6, 7, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateEmbeddedDay(t *testing.T) {
	got := ParseDate("published around 2023-05-01, give or take", sentinel)
	want := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateGarbageFallsBackToNow(t *testing.T) {
	if got := ParseDate("definitely not a date", sentinel); !got.Equal(sentinel) {
		t.Errorf("expected wall-clock fallback, got %v", got)
	}
}

func TestParseDateEmpty(t *testing.T) {
	if got := ParseDate("   ", sentinel); !got.Equal(sentinel) {
		t.Errorf("expected wall-clock fallback, got %v", got)
	}
}

// Date parsing must be total: no input may panic or yield the zero time.
func TestParseDateNeverZero(t *testing.T) {
	inputs := []string{
		"", "Z", "0000", "32 Foo 2023", "2023-13-45", "🗞",
		"Tue, 30 Feb 2021 00:00:00 +0000",
	}
	for _, in := range inputs {
		if got := ParseDate(in, sentinel); got.IsZero() {
			t.Errorf("ParseDate(%q) returned zero time", in)
		}
	}
}
