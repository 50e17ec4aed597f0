package model

import (
	"testing"
	"time"
)

func date(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecordCompletion_FirstEver(t *testing.T) {
	s := &StreakRecord{HabitID: "h1"}

	s.RecordCompletion(date("2026-03-01"))

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", s.CurrentStreak)
	}
	if s.LongestStreak != 1 {
		t.Errorf("LongestStreak = %d, want 1", s.LongestStreak)
	}
	if s.LastCompletedDate == nil || !s.LastCompletedDate.Equal(date("2026-03-01")) {
		t.Errorf("LastCompletedDate = %v, want 2026-03-01", s.LastCompletedDate)
	}
}

func TestRecordCompletion_ConsecutiveDaysExtend(t *testing.T) {
	s := &StreakRecord{HabitID: "h1"}

	s.RecordCompletion(date("2026-03-01"))
	s.RecordCompletion(date("2026-03-02"))
	s.RecordCompletion(date("2026-03-03"))

	if s.CurrentStreak != 3 {
		t.Errorf("CurrentStreak = %d, want 3", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", s.LongestStreak)
	}
}

func TestRecordCompletion_SameDayIsIdempotent(t *testing.T) {
	s := &StreakRecord{HabitID: "h1"}

	s.RecordCompletion(date("2026-03-01"))
	s.RecordCompletion(date("2026-03-01"))

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after duplicate same-day completion", s.CurrentStreak)
	}
}

func TestRecordCompletion_GapResetsCurrentKeepsLongest(t *testing.T) {
	s := &StreakRecord{HabitID: "h1"}

	s.RecordCompletion(date("2026-03-01"))
	s.RecordCompletion(date("2026-03-02"))
	s.RecordCompletion(date("2026-03-03"))
	// Two-day gap
	s.RecordCompletion(date("2026-03-06"))

	if s.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1 after gap", s.CurrentStreak)
	}
	if s.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3 preserved across reset", s.LongestStreak)
	}
}

func TestDateRoundTrips(t *testing.T) {
	d := NewDate(time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC))

	if d.String() != "2026-08-30" {
		t.Errorf("String() = %q, want 2026-08-30", d.String())
	}

	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"2026-08-30"` {
		t.Errorf("MarshalJSON = %s", b)
	}

	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round-trip mismatch: %v != %v", back, d)
	}

	var scanned Date
	if err := scanned.Scan("2026-08-30"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !scanned.Equal(d) {
		t.Errorf("Scan mismatch: %v != %v", scanned, d)
	}
}

func TestDateArithmetic(t *testing.T) {
	d := date("2026-03-01")

	if got := d.AddDays(7); !got.Equal(date("2026-03-08")) {
		t.Errorf("AddDays(7) = %v, want 2026-03-08", got)
	}
	if got := d.DaysUntil(date("2026-03-08")); got != 7 {
		t.Errorf("DaysUntil = %d, want 7", got)
	}
	if got := d.DaysUntil(date("2026-02-27")); got != -2 {
		t.Errorf("DaysUntil past = %d, want -2", got)
	}
}
