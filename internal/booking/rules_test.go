package booking

import (
	"testing"
	"time"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("failed to parse day %q: %v", value, err)
	}
	return parsed
}

func TestDateOfNormalizesToUTCMidnight(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+9", 9*60*60)
	stamp := time.Date(2024, time.March, 14, 3, 30, 0, 0, loc)

	got := DateOf(stamp)
	want := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOf = %v, want %v", got, want)
	}
}

func TestDedupeDates(t *testing.T) {
	t.Parallel()

	d1 := day(t, "2024-03-14")
	d2 := day(t, "2024-03-15")

	got := DedupeDates([]time.Time{d2, d1, d1.Add(10 * time.Hour), d2})
	if len(got) != 2 {
		t.Fatalf("expected 2 deduplicated dates, got %d", len(got))
	}
	if !got[0].Equal(d1) || !got[1].Equal(d2) {
		t.Fatalf("expected ascending [%v %v], got %v", d1, d2, got)
	}
}

func TestInPastAllowsToday(t *testing.T) {
	t.Parallel()

	today := day(t, "2024-03-14")

	if InPast(today, today) {
		t.Fatal("today must not count as past")
	}
	if !InPast(today.AddDate(0, 0, -1), today) {
		t.Fatal("yesterday must count as past")
	}
}

func TestBeyondHorizonBoundary(t *testing.T) {
	t.Parallel()

	today := day(t, "2024-03-14")

	if BeyondHorizon(today.AddDate(0, 0, 60), today, 60) {
		t.Fatal("day at the horizon must be bookable")
	}
	if !BeyondHorizon(today.AddDate(0, 0, 61), today, 60) {
		t.Fatal("day past the horizon must be rejected")
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	target := day(t, "2024-03-14")
	existing := []Reservation{
		{ID: "res-1", DeskID: "desk-1", UserID: "user-1", Day: target, Status: StatusActive},
		{ID: "res-2", DeskID: "desk-2", UserID: "user-2", Day: target, Status: StatusCancelled},
		{ID: "res-3", DeskID: "desk-3", UserID: "user-3", Day: target.AddDate(0, 0, 1), Status: StatusActive},
	}

	tests := []struct {
		name      string
		candidate Reservation
		exclude   string
		wantTypes []ConflictType
	}{
		{
			name:      "desk conflict on same day",
			candidate: Reservation{DeskID: "desk-1", UserID: "user-9", Day: target},
			wantTypes: []ConflictType{ConflictTypeDesk},
		},
		{
			name:      "user conflict on same day",
			candidate: Reservation{DeskID: "desk-9", UserID: "user-1", Day: target},
			wantTypes: []ConflictType{ConflictTypeUser},
		},
		{
			name:      "cancelled rows never conflict",
			candidate: Reservation{DeskID: "desk-2", UserID: "user-2", Day: target},
			wantTypes: nil,
		},
		{
			name:      "different day does not conflict",
			candidate: Reservation{DeskID: "desk-1", UserID: "user-1", Day: target.AddDate(0, 0, 2)},
			wantTypes: nil,
		},
		{
			name:      "excluded row is ignored",
			candidate: Reservation{DeskID: "desk-1", UserID: "user-9", Day: target},
			exclude:   "res-1",
			wantTypes: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DetectConflicts(existing, tt.candidate, tt.exclude)
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("expected %d conflicts, got %d: %v", len(tt.wantTypes), len(got), got)
			}
			for i, want := range tt.wantTypes {
				if got[i].Type != want {
					t.Fatalf("conflict %d type = %s, want %s", i, got[i].Type, want)
				}
			}
		})
	}
}

func TestEffectiveStatusTreatsExpiredActiveAsCompleted(t *testing.T) {
	t.Parallel()

	today := day(t, "2024-03-14")

	expired := Reservation{Day: today.AddDate(0, 0, -1), Status: StatusActive}
	if got := EffectiveStatus(expired, today); got != StatusCompleted {
		t.Fatalf("expired active reservation: effective status = %s, want %s", got, StatusCompleted)
	}

	upcoming := Reservation{Day: today.AddDate(0, 0, 1), Status: StatusActive}
	if got := EffectiveStatus(upcoming, today); got != StatusActive {
		t.Fatalf("upcoming reservation: effective status = %s, want %s", got, StatusActive)
	}

	cancelled := Reservation{Day: today.AddDate(0, 0, -1), Status: StatusCancelled}
	if got := EffectiveStatus(cancelled, today); got != StatusCancelled {
		t.Fatalf("cancelled reservation: effective status = %s, want %s", got, StatusCancelled)
	}
}

func TestQuotaBoundaries(t *testing.T) {
	t.Parallel()

	if ExceedsRequestSize(7, DefaultMaxDatesPerRequest) {
		t.Fatal("seven dates must be allowed")
	}
	if !ExceedsRequestSize(8, DefaultMaxDatesPerRequest) {
		t.Fatal("eight dates must be rejected")
	}

	if ExceedsActiveLimit(25, 5, DefaultMaxActivePerUser) {
		t.Fatal("reaching the active limit exactly must be allowed")
	}
	if !ExceedsActiveLimit(28, 5, DefaultMaxActivePerUser) {
		t.Fatal("exceeding the active limit must be rejected")
	}
}
