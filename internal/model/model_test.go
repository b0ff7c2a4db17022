package model

import (
	"errors"
	"testing"
	"time"
)

func TestHotspotNormalizeTimesDerivesNextIncome(t *testing.T) {
	h := Hotspot{ID: "h1", LastIncomeTime: "2024-01-01T00:00:00Z"}
	h.NormalizeTimes()
	if h.NextIncomeTime != "2024-01-01T01:00:00Z" {
		t.Fatalf("next income = %q, want 2024-01-01T01:00:00Z", h.NextIncomeTime)
	}

	again := h
	again.NormalizeTimes()
	if again != h {
		t.Fatalf("second normalization changed record: %+v vs %+v", again, h)
	}
}

func TestHotspotNormalizeTimesKeepsServerNextIncome(t *testing.T) {
	h := Hotspot{
		LastIncomeTime: "2024-01-01T02:00:00+02:00",
		NextIncomeTime: "2024-01-01T00:30:00Z",
	}
	h.NormalizeTimes()
	if h.LastIncomeTime != "2024-01-01T00:00:00Z" {
		t.Fatalf("last income = %q", h.LastIncomeTime)
	}
	if h.NextIncomeTime != "2024-01-01T00:30:00Z" {
		t.Fatalf("next income = %q", h.NextIncomeTime)
	}
}

func TestHotspotNormalizeTimesWithoutLastIncome(t *testing.T) {
	h := Hotspot{}
	h.NormalizeTimes()
	if h.NextIncomeTime != "" {
		t.Fatalf("next income = %q, want empty", h.NextIncomeTime)
	}
}

func TestCanonicalTimeLeavesGarbage(t *testing.T) {
	if got := CanonicalTime("yesterday"); got != "yesterday" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, CountdownNow},
		{-time.Second, CountdownNow},
		{500 * time.Millisecond, CountdownNow},
		{1500 * time.Millisecond, "1s"},
		{42 * time.Second, "42s"},
		{2*time.Minute + 3*time.Second, "2m 3s"},
		{time.Hour, "1h 0m 0s"},
		{26*time.Hour + 5*time.Second, "26h 0m 5s"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsSoon(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !IsSoon(now.Add(5*time.Minute), now) {
		t.Error("5m should be soon")
	}
	if IsSoon(now.Add(5*time.Minute+time.Second), now) {
		t.Error("5m1s should not be soon")
	}
	if IsSoon(now.Add(-time.Second), now) {
		t.Error("past target should not be soon")
	}
	if !IsSoon(now, now) {
		t.Error("target now should be soon")
	}
}

func TestOperationStatusTransition(t *testing.T) {
	for _, to := range []OperationStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if err := StatusInProgress.Transition(to); err != nil {
			t.Errorf("in_progress -> %s: %v", to, err)
		}
	}
	if err := StatusInProgress.Transition(StatusInProgress); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("in_progress -> in_progress: %v", err)
	}
	for _, from := range []OperationStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if err := from.Transition(StatusCompleted); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s -> completed should fail, got %v", from, err)
		}
	}
}

func TestTravelResponseDelta(t *testing.T) {
	ok := TravelResponse{Success: true, TravelCost: 500, HeatReduction: 3}
	if d := ok.Delta(); d.Money != -500 || d.Heat != -3 {
		t.Errorf("success delta = %+v", d)
	}
	caught := TravelResponse{CaughtByPolice: true, FineAmount: 200, HeatIncrease: 5, TravelCost: 500}
	if d := caught.Delta(); d.Money != -200 || d.Heat != 5 {
		t.Errorf("caught delta = %+v", d)
	}
}

func TestOperationResultDelta(t *testing.T) {
	r := OperationResult{MoneyGained: 1000, CrewLost: 2, HeatReduced: 4, HeatIncreased: 1}
	d := r.Delta()
	if d.Money != 1000 || d.Crew != -2 || d.Heat != -3 {
		t.Errorf("delta = %+v", d)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := map[int64]string{0: "$0", 950: "$950", 1500: "$1,500", 2500000: "$2,500,000", -1200: "-$1,200"}
	for in, want := range cases {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%d) = %q, want %q", in, got, want)
		}
	}
}
