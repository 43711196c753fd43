package forecast

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

var t0 = time.Date(2026, time.January, 10, 18, 0, 0, 0, time.UTC)

func series(points ...Point) Series {
	return Series(points)
}

func at(offset time.Duration, temp float64) Point {
	return Point{Timestamp: t0.Add(offset), Temperature: temp}
}

func TestAnalyzeEmptySeries(t *testing.T) {
	_, err := Analyze(nil, 0, 6*time.Hour)
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestAnalyzeWarningWithinWindow(t *testing.T) {
	s := series(at(0, 2), at(3*time.Hour, -1), at(9*time.Hour, -3))

	a, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.BelowFreezing {
		t.Error("expected isBelowFreezing=false")
	}
	if !a.HasFreeze || !a.FirstFreezeTime.Equal(t0.Add(3*time.Hour)) {
		t.Errorf("expected first freeze at t0+3h, got %v (hasFreeze=%v)", a.FirstFreezeTime, a.HasFreeze)
	}
	if a.FirstFreezeTemp != -1 {
		t.Errorf("expected first freeze temp -1, got %v", a.FirstFreezeTemp)
	}
	if !a.WarningDue {
		t.Error("expected willFreezeWithinWarningWindow=true")
	}
	if a.AllClear {
		t.Error("expected allClear=false")
	}
}

func TestAnalyzeFreezeBeyondWindow(t *testing.T) {
	s := series(at(0, 2), at(9*time.Hour, -3))

	a, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.WarningDue {
		t.Error("freeze 9h out with a 6h window must not be warning-eligible")
	}
	if a.AllClear {
		t.Error("a future freeze point means not all clear")
	}
}

func TestAnalyzeBelowFreezingNow(t *testing.T) {
	s := series(at(0, -2), at(time.Hour, -3), at(2*time.Hour, 1))

	a, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.BelowFreezing {
		t.Error("expected isBelowFreezing=true")
	}
	if a.AllClear {
		t.Error("below freezing now is never all clear")
	}
	// The current reading is itself the first freeze point; a warning
	// about the future would be wrong.
	if a.WarningDue {
		t.Error("expected willFreezeWithinWarningWindow=false when already freezing")
	}
	if a.FreezeExpectedToday {
		t.Error("freezeExpectedToday only covers freezes that have not started")
	}
}

func TestAnalyzeThresholdIsInclusive(t *testing.T) {
	s := series(at(0, 0))

	a, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.BelowFreezing {
		t.Error("a reading equal to the threshold counts as freezing")
	}
}

func TestAnalyzeAllClear(t *testing.T) {
	s := series(at(0, 5), at(3*time.Hour, 4), at(6*time.Hour, 6))

	a, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.AllClear {
		t.Error("expected allClear=true")
	}
	if a.BelowFreezing || a.WarningDue || a.FreezeExpectedToday || a.HasFreeze {
		t.Errorf("all-clear analysis carries no freeze flags: %+v", a)
	}
}

func TestAnalyzeFreezeExpectedToday(t *testing.T) {
	// t0 is 18:00 UTC; a freeze at +3h lands before the next midnight, a
	// freeze at +9h lands after it.
	today := series(at(0, 2), at(3*time.Hour, -1))
	tomorrow := series(at(0, 2), at(9*time.Hour, -1))

	a, err := Analyze(today, 0, 12*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.FreezeExpectedToday {
		t.Error("freeze at 21:00 should be expected today")
	}

	a, err = Analyze(tomorrow, 0, 12*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.FreezeExpectedToday {
		t.Error("freeze at 03:00 next day is not today")
	}
}

func TestAnalyzeSingleBelowThresholdPoint(t *testing.T) {
	a, err := Analyze(series(at(0, -4)), 0, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.BelowFreezing || !a.HasFreeze {
		t.Errorf("single-point series still runs the freeze lookup: %+v", a)
	}
}

func TestAnalyzeSortInvariance(t *testing.T) {
	sorted := series(at(0, 3), at(time.Hour, 1), at(2*time.Hour, -1), at(3*time.Hour, -2), at(4*time.Hour, 0))

	want, err := Analyze(sorted, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make(Series, len(sorted))
		copy(shuffled, sorted)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Analyze(shuffled, 0, 6*time.Hour)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("shuffled analysis differs:\nwant %+v\ngot  %+v", want, got)
		}
	}
}

func TestAnalyzeDoesNotMutateInput(t *testing.T) {
	unsorted := series(at(2*time.Hour, -1), at(0, 3), at(time.Hour, 1))
	snapshot := make(Series, len(unsorted))
	copy(snapshot, unsorted)

	if _, err := Analyze(unsorted, 0, 6*time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(snapshot, unsorted) {
		t.Error("Analyze mutated its input series")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	s := series(at(0, 1), at(time.Hour, -1))

	first, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Analyze(s, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\n%+v\n%+v", first, second)
	}
}
