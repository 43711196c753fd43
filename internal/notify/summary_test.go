package notify

import (
	"testing"
	"time"
)

func TestBuildSummariesGroupsByOwner(t *testing.T) {
	freezeAt := time.Date(2026, time.January, 11, 5, 0, 0, 0, time.UTC)
	inputs := []SummaryInput{
		{OwnerID: "bob", LocationID: "l3", LocationName: "Orchard", FreezeTime: freezeAt, FreezeTemp: -2, Expected: true},
		{OwnerID: "alice", LocationID: "l1", LocationName: "Vineyard", FreezeTime: freezeAt, FreezeTemp: -1, Expected: true},
		{OwnerID: "alice", LocationID: "l2", LocationName: "Garden", FreezeTime: freezeAt, FreezeTemp: -3, Expected: true},
		{OwnerID: "alice", LocationID: "l4", LocationName: "Rooftop", Expected: false},
	}

	summaries := BuildSummaries(inputs)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 owners, got %d", len(summaries))
	}

	// Owners sorted lexically.
	if summaries[0].OwnerID != "alice" || summaries[1].OwnerID != "bob" {
		t.Errorf("owner order wrong: %s, %s", summaries[0].OwnerID, summaries[1].OwnerID)
	}

	alice := summaries[0]
	if len(alice.Entries) != 2 {
		t.Fatalf("alice has 2 affected locations, got %d", len(alice.Entries))
	}
	// Entries sorted by location name; the not-expected one excluded.
	if alice.Entries[0].LocationName != "Garden" || alice.Entries[1].LocationName != "Vineyard" {
		t.Errorf("entry order wrong: %+v", alice.Entries)
	}
}

func TestBuildSummariesNoneExpected(t *testing.T) {
	inputs := []SummaryInput{
		{OwnerID: "alice", LocationID: "l1", LocationName: "Vineyard", Expected: false},
	}
	if got := BuildSummaries(inputs); len(got) != 0 {
		t.Errorf("no expected freezes means no summaries, got %+v", got)
	}
}
