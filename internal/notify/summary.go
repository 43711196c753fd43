package notify

import (
	"sort"
	"time"
)

// SummaryInput pairs one location's identity with its morning analysis
// outcome.
type SummaryInput struct {
	OwnerID      string
	LocationID   string
	LocationName string
	FreezeTime   time.Time
	FreezeTemp   float64
	Expected     bool // freezeExpectedToday from the analysis
}

// SummaryEntry is one listed location inside a morning summary.
type SummaryEntry struct {
	LocationID   string    `json:"locationId"`
	LocationName string    `json:"locationName"`
	FreezeTime   time.Time `json:"freezeTime"`
	FreezeTemp   float64   `json:"freezeTempC"`
}

// Summary is the once-daily per-owner digest of locations expecting a
// freeze before the day is out.
type Summary struct {
	OwnerID string         `json:"ownerId"`
	Entries []SummaryEntry `json:"entries"`
}

// BuildSummaries groups freeze-expected inputs by owner. Owners with no
// affected location get no summary. Output order is deterministic: owners
// sorted lexically, entries sorted by location name.
func BuildSummaries(inputs []SummaryInput) []Summary {
	byOwner := make(map[string][]SummaryEntry)
	for _, in := range inputs {
		if !in.Expected {
			continue
		}
		byOwner[in.OwnerID] = append(byOwner[in.OwnerID], SummaryEntry{
			LocationID:   in.LocationID,
			LocationName: in.LocationName,
			FreezeTime:   in.FreezeTime,
			FreezeTemp:   in.FreezeTemp,
		})
	}

	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	summaries := make([]Summary, 0, len(owners))
	for _, owner := range owners {
		entries := byOwner[owner]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].LocationName < entries[j].LocationName
		})
		summaries = append(summaries, Summary{OwnerID: owner, Entries: entries})
	}
	return summaries
}
