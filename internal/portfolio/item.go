// Package portfolio holds the session's appraisal history, newest first.
package portfolio

import (
	"time"

	"glassngold/internal/appraisal"
)

// SampleID is the ID of the hand-authored seed item.
const SampleID = "sample-signature"

// SampleImageURL references the embedded sample photo served under /assets/.
const SampleImageURL = "/assets/sample.svg"

// HistoryItem is one committed appraisal. It is never mutated after commit.
type HistoryItem struct {
	ID        string           `json:"id"`
	ImageURL  string           `json:"imageUrl"`
	Result    appraisal.Result `json:"result"`
	Timestamp int64            `json:"timestamp"` // Unix milliseconds
}

// Time returns the item timestamp as a time.Time.
func (h HistoryItem) Time() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Clone returns a deep copy of the item.
func (h HistoryItem) Clone() HistoryItem {
	h.Result = h.Result.Clone()
	return h
}

// Sample returns the seed listing shown before any upload.
func Sample(now time.Time) HistoryItem {
	return HistoryItem{
		ID:       SampleID,
		ImageURL: SampleImageURL,
		Result: appraisal.Result{
			Title: "THE ARCHED ATRIUM VOID",
			ListingDescription: "A masterclass in 'Total Transparency' living. This heritage-listed gem has been " +
				"radically reimagined to remove the traditional boundaries between the domestic and the urban. " +
				"Featuring signature 19th-century triple arches that now serve as a gateway to the infinite, and a " +
				"ground-floor mineral installation of curated limestone. It's not a collapse, habibi. It's an opening.",
			RentPrice: "$12,000 FRESH",
			Amenities: []string{
				"Neoclassical Triple-Arch Frame",
				"100% High-Velocity Ventilation",
				"Ground-Level Mineral Sculptures",
				"Raw Urban Fiber-Optic Integration",
			},
			BroQuote: "Bro, do you see those arches? That's Phoenician-meets-Berlin energy right there. " +
				"We stripped the building to its soul to give you the ultimate 'Open-Air' concept. " +
				"You're not just renting a flat; you're renting a monument. Fresh dollars only, no lowballs.",
		},
		Timestamp: now.UnixMilli(),
	}
}
