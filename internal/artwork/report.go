package artwork

import "plextoolkit/internal/plex"

// ItemStatus classifies what happened to one scanned item.
type ItemStatus string

const (
	// StatusApplied means at least one artwork field was updated.
	StatusApplied ItemStatus = "applied"
	// StatusSkippedLocked means every eligible field was locked by a human.
	StatusSkippedLocked ItemStatus = "skipped (locked)"
	// StatusSkippedNoMatch means the item could not be resolved to exactly
	// one metadata record, or the record carried no usable artwork.
	StatusSkippedNoMatch ItemStatus = "skipped (no match)"
	// StatusFailed means a collaborator error interrupted this item only.
	StatusFailed ItemStatus = "failed"
)

// ItemResult records the outcome for one scanned item or season.
type ItemResult struct {
	Title         string
	Kind          plex.Kind
	Status        ItemStatus
	Detail        string
	PosterSet     bool
	BackgroundSet bool
}

// FixReport summarizes one artwork run.
type FixReport struct {
	Section string
	Results []ItemResult
}

// Count returns how many results carry the given status.
func (r *FixReport) Count(status ItemStatus) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}
