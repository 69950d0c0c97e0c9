package collections

import "plextoolkit/internal/match"

// EntryStatus classifies the fate of one requested title.
type EntryStatus string

const (
	// StatusAdded means the title resolved and joins the collection.
	StatusAdded EntryStatus = "added"
	// StatusAlreadyPresent means the title resolved but was a member already.
	StatusAlreadyPresent EntryStatus = "already present"
	// StatusUnmatched means the title could not be found in the library.
	StatusUnmatched EntryStatus = "unmatched"
	// StatusAmbiguous means several library items tied for the title.
	StatusAmbiguous EntryStatus = "ambiguous"
)

// ReportEntry records the outcome for one requested title.
type ReportEntry struct {
	Query  match.Query
	Status EntryStatus
	// Matched is the resolved library title, when one resolved.
	Matched string
	// Detail carries the unmatched reason or the ambiguous candidate list.
	Detail string
}

// BuildReport summarizes one collection build.
type BuildReport struct {
	Collection string
	Section    string
	Entries    []ReportEntry
	// Applied reports whether a membership mutation was sent to the server.
	Applied bool
	// MemberCount is the collection size after the build.
	MemberCount int
}

// Count returns how many entries carry the given status.
func (r *BuildReport) Count(status EntryStatus) int {
	n := 0
	for _, entry := range r.Entries {
		if entry.Status == status {
			n++
		}
	}
	return n
}
