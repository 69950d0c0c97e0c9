package plex

// Kind identifies the media kind of a catalog item.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindShow   Kind = "show"
	KindSeason Kind = "season"
)

// Item is a read-only snapshot of one catalog entry as the server reported
// it. The rating key is the server-assigned identifier.
type Item struct {
	RatingKey        string
	Title            string
	Year             int
	Kind             Kind
	Index            int // season number for seasons
	ParentRatingKey  string
	PosterLocked     bool
	BackgroundLocked bool
}

// MatchTitle satisfies match.Entry.
func (i Item) MatchTitle() string { return i.Title }

// MatchYear satisfies match.Entry.
func (i Item) MatchYear() int { return i.Year }

// LockState reports which artwork fields a human has pinned.
type LockState struct {
	PosterLocked     bool
	BackgroundLocked bool
}

// Collection describes a named collection within a library section.
type Collection struct {
	RatingKey string
	Title     string
	Smart     bool
}
