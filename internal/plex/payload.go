package plex

import (
	"bytes"
	"strconv"
)

type mediaContainerResponse struct {
	MediaContainer mediaContainer `json:"MediaContainer"`
}

type mediaContainer struct {
	MachineIdentifier string             `json:"machineIdentifier"`
	Directory         []directoryPayload `json:"Directory"`
	Metadata          []metadataPayload  `json:"Metadata"`
}

type directoryPayload struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type metadataPayload struct {
	RatingKey       string         `json:"ratingKey"`
	Title           string         `json:"title"`
	Type            string         `json:"type"`
	Year            int            `json:"year"`
	Index           int            `json:"index"`
	ParentRatingKey string         `json:"parentRatingKey"`
	Smart           flexibleBool   `json:"smart"`
	Field           []fieldPayload `json:"Field"`
}

type fieldPayload struct {
	Name   string       `json:"name"`
	Locked flexibleBool `json:"locked"`
}

func (m mediaContainer) items() []Item {
	items := make([]Item, 0, len(m.Metadata))
	for _, meta := range m.Metadata {
		poster, background := meta.lockFlags()
		items = append(items, Item{
			RatingKey:        meta.RatingKey,
			Title:            meta.Title,
			Year:             meta.Year,
			Kind:             parseKind(meta.Type),
			Index:            meta.Index,
			ParentRatingKey:  meta.ParentRatingKey,
			PosterLocked:     poster,
			BackgroundLocked: background,
		})
	}
	return items
}

// lockFlags maps Plex's internal field names onto artwork locks: "thumb" is
// the poster, "art" the background.
func (m metadataPayload) lockFlags() (poster, background bool) {
	for _, field := range m.Field {
		if !field.Locked.bool() {
			continue
		}
		switch field.Name {
		case "thumb":
			poster = true
		case "art":
			background = true
		}
	}
	return poster, background
}

func parseKind(value string) Kind {
	switch value {
	case "movie":
		return KindMovie
	case "show":
		return KindShow
	case "season":
		return KindSeason
	default:
		return Kind(value)
	}
}

// flexibleBool tolerates the boolean encodings Plex uses interchangeably:
// true/false, 0/1, and the strings "0"/"1".
type flexibleBool struct {
	value bool
}

func (b flexibleBool) bool() bool { return b.value }

func (b *flexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		b.value = true
	case "false", "0", `"0"`, `"false"`, "null", `""`:
		b.value = false
	default:
		parsed, err := strconv.ParseBool(string(bytes.Trim(data, `"`)))
		if err != nil {
			return err
		}
		b.value = parsed
	}
	return nil
}
