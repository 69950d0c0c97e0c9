package collections

import (
	_ "embed"
	"encoding/json"
	"sort"
	"strings"
)

// KnownFranchises maps franchise names to their TMDB collection identifiers.
var KnownFranchises = map[string]int64{
	"Alien":                    8091,
	"Back to the Future":       264,
	"Despicable Me":            86066,
	"Evil Dead":                1960,
	"Fast & Furious":           9485,
	"Harry Potter":             1241,
	"The Hunger Games":         131635,
	"Indiana Jones":            84,
	"James Bond":               645,
	"John Wick":                404609,
	"Jurassic Park":            328,
	"The Lord of the Rings":    119,
	"The Matrix":               2344,
	"Mission: Impossible":      87359,
	"Ocean's":                  304,
	"Pirates of the Caribbean": 295,
	"Planet of the Apes":       173710,
	"Scream":                   2602,
	"Shrek":                    2150,
	"Sonic the Hedgehog":       720879,
	"Star Trek":                115575,
	"Star Wars":                10,
	"The Dark Knight":          263,
	"The Twilight Saga":        33514,
}

// StudioFilter selects a studio's output on TMDB, either by production
// company or by keyword for labels like the MCU that are not companies.
type StudioFilter struct {
	CompanyID int64
	KeywordID int64
}

// KnownStudios maps lowercase studio and label names to discovery filters.
var KnownStudios = map[string]StudioFilter{
	"a24":                      {CompanyID: 41077},
	"pixar":                    {CompanyID: 3},
	"studio ghibli":            {CompanyID: 10342},
	"mcu":                      {KeywordID: 180547},
	"dceu":                     {KeywordID: 229266},
	"neon":                     {CompanyID: 93920},
	"dreamworks animation":     {CompanyID: 521},
	"searchlight pictures":     {CompanyID: 43},
	"disney animation":         {CompanyID: 2},
	"the criterion collection": {CompanyID: 10994},
	"netflix":                  {CompanyID: 20580},
	"hbo":                      {CompanyID: 3268},
}

// FranchiseNames returns the known franchises in stable order.
func FranchiseNames() []string {
	names := make([]string, 0, len(KnownFranchises))
	for name := range KnownFranchises {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StudioNames returns the known studios and labels in stable order.
func StudioNames() []string {
	names := make([]string, 0, len(KnownStudios))
	for name := range KnownStudios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

//go:embed fallback_collections.json
var fallbackData []byte

var fallbackLists = func() map[string][]string {
	lists := make(map[string][]string)
	if err := json.Unmarshal(fallbackData, &lists); err != nil {
		panic("fallback_collections.json: " + err.Error())
	}
	normalized := make(map[string][]string, len(lists))
	for name, titles := range lists {
		normalized[strings.ToLower(name)] = titles
	}
	return normalized
}()

// fallbackFranchiseTitles returns the bundled title list for a franchise,
// used when no metadata service is configured.
func fallbackFranchiseTitles(name string) ([]string, bool) {
	titles, ok := fallbackLists[strings.ToLower(strings.TrimSpace(name))]
	return titles, ok
}
