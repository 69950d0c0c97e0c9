package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"plextoolkit/internal/match"
)

var (
	footnotePattern = regexp.MustCompile(`\[.*?\]`)
	yearPattern     = regexp.MustCompile(`\d{4}`)
)

// parseWikipediaFilmList walks every sortable wikitable in the page and pulls
// (title, year) rows out of it. Column positions vary between pages, so each
// table's header row decides which cells hold the film title and release date.
func parseWikipediaFilmList(doc *goquery.Document) []match.Query {
	var queries []match.Query
	doc.Find("table.wikitable").Each(func(_ int, table *goquery.Selection) {
		titleCol, yearCol := detectColumns(table)
		if titleCol < 0 {
			return
		}
		table.Find("tr").Each(func(rowIndex int, row *goquery.Selection) {
			if rowIndex == 0 {
				return
			}
			cells := row.Find("td, th")
			if cells.Length() <= titleCol {
				return
			}
			title := cleanCell(cells.Eq(titleCol).Text())
			if title == "" {
				return
			}
			year := 0
			if yearCol >= 0 && cells.Length() > yearCol {
				year = extractYear(cells.Eq(yearCol).Text())
			}
			queries = append(queries, match.Query{Title: title, Year: year})
		})
	})
	return queries
}

// detectColumns inspects a table's first row of headers. Title columns are
// preferred when they do not double as date columns so that pages with a
// "Release date (title)" style header still resolve correctly.
func detectColumns(table *goquery.Selection) (titleCol, yearCol int) {
	titleCol, yearCol = -1, -1
	headers := table.Find("tr").First().Find("th")
	headers.Each(func(i int, header *goquery.Selection) {
		text := strings.ToLower(cleanCell(header.Text()))
		isTitle := strings.Contains(text, "title") || strings.Contains(text, "film")
		isDate := strings.Contains(text, "year") || strings.Contains(text, "date") || strings.Contains(text, "release")
		if isTitle && !isDate && titleCol < 0 {
			titleCol = i
		}
		if isDate && yearCol < 0 {
			yearCol = i
		}
	})
	// Some pages label the column just "Film (year)"; fall back to any
	// title-ish header when nothing cleaner matched.
	if titleCol < 0 {
		headers.Each(func(i int, header *goquery.Selection) {
			text := strings.ToLower(cleanCell(header.Text()))
			if (strings.Contains(text, "title") || strings.Contains(text, "film")) && titleCol < 0 {
				titleCol = i
			}
		})
	}
	return titleCol, yearCol
}

// cleanCell strips Wikipedia footnote markers like [a] and [12] and trims
// surrounding whitespace.
func cleanCell(text string) string {
	return strings.TrimSpace(footnotePattern.ReplaceAllString(text, ""))
}

// extractYear returns the first four-digit year in text, or zero.
func extractYear(text string) int {
	digits := yearPattern.FindString(text)
	if digits == "" {
		return 0
	}
	year := 0
	for _, r := range digits {
		year = year*10 + int(r-'0')
	}
	return year
}
