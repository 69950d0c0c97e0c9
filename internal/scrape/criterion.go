package scrape

import (
	"github.com/PuerkitoBio/goquery"

	"plextoolkit/internal/match"
)

// parseCriterionList reads the criterion.com spine listing, which marks its
// cells with g-title and g-year classes rather than using header detection.
func parseCriterionList(doc *goquery.Document) []match.Query {
	var queries []match.Query
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		title := cleanCell(row.Find("td.g-title").First().Text())
		if title == "" {
			return
		}
		year := extractYear(row.Find("td.g-year").First().Text())
		queries = append(queries, match.Query{Title: title, Year: year})
	})
	return queries
}
