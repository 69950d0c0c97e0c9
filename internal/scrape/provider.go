package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"plextoolkit/internal/config"
	"plextoolkit/internal/match"
	"plextoolkit/internal/services"
)

// Sources maps the named web lists the toolkit knows how to import to their
// URLs. Wikipedia "List of X films" pages share one parser; criterion.com
// has its own.
var Sources = map[string]string{
	"A24":                                "https://en.wikipedia.org/wiki/List_of_A24_films",
	"Academy Award Best Picture Winners": "https://en.wikipedia.org/wiki/Academy_Award_for_Best_Picture",
	"Cannes Palme d'Or Winners":          "https://en.wikipedia.org/wiki/Palme_d%27Or",
	"Pixar":                              "https://en.wikipedia.org/wiki/List_of_Pixar_films",
	"Studio Ghibli":                      "https://en.wikipedia.org/wiki/List_of_Studio_Ghibli_works",
	"MCU":                                "https://en.wikipedia.org/wiki/List_of_Marvel_Cinematic_Universe_films",
	"DCEU":                               "https://en.wikipedia.org/wiki/List_of_DC_Extended_Universe_films",
	"Disney Animation":                   "https://en.wikipedia.org/wiki/List_of_Walt_Disney_Animation_Studios_films",
	"DreamWorks Animation":               "https://en.wikipedia.org/wiki/List_of_DreamWorks_Animation_productions",
	"Neon":                               "https://en.wikipedia.org/wiki/List_of_Neon_films",
	"The Criterion Collection":           "https://www.criterion.com/shop/browse/list?sort=spine_number",
}

// SourceNames returns the known list names in stable order.
func SourceNames() []string {
	names := make([]string, 0, len(Sources))
	for name := range Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Provider fetches and parses named web lists of films. It is an unreliable
// collaborator by design: fetch or parse failures yield an empty list plus
// an error, never a panic.
type Provider struct {
	userAgent  string
	httpClient HTTPDoer
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the default HTTP backend.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(p *Provider) {
		if doer != nil {
			p.httpClient = doer
		}
	}
}

// New creates a list provider.
func New(userAgent string, timeout time.Duration, opts ...Option) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	provider := &Provider{
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

// NewFromConfig creates a provider from application configuration.
func NewFromConfig(cfg *config.Config, opts ...Option) *Provider {
	return New(cfg.Scraper.UserAgent, time.Duration(cfg.Scraper.TimeoutSeconds)*time.Second, opts...)
}

// FetchList downloads and parses the named source into an ordered,
// duplicate-free list of title queries.
func (p *Provider) FetchList(ctx context.Context, sourceName string) ([]match.Query, error) {
	sourceURL, ok := Sources[sourceName]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "scrape", "fetch list", fmt.Sprintf("unknown source %q", sourceName), nil)
	}
	return p.FetchURL(ctx, sourceURL)
}

// FetchURL downloads and parses an arbitrary film-list page.
func (p *Provider) FetchURL(ctx context.Context, sourceURL string) ([]match.Query, error) {
	doc, err := p.fetch(ctx, sourceURL)
	if err != nil {
		return nil, services.Wrap(nil, "scrape", "fetch", sourceURL, err)
	}

	var queries []match.Query
	if strings.Contains(sourceURL, "criterion.com") {
		queries = parseCriterionList(doc)
	} else {
		queries = parseWikipediaFilmList(doc)
	}
	if len(queries) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "scrape", "parse", "no film entries found in page", nil)
	}
	return dedupeSorted(queries), nil
}

func (p *Provider) fetch(ctx context.Context, sourceURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &services.HTTPStatusError{Service: "scrape", Method: http.MethodGet, Path: sourceURL, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// dedupeSorted removes duplicates and sorts the list by title then year, the
// order the original lists present their indexes in.
func dedupeSorted(queries []match.Query) []match.Query {
	seen := make(map[match.Query]struct{}, len(queries))
	out := make([]match.Query, 0, len(queries))
	for _, q := range queries {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Year < out[j].Year
	})
	return out
}
