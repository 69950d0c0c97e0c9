package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"plextoolkit/internal/config"
	"plextoolkit/internal/services"
)

// Candidate is one metadata-service search result: a proposed real-world
// identity (and artwork) for a title. Immutable, discarded after use.
type Candidate struct {
	ID            int64
	Title         string
	Year          int
	PosterRef     string
	BackgroundRef string
}

// MatchTitle satisfies match.Entry.
func (c Candidate) MatchTitle() string { return c.Title }

// MatchYear satisfies match.Entry.
func (c Candidate) MatchYear() int { return c.Year }

// SeasonImages holds the canonical artwork for one TV season.
type SeasonImages struct {
	PosterRef     string
	BackgroundRef string
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   HTTPDoer
	retry        services.RetryPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy services.RetryPolicy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, imageBaseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrUnavailable, "tmdb", "new client", "api key missing", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(strings.TrimSpace(imageBaseURL), "/"),
		language:     strings.TrimSpace(language),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		retry:        services.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig creates a client from application configuration. A missing
// API key reports services.ErrUnavailable so callers can degrade to the
// built-in fallback tables.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	client, err := New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.ImageBaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, err
	}
	client.httpClient = &http.Client{Timeout: time.Duration(cfg.Network.TimeoutSeconds) * time.Second}
	client.retry = services.RetryPolicy{
		Attempts: cfg.Network.RetryAttempts,
		Delay:    time.Duration(cfg.Network.RetryDelayMS) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchMovies searches TMDB for movies matching the title. A year narrows
// the search to that primary release year.
func (c *Client) SearchMovies(ctx context.Context, title string, year int) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidQuery, "tmdb", "search movies", "blank title", nil)
	}
	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}
	var payload searchResponse
	if err := c.getJSON(ctx, "/search/movie", params, &payload); err != nil {
		return nil, services.Wrap(nil, "tmdb", "search movies", title, err)
	}
	return c.candidates(payload.Results), nil
}

// SearchTV searches TMDB for TV shows matching the title.
func (c *Client) SearchTV(ctx context.Context, title string, year int) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrInvalidQuery, "tmdb", "search tv", "blank title", nil)
	}
	params := url.Values{}
	params.Set("query", title)
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}
	var payload searchResponse
	if err := c.getJSON(ctx, "/search/tv", params, &payload); err != nil {
		return nil, services.Wrap(nil, "tmdb", "search tv", title, err)
	}
	return c.candidates(payload.Results), nil
}

// SearchCompany resolves a production company name to its TMDB identifier.
func (c *Client) SearchCompany(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, services.Wrap(services.ErrInvalidQuery, "tmdb", "search company", "blank name", nil)
	}
	params := url.Values{}
	params.Set("query", name)
	var payload companySearchResponse
	if err := c.getJSON(ctx, "/search/company", params, &payload); err != nil {
		return 0, services.Wrap(nil, "tmdb", "search company", name, err)
	}
	if len(payload.Results) == 0 {
		return 0, services.Wrap(services.ErrNotFound, "tmdb", "search company", name, nil)
	}
	return payload.Results[0].ID, nil
}

// DiscoverByCompany fetches every movie produced by the company, walking all
// result pages.
func (c *Client) DiscoverByCompany(ctx context.Context, companyID int64) ([]Candidate, error) {
	return c.discover(ctx, "with_companies", companyID)
}

// DiscoverByKeyword fetches every movie tagged with the keyword, walking all
// result pages.
func (c *Client) DiscoverByKeyword(ctx context.Context, keywordID int64) ([]Candidate, error) {
	return c.discover(ctx, "with_keywords", keywordID)
}

func (c *Client) discover(ctx context.Context, filter string, id int64) ([]Candidate, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrInvalidQuery, "tmdb", "discover", "id must be positive", nil)
	}
	var all []Candidate
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		params := url.Values{}
		params.Set(filter, strconv.FormatInt(id, 10))
		params.Set("sort_by", "popularity.desc")
		params.Set("page", strconv.Itoa(page))
		var payload searchResponse
		if err := c.getJSON(ctx, "/discover/movie", params, &payload); err != nil {
			return nil, services.Wrap(nil, "tmdb", "discover", filter, err)
		}
		all = append(all, c.candidates(payload.Results)...)
		if payload.Page >= payload.TotalPages {
			break
		}
	}
	return all, nil
}

// CollectionParts fetches the member movies of a TMDB collection (a film
// franchise), in the collection's release order.
func (c *Client) CollectionParts(ctx context.Context, collectionID int64) ([]Candidate, error) {
	if collectionID <= 0 {
		return nil, services.Wrap(services.ErrInvalidQuery, "tmdb", "collection parts", "id must be positive", nil)
	}
	var payload collectionResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/collection/%d", collectionID), nil, &payload); err != nil {
		return nil, services.Wrap(nil, "tmdb", "collection parts", strconv.FormatInt(collectionID, 10), err)
	}
	return c.candidates(payload.Parts), nil
}

// GetSeasonImages fetches the canonical poster and background for one season
// of a TV show.
func (c *Client) GetSeasonImages(ctx context.Context, showID int64, seasonNumber int) (SeasonImages, error) {
	if showID <= 0 {
		return SeasonImages{}, services.Wrap(services.ErrInvalidQuery, "tmdb", "season images", "show id must be positive", nil)
	}
	if seasonNumber < 0 {
		return SeasonImages{}, services.Wrap(services.ErrInvalidQuery, "tmdb", "season images", "season number must not be negative", nil)
	}
	var payload imagesResponse
	path := fmt.Sprintf("/tv/%d/season/%d/images", showID, seasonNumber)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return SeasonImages{}, services.Wrap(nil, "tmdb", "season images", path, err)
	}
	images := SeasonImages{}
	if len(payload.Posters) > 0 {
		images.PosterRef = c.imageRef(payload.Posters[0].FilePath)
	}
	if len(payload.Backdrops) > 0 {
		images.BackgroundRef = c.imageRef(payload.Backdrops[0].FilePath)
	}
	return images, nil
}

func (c *Client) candidates(results []resultPayload) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, res := range results {
		title := res.Title
		if title == "" {
			title = res.Name
		}
		if strings.TrimSpace(title) == "" {
			continue
		}
		out = append(out, Candidate{
			ID:            res.ID,
			Title:         title,
			Year:          releaseYear(res),
			PosterRef:     c.imageRef(res.PosterPath),
			BackgroundRef: c.imageRef(res.BackdropPath),
		})
	}
	return out
}

func (c *Client) imageRef(filePath string) string {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return ""
	}
	if !strings.HasPrefix(filePath, "/") {
		filePath = "/" + filePath
	}
	return c.imageBaseURL + filePath
}

func releaseYear(res resultPayload) int {
	date := res.ReleaseDate
	if date == "" {
		date = res.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return services.Retry(ctx, c.retry, func() error {
		return c.doRequest(ctx, path, params, out)
	})
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &services.HTTPStatusError{
			Service: "tmdb",
			Method:  http.MethodGet,
			Path:    path,
			Code:    resp.StatusCode,
			Body:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
