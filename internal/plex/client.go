package plex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"plextoolkit/internal/config"
	"plextoolkit/internal/services"
)

const (
	productName    = "plextoolkit"
	productVersion = "dev"

	// Plex type code for movies, used when creating collections.
	movieTypeCode = "1"
)

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to a Plex Media Server over its HTTP API. All responses are
// requested as JSON. Mutations go through the bounded retry policy; 4xx
// responses are never retried.
type Client struct {
	baseURL    string
	token      string
	clientID   string
	httpClient HTTPDoer
	retry      services.RetryPolicy

	mu        sync.Mutex
	machineID string
	sections  map[string]string // section title -> key
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP backend.
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

// New creates a Plex client. A client identifier is generated when the
// configuration does not pin one.
func New(baseURL, token, clientIdentifier string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("plex base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("plex token required")
	}
	clientIdentifier = strings.TrimSpace(clientIdentifier)
	if clientIdentifier == "" {
		clientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	client := &Client{
		baseURL:    baseURL,
		token:      token,
		clientID:   clientIdentifier,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry:      services.DefaultRetryPolicy(),
		sections:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig creates a client from application configuration. Options are
// applied last so tests can still swap the HTTP backend.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	client, err := New(cfg.Plex.URL, cfg.Plex.Token, cfg.Plex.ClientIdentifier)
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

// ListSection returns a snapshot of every item in the named library section.
func (c *Client) ListSection(ctx context.Context, section string) ([]Item, error) {
	key, err := c.sectionKey(ctx, section)
	if err != nil {
		return nil, err
	}
	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/sections/"+key+"/all", nil, &payload); err != nil {
		return nil, services.Wrap(nil, "plex", "list section", section, err)
	}
	return payload.MediaContainer.items(), nil
}

// ListCollections returns the collections defined in the named section.
func (c *Client) ListCollections(ctx context.Context, section string) ([]Collection, error) {
	key, err := c.sectionKey(ctx, section)
	if err != nil {
		return nil, err
	}
	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/sections/"+key+"/collections", nil, &payload); err != nil {
		return nil, services.Wrap(nil, "plex", "list collections", section, err)
	}
	collections := make([]Collection, 0, len(payload.MediaContainer.Metadata))
	for _, meta := range payload.MediaContainer.Metadata {
		collections = append(collections, Collection{
			RatingKey: meta.RatingKey,
			Title:     meta.Title,
			Smart:     meta.Smart.bool(),
		})
	}
	return collections, nil
}

// ListCollectionMembers returns the items currently in the named collection.
// A missing collection yields services.ErrNotFound.
func (c *Client) ListCollectionMembers(ctx context.Context, section, collection string) ([]Item, error) {
	found, err := c.findCollection(ctx, section, collection)
	if err != nil {
		return nil, err
	}
	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/collections/"+found.RatingKey+"/children", nil, &payload); err != nil {
		return nil, services.Wrap(nil, "plex", "list collection members", collection, err)
	}
	return payload.MediaContainer.items(), nil
}

// SetCollectionMembers sets the named collection's membership to exactly the
// provided items, creating the collection when it does not exist yet. Union
// semantics are the caller's responsibility; this issues the single mutation.
func (c *Client) SetCollectionMembers(ctx context.Context, section, collection string, items []Item) error {
	if len(items) == 0 {
		return services.Wrap(services.ErrInvalidQuery, "plex", "set collection members", "no items", nil)
	}
	sectionID, err := c.sectionKey(ctx, section)
	if err != nil {
		return err
	}
	uri, err := c.metadataURI(ctx, items)
	if err != nil {
		return err
	}

	existing, err := c.findCollection(ctx, section, collection)
	switch {
	case err == nil:
		params := url.Values{"uri": {uri}}
		if err := c.mutate(ctx, http.MethodPut, "/library/collections/"+existing.RatingKey+"/items", params); err != nil {
			return services.Wrap(services.ErrRemoteMutation, "plex", "update collection", collection, err)
		}
		return nil
	case errors.Is(err, services.ErrNotFound):
		params := url.Values{
			"type":      {movieTypeCode},
			"title":     {collection},
			"smart":     {"0"},
			"sectionId": {sectionID},
			"uri":       {uri},
		}
		if err := c.mutate(ctx, http.MethodPost, "/library/collections", params); err != nil {
			return services.Wrap(services.ErrRemoteMutation, "plex", "create collection", collection, err)
		}
		return nil
	default:
		return err
	}
}

// GetLockState fetches the item's current artwork lock flags.
func (c *Client) GetLockState(ctx context.Context, item Item) (LockState, error) {
	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/metadata/"+item.RatingKey, nil, &payload); err != nil {
		return LockState{}, services.Wrap(nil, "plex", "get lock state", item.Title, err)
	}
	if len(payload.MediaContainer.Metadata) == 0 {
		return LockState{}, services.Wrap(services.ErrNotFound, "plex", "get lock state", item.Title, nil)
	}
	meta := payload.MediaContainer.Metadata[0]
	poster, background := meta.lockFlags()
	return LockState{PosterLocked: poster, BackgroundLocked: background}, nil
}

// SetPoster applies a poster image by URL.
func (c *Client) SetPoster(ctx context.Context, item Item, imageRef string) error {
	if err := c.mutate(ctx, http.MethodPost, "/library/metadata/"+item.RatingKey+"/posters", url.Values{"url": {imageRef}}); err != nil {
		return services.Wrap(services.ErrRemoteMutation, "plex", "set poster", item.Title, err)
	}
	return nil
}

// SetBackground applies a background (art) image by URL.
func (c *Client) SetBackground(ctx context.Context, item Item, imageRef string) error {
	if err := c.mutate(ctx, http.MethodPost, "/library/metadata/"+item.RatingKey+"/arts", url.Values{"url": {imageRef}}); err != nil {
		return services.Wrap(services.ErrRemoteMutation, "plex", "set background", item.Title, err)
	}
	return nil
}

// ListSeasons returns a show's seasons, each with its own lock flags.
func (c *Client) ListSeasons(ctx context.Context, show Item) ([]Item, error) {
	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/metadata/"+show.RatingKey+"/children", nil, &payload); err != nil {
		return nil, services.Wrap(nil, "plex", "list seasons", show.Title, err)
	}
	seasons := make([]Item, 0, len(payload.MediaContainer.Metadata))
	for _, item := range payload.MediaContainer.items() {
		if item.Kind == KindSeason {
			seasons = append(seasons, item)
		}
	}
	return seasons, nil
}

func (c *Client) findCollection(ctx context.Context, section, collection string) (Collection, error) {
	all, err := c.ListCollections(ctx, section)
	if err != nil {
		return Collection{}, err
	}
	target := strings.ToLower(strings.TrimSpace(collection))
	for _, candidate := range all {
		if strings.ToLower(strings.TrimSpace(candidate.Title)) == target {
			return candidate, nil
		}
	}
	return Collection{}, services.Wrap(services.ErrNotFound, "plex", "find collection", collection, nil)
}

func (c *Client) sectionKey(ctx context.Context, section string) (string, error) {
	c.mu.Lock()
	key, ok := c.sections[section]
	c.mu.Unlock()
	if ok {
		return key, nil
	}

	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/library/sections", nil, &payload); err != nil {
		return "", services.Wrap(nil, "plex", "list sections", "", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, dir := range payload.MediaContainer.Directory {
		c.sections[dir.Title] = dir.Key
	}
	if key, ok := c.sections[section]; ok {
		return key, nil
	}
	return "", services.Wrap(services.ErrNotFound, "plex", "find library section", section, nil)
}

func (c *Client) machineIdentifier(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.machineID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	var payload mediaContainerResponse
	if err := c.getJSON(ctx, "/", nil, &payload); err != nil {
		return "", services.Wrap(nil, "plex", "server identity", "", err)
	}
	if payload.MediaContainer.MachineIdentifier == "" {
		return "", services.Wrap(services.ErrNotFound, "plex", "server identity", "missing machine identifier", nil)
	}

	c.mu.Lock()
	c.machineID = payload.MediaContainer.MachineIdentifier
	c.mu.Unlock()
	return payload.MediaContainer.MachineIdentifier, nil
}

func (c *Client) metadataURI(ctx context.Context, items []Item) (string, error) {
	machineID, err := c.machineIdentifier(ctx)
	if err != nil {
		return "", err
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.RatingKey)
	}
	return fmt.Sprintf("server://%s/com.plexapp.plugins.library/library/metadata/%s", machineID, strings.Join(keys, ",")), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	return services.Retry(ctx, c.retry, func() error {
		return c.doRequest(ctx, http.MethodGet, path, params, out)
	})
}

func (c *Client) mutate(ctx context.Context, method, path string, params url.Values) error {
	return services.Retry(ctx, c.retry, func() error {
		return c.doRequest(ctx, method, path, params, nil)
	})
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.applyStandardHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plex request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &services.HTTPStatusError{
			Service: "plex",
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Body:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) applyStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", productName)
	req.Header.Set("X-Plex-Version", productVersion)
	req.Header.Set("X-Plex-Device-Name", productName)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)
}
