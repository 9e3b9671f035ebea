package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vkuzmin/shelfmate/internal/config"
)

var (
	// ErrNotFound indicates the external source knows no matching volume.
	ErrNotFound = errors.New("volume not found")

	// ErrUnavailable indicates the external source failed or timed out.
	ErrUnavailable = errors.New("metadata service unavailable")
)

// GoogleBooksClient fetches volume metadata from the Google Books API.
// It never writes to storage; callers turn results into drafts and submit
// them through the normal creation path.
type GoogleBooksClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	limiter    *rate.Limiter
}

// NewGoogleBooksClient creates a client with the injected configuration.
func NewGoogleBooksClient(cfg config.GoogleBooks) *GoogleBooksClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleBooksClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is the subset of the Google Books volume resource we consume.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle,omitempty"`
	Authors             []string             `json:"authors,omitempty"`
	Publisher           string               `json:"publisher,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Description         string               `json:"description,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	PageCount           int                  `json:"pageCount,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Search runs a free-text query and returns up to the configured number of
// candidate volumes. An empty result is not an error.
func (c *GoogleBooksClient) Search(ctx context.Context, query string) ([]Volume, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(c.maxResults))

	result, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// SearchByISBN looks up a volume by ISBN and returns the best match.
func (c *GoogleBooksClient) SearchByISBN(ctx context.Context, isbn string) (*Volume, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("invalid ISBN")
	}

	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	params.Set("maxResults", "1")

	result, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: isbn %s", ErrNotFound, isbn)
	}
	return &result.Items[0], nil
}

// GetVolume fetches one volume by its identifier. Unlike searches, failures
// here are meant to propagate to the caller.
func (c *GoogleBooksClient) GetVolume(ctx context.Context, id string) (*Volume, error) {
	if id == "" {
		return nil, fmt.Errorf("volume id is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/volumes/%s", c.baseURL, url.PathEscape(id))
	if c.apiKey != "" {
		reqURL += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: volume %s", ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var volume Volume
	if err := json.NewDecoder(resp.Body).Decode(&volume); err != nil {
		return nil, fmt.Errorf("decode volume: %w", err)
	}
	return &volume, nil
}

func (c *GoogleBooksClient) fetchVolumes(ctx context.Context, params url.Values) (*volumesResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	reqURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &result, nil
}

// normalizeISBN strips separators and validates the length of an ISBN-10/13.
func normalizeISBN(isbn string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == 'X' || r == 'x' {
			return r
		}
		return -1
	}, isbn)

	if len(cleaned) != 10 && len(cleaned) != 13 {
		return ""
	}
	return strings.ToUpper(cleaned)
}
