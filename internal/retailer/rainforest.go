package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"needlist/internal/domain"
)

// Default configuration values for the Rainforest client.
const (
	DefaultRainforestBaseURL = "https://api.rainforestapi.com/request"
	DefaultRainforestTimeout = 15 * time.Second
)

// RainforestClient calls the Rainforest API for Amazon product search.
// Every call is billed, which is why this client is always used behind the
// ratelimit wrapper in production wiring.
type RainforestClient struct {
	apiKey  string
	domain  string // amazon marketplace domain, e.g. "amazon.com"
	baseURL string
	client  *http.Client
}

// RainforestOption configures RainforestClient.
type RainforestOption func(*RainforestClient)

// WithRainforestBaseURL overrides the API endpoint (used by tests).
func WithRainforestBaseURL(u string) RainforestOption {
	return func(c *RainforestClient) {
		c.baseURL = u
	}
}

// WithRainforestHTTPClient sets a custom http.Client.
func WithRainforestHTTPClient(client *http.Client) RainforestOption {
	return func(c *RainforestClient) {
		c.client = client
	}
}

// WithAmazonDomain sets the marketplace domain.
func WithAmazonDomain(d string) RainforestOption {
	return func(c *RainforestClient) {
		c.domain = d
	}
}

// NewRainforestClient creates a Rainforest API client.
func NewRainforestClient(apiKey string, opts ...RainforestOption) *RainforestClient {
	c := &RainforestClient{
		apiKey:  apiKey,
		domain:  "amazon.com",
		baseURL: DefaultRainforestBaseURL,
		client:  &http.Client{Timeout: DefaultRainforestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rainforestSearchResponse is the raw Rainforest search payload.
type rainforestSearchResponse struct {
	SearchResults []struct {
		ASIN         string          `json:"asin"`
		Title        string          `json:"title"`
		Image        string          `json:"image"`
		Link         string          `json:"link"`
		Rating       float64         `json:"rating"`
		RatingsTotal int             `json:"ratings_total"`
		Price        json.RawMessage `json:"price"`
	} `json:"search_results"`
}

// AmazonProvider searches Amazon via the Rainforest API.
type AmazonProvider struct {
	client *RainforestClient
}

// NewAmazonProvider creates an Amazon search provider.
func NewAmazonProvider(client *RainforestClient) *AmazonProvider {
	return &AmazonProvider{client: client}
}

// Compile-time interface check.
var _ SearchProvider = (*AmazonProvider)(nil)

// Retailer identifies this provider.
func (p *AmazonProvider) Retailer() domain.Retailer {
	return domain.RetailerAmazon
}

// Search returns normalized Amazon results.
func (p *AmazonProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("api_key", p.client.apiKey)
	params.Set("type", "search")
	params.Set("amazon_domain", p.client.domain)
	params.Set("search_term", query)
	params.Set("max_page", "1")
	if opts.ZipCode != "" {
		params.Set("zip_code", opts.ZipCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.client.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build rainforest request: %w", err)
	}

	resp, err := p.client.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rainforest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rainforest status %d: %s", resp.StatusCode, string(body))
	}

	var raw rainforestSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode rainforest response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(raw.SearchResults))
	for _, item := range raw.SearchResults {
		if len(results) >= limit {
			break
		}
		sr := domain.SearchResult{
			ProductID: DeriveProductID(domain.RetailerAmazon, item.ASIN, item.Link, item.Title),
			Title:     item.Title,
			Price:     FormatPrice(rawPrice(item.Price)),
			ImageURL:  item.Image,
			Link:      item.Link,
			Retailer:  domain.RetailerAmazon,
		}
		if item.Rating > 0 {
			rating := item.Rating
			sr.Rating = &rating
		}
		if item.RatingsTotal > 0 {
			ratings := item.RatingsTotal
			sr.RatingsCount = &ratings
		}
		results = append(results, sr)
	}
	return results, nil
}
