package retailer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"needlist/internal/domain"
)

// Default configuration values for the SerpAPI client.
const (
	DefaultSerpBaseURL = "https://serpapi.com/search.json"
	DefaultSerpTimeout = 10 * time.Second
	DefaultSearchLimit = 20
)

// SerpClient calls the SerpAPI product search endpoint. One client is shared
// by the Walmart and Target providers; the engine parameter selects the
// retailer backend.
type SerpClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// SerpOption configures SerpClient.
type SerpOption func(*SerpClient)

// WithSerpBaseURL overrides the API endpoint (used by tests).
func WithSerpBaseURL(u string) SerpOption {
	return func(c *SerpClient) {
		c.baseURL = u
	}
}

// WithSerpHTTPClient sets a custom http.Client.
func WithSerpHTTPClient(client *http.Client) SerpOption {
	return func(c *SerpClient) {
		c.client = client
	}
}

// NewSerpClient creates a SerpAPI client.
func NewSerpClient(apiKey string, opts ...SerpOption) *SerpClient {
	c := &SerpClient{
		apiKey:  apiKey,
		baseURL: DefaultSerpBaseURL,
		client:  &http.Client{Timeout: DefaultSerpTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// serpWalmartResponse is the raw SerpAPI walmart engine payload.
type serpWalmartResponse struct {
	OrganicResults []struct {
		USItemID       string  `json:"us_item_id"`
		Title          string  `json:"title"`
		Thumbnail      string  `json:"thumbnail"`
		ProductPageURL string  `json:"product_page_url"`
		Rating         float64 `json:"rating"`
		Reviews        int     `json:"reviews"`
		PrimaryOffer   struct {
			OfferPrice json.RawMessage `json:"offer_price"`
		} `json:"primary_offer"`
	} `json:"organic_results"`
}

// serpTargetResponse is the raw SerpAPI target engine payload.
type serpTargetResponse struct {
	OrganicResults []struct {
		TCIN      string          `json:"tcin"`
		Title     string          `json:"title"`
		Thumbnail string          `json:"thumbnail"`
		Link      string          `json:"link"`
		Rating    float64         `json:"rating"`
		Reviews   int             `json:"reviews"`
		Price     json.RawMessage `json:"price"`
	} `json:"organic_results"`
}

// get issues one search call and decodes the body into out.
func (c *SerpClient) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("api_key", c.apiKey)
	params.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("serpapi status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode serpapi response: %w", err)
	}
	return nil
}

// rawPrice decodes a heterogeneous price field (number, string or object)
// into an interface{} accepted by the price formatter.
func rawPrice(m json.RawMessage) interface{} {
	if len(m) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(m, &v); err != nil {
		return nil
	}
	return v
}

// WalmartProvider searches Walmart via SerpAPI.
type WalmartProvider struct {
	client *SerpClient
}

// NewWalmartProvider creates a Walmart search provider.
func NewWalmartProvider(client *SerpClient) *WalmartProvider {
	return &WalmartProvider{client: client}
}

// Compile-time interface check.
var _ SearchProvider = (*WalmartProvider)(nil)

// Retailer identifies this provider.
func (p *WalmartProvider) Retailer() domain.Retailer {
	return domain.RetailerWalmart
}

// Search returns normalized Walmart results.
func (p *WalmartProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("engine", "walmart")
	params.Set("query", query)
	params.Set("ps", strconv.Itoa(limit))
	if opts.ZipCode != "" {
		params.Set("store_zip", opts.ZipCode)
	}

	var raw serpWalmartResponse
	if err := p.client.get(ctx, params, &raw); err != nil {
		return nil, fmt.Errorf("walmart search %q: %w", query, err)
	}

	results := make([]domain.SearchResult, 0, len(raw.OrganicResults))
	for _, item := range raw.OrganicResults {
		if len(results) >= limit {
			break
		}
		sr := domain.SearchResult{
			ProductID: DeriveProductID(domain.RetailerWalmart, item.USItemID, item.ProductPageURL, item.Title),
			Title:     item.Title,
			Price:     FormatPrice(rawPrice(item.PrimaryOffer.OfferPrice)),
			ImageURL:  item.Thumbnail,
			Link:      item.ProductPageURL,
			Retailer:  domain.RetailerWalmart,
		}
		if item.Rating > 0 {
			rating := item.Rating
			sr.Rating = &rating
		}
		if item.Reviews > 0 {
			reviews := item.Reviews
			sr.RatingsCount = &reviews
		}
		results = append(results, sr)
	}
	return results, nil
}

// TargetProvider searches Target via SerpAPI.
type TargetProvider struct {
	client *SerpClient
}

// NewTargetProvider creates a Target search provider.
func NewTargetProvider(client *SerpClient) *TargetProvider {
	return &TargetProvider{client: client}
}

// Compile-time interface check.
var _ SearchProvider = (*TargetProvider)(nil)

// Retailer identifies this provider.
func (p *TargetProvider) Retailer() domain.Retailer {
	return domain.RetailerTarget
}

// Search returns normalized Target results.
func (p *TargetProvider) Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("engine", "target")
	params.Set("search_term", query)
	if opts.ZipCode != "" {
		params.Set("store_zip", opts.ZipCode)
	}

	var raw serpTargetResponse
	if err := p.client.get(ctx, params, &raw); err != nil {
		return nil, fmt.Errorf("target search %q: %w", query, err)
	}

	results := make([]domain.SearchResult, 0, len(raw.OrganicResults))
	for _, item := range raw.OrganicResults {
		if len(results) >= limit {
			break
		}
		sr := domain.SearchResult{
			ProductID: DeriveProductID(domain.RetailerTarget, item.TCIN, item.Link, item.Title),
			Title:     item.Title,
			Price:     FormatPrice(rawPrice(item.Price)),
			ImageURL:  item.Thumbnail,
			Link:      item.Link,
			Retailer:  domain.RetailerTarget,
		}
		if item.Rating > 0 {
			rating := item.Rating
			sr.Rating = &rating
		}
		if item.Reviews > 0 {
			reviews := item.Reviews
			sr.RatingsCount = &reviews
		}
		results = append(results, sr)
	}
	return results, nil
}
