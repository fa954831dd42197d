package retailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"needlist/internal/domain"
)

func TestWalmartProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("engine"); got != "walmart" {
			t.Errorf("expected engine=walmart, got %s", got)
		}
		if got := r.URL.Query().Get("query"); got != "fleece blanket" {
			t.Errorf("expected query=fleece blanket, got %s", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("expected api_key=test-key, got %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic_results": [
				{
					"us_item_id": "661384056",
					"title": "Fleece Blanket Queen",
					"thumbnail": "https://i5.walmartimages.com/thumb.jpg",
					"product_page_url": "https://www.walmart.com/ip/661384056",
					"rating": 4.6,
					"reviews": 1289,
					"primary_offer": {"offer_price": 14.97}
				},
				{
					"title": "Throw Blanket No Price",
					"product_page_url": "https://www.walmart.com/ip/123456789",
					"primary_offer": {}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewSerpClient("test-key", WithSerpBaseURL(server.URL))
	provider := NewWalmartProvider(client)

	results, err := provider.Search(context.Background(), "fleece blanket", SearchOptions{ZipCode: "30301"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Retailer != domain.RetailerWalmart {
		t.Errorf("expected walmart retailer tag, got %s", first.Retailer)
	}
	if first.ProductID != "661384056" {
		t.Errorf("expected product ID 661384056, got %s", first.ProductID)
	}
	if first.Price != "$14.97" {
		t.Errorf("expected price $14.97, got %s", first.Price)
	}
	if first.Rating == nil || *first.Rating != 4.6 {
		t.Errorf("expected rating 4.6, got %v", first.Rating)
	}

	// Missing price coerces to the varies literal, never "$".
	if results[1].Price != PriceVaries {
		t.Errorf("expected %q for missing price, got %q", PriceVaries, results[1].Price)
	}
}

func TestTargetProvider_Search_HeterogeneousPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"organic_results": [
				{"tcin": "87654321", "title": "Weighted Blanket", "link": "https://www.target.com/p/-/A-87654321", "price": {"value": 29, "currency": "USD"}},
				{"tcin": "87654322", "title": "Quilt", "link": "https://www.target.com/p/-/A-87654322", "price": "$35.00"}
			]
		}`))
	}))
	defer server.Close()

	client := NewSerpClient("k", WithSerpBaseURL(server.URL))
	provider := NewTargetProvider(client)

	results, err := provider.Search(context.Background(), "blanket", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Price != "$29.00" {
		t.Errorf("object price: got %s, want $29.00", results[0].Price)
	}
	if results[1].Price != "$35.00" {
		t.Errorf("string price: got %s, want $35.00", results[1].Price)
	}
	for _, r := range results {
		if r.Retailer != domain.RetailerTarget {
			t.Errorf("expected target retailer tag, got %s", r.Retailer)
		}
	}
}

func TestSerpClient_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of credits", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := NewSerpClient("k", WithSerpBaseURL(server.URL))
	provider := NewWalmartProvider(client)

	if _, err := provider.Search(context.Background(), "anything", SearchOptions{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestSerpClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	client := NewSerpClient("k", WithSerpBaseURL(server.URL))
	provider := NewWalmartProvider(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := provider.Search(ctx, "anything", SearchOptions{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
