package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"needlist/internal/domain"
	"needlist/internal/pricing"
	"needlist/internal/retailer"
	"needlist/internal/storage"
)

// itemPricingPayload wraps one item's per-retailer offers.
type itemPricingPayload struct {
	Pricing *domain.ItemPricing `json:"pricing"`
}

// bestPricePayload is the single-item response: all offers plus the lowest
// available one.
type bestPricePayload struct {
	Pricing   *domain.ItemPricing `json:"pricing"`
	BestPrice string              `json:"best_price"`
}

// handleSearch runs the parallel retailer search.
// 200 with {"data": [...]} always, even for zero results; 400 only for a
// missing query.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	results, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.logger.Printf("search %q: %v", query, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeData(w, http.StatusOK, results)
}

// loadItems resolves a wishlist and its items, mapping storage.ErrNotFound
// to a 404. Returns nil items when the response has already been written.
func (s *Server) loadItems(w http.ResponseWriter, ctx context.Context, wishlistID string) []domain.WishlistItem {
	if _, err := s.wishlists.GetByID(ctx, wishlistID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "wishlist not found")
		} else {
			s.logger.Printf("get wishlist %s: %v", wishlistID, err)
			writeError(w, http.StatusInternalServerError, "storage failure")
		}
		return nil
	}

	stored, err := s.items.GetByWishlistID(ctx, wishlistID)
	if err != nil {
		s.logger.Printf("get items for wishlist %s: %v", wishlistID, err)
		writeError(w, http.StatusInternalServerError, "storage failure")
		return nil
	}

	items := make([]domain.WishlistItem, 0, len(stored))
	for _, item := range stored {
		items = append(items, *item)
	}
	return items
}

// handleWishlistPricing returns the fast wave for every item on a wishlist.
func (s *Server) handleWishlistPricing(w http.ResponseWriter, r *http.Request) {
	items := s.loadItems(w, r.Context(), r.PathValue("id"))
	if items == nil {
		return
	}

	wave, err := s.pricer.FastWave(r.Context(), items)
	if err != nil {
		s.logger.Printf("fast wave: %v", err)
		writeError(w, http.StatusInternalServerError, "pricing failed")
		return
	}

	writeData(w, http.StatusOK, envelopePricing(wave))
}

// handleWishlistAmazonPricing returns the slow wave, amazon key only.
func (s *Server) handleWishlistAmazonPricing(w http.ResponseWriter, r *http.Request) {
	items := s.loadItems(w, r.Context(), r.PathValue("id"))
	if items == nil {
		return
	}

	wave, err := s.pricer.SlowWave(r.Context(), items)
	if err != nil {
		s.logger.Printf("slow wave: %v", err)
		writeError(w, http.StatusInternalServerError, "pricing failed")
		return
	}

	writeData(w, http.StatusOK, envelopePricing(wave))
}

// handleItemPricing prices one item against every retailer and selects the
// lowest available offer.
func (s *Server) handleItemPricing(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("id")

	item, err := s.items.GetByID(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
		} else {
			s.logger.Printf("get item %s: %v", itemID, err)
			writeError(w, http.StatusInternalServerError, "storage failure")
		}
		return
	}

	p := s.pricer.PriceItem(r.Context(), *item)

	best, ok := pricing.BestPrice(p)
	if !ok {
		best = retailer.PriceNotAvailable
	}

	writeData(w, http.StatusOK, bestPricePayload{Pricing: p, BestPrice: best})
}

// envelopePricing shapes a wave result as {itemID: {"pricing": {...}}}.
func envelopePricing(wave map[string]*domain.ItemPricing) map[string]itemPricingPayload {
	out := make(map[string]itemPricingPayload, len(wave))
	for itemID, p := range wave {
		out[itemID] = itemPricingPayload{Pricing: p}
	}
	return out
}
