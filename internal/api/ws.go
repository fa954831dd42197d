package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"needlist/internal/domain"
	"needlist/internal/pricing"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The stream is read-only pricing data for the caller's own wishlist;
	// cross-origin pages may subscribe.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// waveUpdate is one pushed message on the pricing stream.
type waveUpdate struct {
	Wave string                        `json:"wave"`
	Data map[string]itemPricingPayload `json:"data"`
}

// handlePricingStream upgrades to a WebSocket and pushes a merged pricing
// snapshot for the wishlist as each wave lands, then a final "complete"
// frame, then closes.
func (s *Server) handlePricingStream(w http.ResponseWriter, r *http.Request) {
	items := s.loadItems(w, r.Context(), r.PathValue("id"))
	if items == nil {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.WSClientsActive.Inc()
		defer s.metrics.WSClientsActive.Dec()
	}

	m := pricing.NewMap()

	// Waves complete concurrently; gorilla allows one writer at a time.
	var writeMu sync.Mutex
	push := func(wave string) {
		writeMu.Lock()
		defer writeMu.Unlock()
		update := waveUpdate{Wave: wave, Data: snapshotFor(m, items)}
		if err := conn.WriteJSON(update); err != nil {
			s.logger.Printf("websocket write: %v", err)
		}
	}

	if err := s.pricer.FetchProgressive(r.Context(), items, m, push); err != nil {
		s.logger.Printf("pricing stream: %v", err)
		return
	}

	push("complete")

	writeMu.Lock()
	defer writeMu.Unlock()
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// snapshotFor extracts the current pricing of the given items from the map.
func snapshotFor(m *pricing.Map, items []domain.WishlistItem) map[string]itemPricingPayload {
	out := make(map[string]itemPricingPayload, len(items))
	for _, item := range items {
		if p, ok := m.Get(item.ID); ok {
			out[item.ID] = itemPricingPayload{Pricing: p}
		}
	}
	return out
}
