package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"needlist/internal/domain"
)

func TestPricingStream(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/wishlist/wl-1/pricing"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	waves := map[string]waveUpdate{}
	for {
		var update waveUpdate
		if err := conn.ReadJSON(&update); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			t.Fatalf("read update: %v", err)
		}
		waves[update.Wave] = update
		if update.Wave == "complete" {
			break
		}
	}

	if _, ok := waves["fast"]; !ok {
		t.Error("no fast wave update received")
	}
	if _, ok := waves["slow"]; !ok {
		t.Error("no slow wave update received")
	}

	final, ok := waves["complete"]
	if !ok {
		t.Fatal("no completion frame received")
	}

	p := final.Data["item-1"].Pricing
	if p == nil {
		t.Fatal("no pricing for item-1 in final snapshot")
	}
	for _, r := range domain.AllRetailers() {
		if p.Get(r) == nil {
			t.Errorf("final snapshot missing %s", r)
		}
	}
}

func TestPricingStream_UnknownWishlist(t *testing.T) {
	ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/wishlist/nope/pricing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown wishlist")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
	resp.Body.Close()
}
