package pricing

import (
	"testing"

	"needlist/internal/domain"
)

func TestBestPrice_LowestAvailableWins(t *testing.T) {
	p := &domain.ItemPricing{
		Amazon:  &domain.RetailerPrice{Available: true, Price: "$20.00"},
		Walmart: &domain.RetailerPrice{Available: true, Price: "$15.50"},
		Target:  &domain.RetailerPrice{Available: false, Price: "$10.00"},
	}

	got, ok := BestPrice(p)
	if !ok {
		t.Fatal("expected a best price")
	}
	// Target's lower price is ignored because it is unavailable.
	if got != "$15.50" {
		t.Errorf("BestPrice = %s, want $15.50", got)
	}
}

func TestBestPrice_NoneAvailable(t *testing.T) {
	tests := []struct {
		name string
		p    *domain.ItemPricing
	}{
		{"nil pricing", nil},
		{"empty pricing", &domain.ItemPricing{}},
		{"only unavailable", &domain.ItemPricing{
			Amazon: &domain.RetailerPrice{Available: false, Price: "$5.00"},
		}},
		{"available but no price", &domain.ItemPricing{
			Walmart: &domain.RetailerPrice{Available: true},
		}},
		{"available but unparseable", &domain.ItemPricing{
			Walmart: &domain.RetailerPrice{Available: true, Price: "Price varies"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := BestPrice(tt.p); ok {
				t.Errorf("expected no best price, got %s", got)
			}
		})
	}
}

func TestBestPrice_Reformats(t *testing.T) {
	p := &domain.ItemPricing{
		Amazon: &domain.RetailerPrice{Available: true, Price: "$7.5"},
	}
	got, ok := BestPrice(p)
	if !ok || got != "$7.50" {
		t.Errorf("BestPrice = %s, want $7.50", got)
	}
}
