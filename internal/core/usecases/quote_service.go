package usecases

import (
	"context"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

// QuoteService turns a cart plus a delivery address into a chargeable quote.
type QuoteService struct {
	geocoder ports.Geocoder
	zones    *ZoneService
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(geocoder ports.Geocoder, zones *ZoneService) *QuoteService {
	return &QuoteService{geocoder: geocoder, zones: zones}
}

// ResolveZone geocodes the address and matches the resulting coordinate
// against the zone list. A nil address degrades to "no zone" without error;
// geocoding failures surface to the caller as typed errors so the checkout
// UI can tell "address not found" from "provider down".
func (s *QuoteService) ResolveZone(ctx context.Context, addr *domain.Address) (MatchResult, error) {
	if addr == nil {
		return s.zones.Match(ctx, nil)
	}

	point, err := s.geocoder.Geocode(ctx, addr.Street, addr.HouseNumber, addr.City)
	if err != nil {
		return MatchResult{}, err
	}
	return s.zones.Match(ctx, point)
}

// QuoteCart assembles the live quote for a cart and a resolved zone match.
func (s *QuoteService) QuoteCart(items []domain.CartLineItem, match MatchResult) domain.Quote {
	metrics.QuotesComputed.Inc()
	return domain.AssembleQuote(items, TransportCost(match), match.Zone)
}

// QuoteForAddress is the one-shot path used by checkout and the live cart
// view: resolve the address, then price the cart against it.
func (s *QuoteService) QuoteForAddress(ctx context.Context, items []domain.CartLineItem, addr *domain.Address) (domain.Quote, error) {
	match, err := s.ResolveZone(ctx, addr)
	if err != nil {
		return domain.Quote{}, err
	}
	return s.QuoteCart(items, match), nil
}
