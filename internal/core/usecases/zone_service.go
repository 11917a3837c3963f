package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

const zoneListCacheKey = "zones:all"

// MatchResult is the outcome of resolving a coordinate against the zone list.
type MatchResult struct {
	// Zone is the effective zone after tie-breaking, nil when nothing matched.
	Zone *domain.Zone `json:"zone"`
	// AllMatches holds every zone whose boundary contains the point, in
	// input order. Overlapping zones are expected, not an error.
	AllMatches []domain.Zone `json:"all_matches"`
}

// MatchZones resolves a point against a list of zones. Pure: no I/O, the
// zone slice is not mutated.
//
// Tie-break among overlapping matches: the first active zone wins; if no
// active zone matched, the first match in input order; with no matches the
// result zone is nil. A nil point (address not geocoded) matches nothing.
// Zones whose boundary fails to parse are skipped and excluded from
// AllMatches — one corrupt zone must not block quoting for everyone.
func MatchZones(point *domain.GeoPoint, zones []domain.Zone) MatchResult {
	if point == nil {
		return MatchResult{}
	}

	var res MatchResult
	for _, z := range zones {
		geom, err := domain.ParseGeometry(z.Boundary)
		if err != nil {
			metrics.MalformedZoneGeometries.Inc()
			slog.Debug("skipping zone with malformed boundary", "zone_id", z.ID, "error", err)
			continue
		}
		if geom.Contains(*point) {
			res.AllMatches = append(res.AllMatches, z)
		}
	}

	for i := range res.AllMatches {
		if res.AllMatches[i].Active {
			res.Zone = &res.AllMatches[i]
			break
		}
	}
	if res.Zone == nil && len(res.AllMatches) > 0 {
		res.Zone = &res.AllMatches[0]
	}
	return res
}

// TransportCost resolves a match into a surcharge. An unmatched address
// travels free; a negative stored cost is clamped to zero.
func TransportCost(res MatchResult) decimal.Decimal {
	if res.Zone == nil {
		return decimal.Zero
	}
	if res.Zone.TransportCost.IsNegative() {
		return decimal.Zero
	}
	return res.Zone.TransportCost
}

// ZoneService handles zone administration and point matching.
type ZoneService struct {
	zones ports.ZoneRepository
	cache ports.CacheService
}

// NewZoneService creates a new ZoneService.
func NewZoneService(zones ports.ZoneRepository, cache ports.CacheService) *ZoneService {
	return &ZoneService{zones: zones, cache: cache}
}

// Match loads the zone list and resolves the point against it.
func (s *ZoneService) Match(ctx context.Context, point *domain.GeoPoint) (MatchResult, error) {
	zones, err := s.listAll(ctx)
	if err != nil {
		return MatchResult{}, err
	}

	res := MatchZones(point, zones)
	if res.Zone != nil {
		metrics.ZoneMatches.WithLabelValues("matched").Inc()
	} else {
		metrics.ZoneMatches.WithLabelValues("unmatched").Inc()
	}
	return res, nil
}

// List returns all zones in creation order.
func (s *ZoneService) List(ctx context.Context) ([]domain.Zone, error) {
	return s.listAll(ctx)
}

// GetByID returns a single zone.
func (s *ZoneService) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	return s.zones.GetByID(ctx, id)
}

// Create validates the boundary and stores a new zone. Write-time validation
// rejects bad geometry up front; match-time parsing stays lenient for rows
// that predate this check.
func (s *ZoneService) Create(ctx context.Context, z *domain.Zone) error {
	if err := s.validate(z); err != nil {
		return err
	}
	if err := s.zones.Create(ctx, z); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Update validates and stores zone changes.
func (s *ZoneService) Update(ctx context.Context, z *domain.Zone) error {
	if err := s.validate(z); err != nil {
		return err
	}
	if err := s.zones.Update(ctx, z); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a zone.
func (s *ZoneService) Delete(ctx context.Context, id string) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ZoneService) validate(z *domain.Zone) error {
	if z.Name == "" {
		return fmt.Errorf("zone name is required")
	}
	if z.TransportCost.IsNegative() {
		return fmt.Errorf("transport cost must not be negative")
	}
	if _, err := domain.ParseGeometry(z.Boundary); err != nil {
		return err
	}
	return nil
}

func (s *ZoneService) listAll(ctx context.Context) ([]domain.Zone, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, zoneListCacheKey); err == nil {
			var zones []domain.Zone
			if err := json.Unmarshal(data, &zones); err == nil {
				return zones, nil
			}
		}
	}

	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, err
	}

	// Zones change rarely; 5 minutes keeps admin edits reasonably fresh.
	if s.cache != nil {
		if data, err := json.Marshal(zones); err == nil {
			_ = s.cache.Set(ctx, zoneListCacheKey, data, 300)
		}
	}
	return zones, nil
}

func (s *ZoneService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, zoneListCacheKey)
	}
}
