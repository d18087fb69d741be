package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/types"
)

// CityZones groups the zones of one city.
type CityZones struct {
	City     string        `json:"city"`
	Province string        `json:"province"`
	Zones    []models.Zone `json:"zones"`
}

// ZoneService serves zone and icon reference data.
type ZoneService struct {
	zones *repository.ZoneRepository
}

func NewZoneService(zones *repository.ZoneRepository) *ZoneService {
	return &ZoneService{zones: zones}
}

// List filters zones by city, province and search, sorted by sort/order.
func (s *ZoneService) List(ctx context.Context, q map[string]string) ([]models.Zone, error) {
	rows, err := s.zones.FindAll(ctx, repository.ZoneFilter{
		City:     strings.TrimSpace(q["city"]),
		Province: strings.TrimSpace(q["province"]),
		Search:   strings.TrimSpace(q["search"]),
		Sort:     q["sort"],
		Order:    q["order"],
	})
	if err != nil {
		return nil, types.FromStorage(err, "Zones")
	}
	return nonNil(rows), nil
}

func (s *ZoneService) Get(ctx context.Context, id uint) (*models.Zone, error) {
	z, err := s.zones.FindByID(ctx, id)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Zone with ID %d", id))
	}
	return z, nil
}

// Cities groups every zone under its city, cities in name order.
func (s *ZoneService) Cities(ctx context.Context) ([]CityZones, error) {
	rows, err := s.zones.ByCity(ctx)
	if err != nil {
		return nil, types.FromStorage(err, "Zones")
	}
	out := []CityZones{}
	for _, z := range rows {
		if n := len(out); n > 0 && out[n-1].City == z.City {
			out[n-1].Zones = append(out[n-1].Zones, z)
			continue
		}
		out = append(out, CityZones{City: z.City, Province: z.Province, Zones: []models.Zone{z}})
	}
	return out, nil
}

// Seed upserts zones by name.
func (s *ZoneService) Seed(ctx context.Context, zones []models.Zone) (int64, error) {
	n, err := s.zones.Upsert(ctx, zones)
	if err != nil {
		return 0, types.FromStorage(err, "Zones")
	}
	return n, nil
}

// Icons lists every active icon.
func (s *ZoneService) Icons(ctx context.Context) ([]models.Icon, error) {
	rows, err := s.zones.ActiveIcons(ctx, "")
	if err != nil {
		return nil, types.FromStorage(err, "Icons")
	}
	return nonNil(rows), nil
}

// IconsByPrefix returns the active icons of one prefix keyed by sub name.
// Icons without a sub name are filed under "default".
func (s *ZoneService) IconsByPrefix(ctx context.Context, prefix string) (map[string][]models.Icon, error) {
	rows, err := s.zones.ActiveIcons(ctx, prefix)
	if err != nil {
		return nil, types.FromStorage(err, "Icons")
	}
	groups := make(map[string][]models.Icon)
	for _, icon := range rows {
		key := icon.SubName
		if key == "" {
			key = "default"
		}
		groups[key] = append(groups[key], icon)
	}
	return groups, nil
}

func (s *ZoneService) Icon(ctx context.Context, id uint) (*models.Icon, error) {
	icon, err := s.zones.FindIcon(ctx, id)
	if err != nil {
		return nil, types.FromStorage(err, fmt.Sprintf("Icon with ID %d", id))
	}
	return icon, nil
}

// LoadZones parses zone seed data.
func LoadZones(data []byte) ([]models.Zone, error) {
	var zones []models.Zone
	if err := json.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("failed to parse zone seed data: %w", err)
	}
	return zones, nil
}
