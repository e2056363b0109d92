package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/validation"
)

// StationAPI is the /Station transport used by StationService.
type StationAPI interface {
	List(ctx context.Context) ([]models.Station, error)
	Get(ctx context.Context, id string) (models.Station, error)
	Create(ctx context.Context, record map[string]any) (models.Station, error)
	Update(ctx context.Context, id string, record map[string]any) (models.Station, error)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (models.Station, error)
}

// StationService validates station writes locally before calling the backend.
type StationService struct {
	api    StationAPI
	batch  BatchOptions
	logger *zap.Logger
}

// NewStationService builds StationService.
func NewStationService(api StationAPI, batch BatchOptions, logger *zap.Logger) *StationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StationService{api: api, batch: batch.withDefaults(), logger: logger}
}

// List returns every station.
func (s *StationService) List(ctx context.Context) ([]models.Station, error) {
	stations, err := s.api.List(ctx)
	if err != nil {
		return nil, normalize(err, "Failed to fetch stations")
	}
	return stations, nil
}

// Get returns one station.
func (s *StationService) Get(ctx context.Context, id string) (models.Station, error) {
	if strings.TrimSpace(id) == "" {
		return models.Station{}, invalid("Station ID is required")
	}
	st, err := s.api.Get(ctx, id)
	if err != nil {
		return models.Station{}, normalize(err, "Failed to fetch station")
	}
	return st, nil
}

// Create sanitizes and validates in, then posts it.
func (s *StationService) Create(ctx context.Context, in models.StationInput) (models.Station, error) {
	record := validation.Sanitize(in.Record())
	if errs := validation.StationSchema.Validate(record); len(errs) > 0 {
		return models.Station{}, validationError(errs)
	}
	st, err := s.api.Create(ctx, record)
	if err != nil {
		return models.Station{}, normalize(err, "Failed to create station")
	}
	s.logger.Info("station created", zap.String("station_id", st.ID))
	return st, nil
}

// Update sends only the fields present in patch, each validated with its
// create rule.
func (s *StationService) Update(ctx context.Context, id string, patch models.StationPatch) (models.Station, error) {
	if strings.TrimSpace(id) == "" {
		return models.Station{}, invalid("Station ID is required")
	}
	record := validation.Sanitize(patch.Record())
	if len(record) == 0 {
		return models.Station{}, invalid("No fields to update")
	}
	if errs := validation.StationSchema.Partial(record).Validate(record); len(errs) > 0 {
		return models.Station{}, validationError(errs)
	}
	st, err := s.api.Update(ctx, id, record)
	if err != nil {
		return models.Station{}, normalize(err, "Failed to update station")
	}
	return st, nil
}

// Delete removes an inactive station. Active stations are refused before
// any DELETE is issued.
func (s *StationService) Delete(ctx context.Context, id string) error {
	st, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if st.IsActive {
		return conflict("station must be deactivated before deletion")
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return normalize(err, "Failed to delete station")
	}
	s.logger.Info("station deleted", zap.String("station_id", id))
	return nil
}

// Activate marks a station active.
func (s *StationService) Activate(ctx context.Context, id string) (models.Station, error) {
	return s.setActive(ctx, id, true)
}

// Deactivate marks a station inactive.
func (s *StationService) Deactivate(ctx context.Context, id string) (models.Station, error) {
	return s.setActive(ctx, id, false)
}

func (s *StationService) setActive(ctx context.Context, id string, active bool) (models.Station, error) {
	if strings.TrimSpace(id) == "" {
		return models.Station{}, invalid("Station ID is required")
	}
	st, err := s.api.SetActive(ctx, id, active)
	if err != nil {
		fallback := "Failed to deactivate station"
		if active {
			fallback = "Failed to activate station"
		}
		return models.Station{}, normalize(err, fallback)
	}
	return st, nil
}

// BatchCreate creates stations in bounded concurrent groups.
func (s *StationService) BatchCreate(ctx context.Context, inputs []models.StationInput) []BatchResult[models.Station] {
	results := RunBatch(ctx, inputs, s.batch, s.Create)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	s.logger.Info("station batch finished", zap.Int("total", len(results)), zap.Int("failed", failed))
	return results
}

// StationFilter narrows the station table. Type "" or "All" keeps both types.
type StationFilter struct {
	Search string
	Type   string
}

// FilterStations matches Search against name and location, case-insensitively.
func FilterStations(stations []models.Station, f StationFilter) []models.Station {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		if f.Type != "" && f.Type != "All" && string(st.Type) != f.Type {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(st.Name), search) &&
			!strings.Contains(strings.ToLower(st.Location), search) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// ComputeStationStats builds the overview counters.
func ComputeStationStats(stations []models.Station) models.StationStats {
	var stats models.StationStats
	stats.Total = len(stations)
	for _, st := range stations {
		if st.IsActive {
			stats.Active++
		}
		switch st.Type {
		case models.ChargingTypeAC:
			stats.AC++
		case models.ChargingTypeDC:
			stats.DC++
		}
		stats.TotalSlots += st.AvailableSlots
	}
	stats.Inactive = stats.Total - stats.Active
	stats.ACPercentage = percentage(stats.AC, stats.Total)
	stats.DCPercentage = percentage(stats.DC, stats.Total)
	return stats
}

func percentage(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
