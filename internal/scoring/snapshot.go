package scoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/hidroplan/rhnr-scoring/internal/criteria"
	"github.com/hidroplan/rhnr-scoring/internal/domain"
	"github.com/hidroplan/rhnr-scoring/internal/observability"
)

// waterSecurityMotive folds the ISH band into the boolean the categorical
// table scores: a low water-security band is a motive to keep the station.
var waterSecurityMotive = map[string]bool{
	"Mínimo": true,
	"Baixo":  true,
	"Médio":  false,
	"Alto":   false,
	"Máximo": false,
}

// BuildSnapshot computes the raw value of every registered criterion for
// every station, producing the immutable snapshot a scoring run consumes.
// The first calculator error aborts the build; calculators that degrade
// (series extent, discharge frequency, proximity) have already turned their
// "no data" cases into zero or Null values.
func BuildSnapshot(ctx context.Context, registry *criteria.Registry, stations []domain.Station, logger *slog.Logger, metrics *observability.Metrics) ([]domain.StationRawValues, error) {
	start := time.Now()
	snapshot := make([]domain.StationRawValues, 0, len(stations))

	for _, station := range stations {
		values := make(map[string]domain.RawValue, len(registry.Criteria()))
		for _, criterion := range registry.Criteria() {
			raw, err := criterion.Calculate(ctx, station)
			if err != nil {
				metrics.CalculatorErrors.Inc()
				return nil, &domain.CalculatorError{
					FieldName:   criterion.FieldName,
					StationCode: station.Code,
					Err:         err,
				}
			}
			values[criterion.FieldName] = foldValue(criterion.FieldName, raw)
		}
		snapshot = append(snapshot, domain.StationRawValues{
			StationCode: station.Code,
			Values:      values,
		})
		logger.Debug("raw values computed", "station", station.Code)
	}

	metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	return snapshot, nil
}

// foldValue applies presentation-independent raw-value folding: the ISH band
// becomes the boolean its yes/no table expects. Everything else passes
// through unchanged.
func foldValue(field string, raw domain.RawValue) domain.RawValue {
	if field != criteria.FieldWaterSecurity || raw.Kind != domain.KindCategory {
		return raw
	}
	return domain.Boolean(waterSecurityMotive[raw.Category])
}
