package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-archive-service/internal/client"
	"github.com/kjstillabower/weather-archive-service/internal/models"
	"github.com/kjstillabower/weather-archive-service/internal/observability"
)

// ErrNoMatchingTimestamp is returned when the archive has no hourly values to pick from.
var ErrNoMatchingTimestamp = errors.New("no temperature found")

// TemperatureService answers point and range temperature queries from the archive API.
// It holds no per-request state and is safe for concurrent use.
type TemperatureService struct {
	client client.ArchiveClient
}

// NewTemperatureService creates a TemperatureService backed by the given archive client.
func NewTemperatureService(client client.ArchiveClient) *TemperatureService {
	return &TemperatureService{client: client}
}

// FetchTemperature returns the hourly temperature closest to at, from the archive day containing at (UTC).
func (s *TemperatureService) FetchTemperature(ctx context.Context, latitude, longitude float64, at time.Time) (models.SingleTemperature, error) {
	at = at.UTC()
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	series, err := s.fetchSeries(ctx, client.BuildParams(latitude, longitude, at, nil))
	if err != nil {
		return models.SingleTemperature{}, err
	}

	nearest, ok := NearestTimestamp(slices.Collect(maps.Keys(series.Temperatures)), at)
	if !ok {
		return models.SingleTemperature{}, fmt.Errorf("%w for datetime %s", ErrNoMatchingTimestamp, at.Format(time.RFC3339))
	}

	logger.Debug("temperature served",
		zap.Time("requested", at),
		zap.Time("measured", nearest),
		zap.Duration("duration", time.Since(start)))
	return models.SingleTemperature{
		Latitude:        series.Latitude,
		Longitude:       series.Longitude,
		MeasureDateTime: nearest,
		Temperature:     series.Temperatures[nearest],
	}, nil
}

// FetchTemperatureRange returns the hourly series for [from, to]. When hour is non-nil
// only entries at that hour of day are kept.
func (s *TemperatureService) FetchTemperatureRange(ctx context.Context, latitude, longitude float64, from, to time.Time, hour *int) (models.TemperatureSeries, error) {
	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	series, err := s.fetchSeries(ctx, client.BuildParams(latitude, longitude, from, &to))
	if err != nil {
		return models.TemperatureSeries{}, err
	}
	series.Temperatures = FilterByHour(series.Temperatures, hour)

	logger.Debug("temperature range served",
		zap.Int("entries", len(series.Temperatures)),
		zap.Duration("duration", time.Since(start)))
	return series, nil
}

func (s *TemperatureService) fetchSeries(ctx context.Context, params url.Values) (models.TemperatureSeries, error) {
	body, err := s.client.FetchArchive(ctx, params)
	if err != nil {
		return models.TemperatureSeries{}, fmt.Errorf("fetch archive: %w", err)
	}
	series, err := ParseSeries(body)
	if err != nil {
		return models.TemperatureSeries{}, fmt.Errorf("parse archive: %w", err)
	}
	return series, nil
}
