package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kjstillabower/weather-archive-service/internal/client"
	"github.com/kjstillabower/weather-archive-service/internal/models"
)

// ParseSeries builds a TemperatureSeries from an archive body.
//
// The hourly section holds parallel arrays. They are paired by position in the
// order the provider emits them: the first array is timestamps, the second is
// temperatures. Key names are not consulted. A missing hourly section yields an
// empty series; any other shape is a *client.MalformedResponseError.
func ParseSeries(body client.Body) (models.TemperatureSeries, error) {
	lat, err := coordinate(body, "latitude")
	if err != nil {
		return models.TemperatureSeries{}, malformed(body, err)
	}
	lon, err := coordinate(body, "longitude")
	if err != nil {
		return models.TemperatureSeries{}, malformed(body, err)
	}

	temps, err := parseHourly(body["hourly"])
	if err != nil {
		return models.TemperatureSeries{}, malformed(body, err)
	}

	return models.TemperatureSeries{
		Latitude:     lat,
		Longitude:    lon,
		Temperatures: temps,
	}, nil
}

// coordinate reads a top-level number, 0 when absent. An explicit null is malformed.
func coordinate(body client.Body, key string) (float64, error) {
	raw, ok := body[key]
	if !ok {
		return 0, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return 0, fmt.Errorf("%s: null", key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func parseHourly(raw json.RawMessage) (map[time.Time]float64, error) {
	temps := make(map[time.Time]float64)
	if raw == nil {
		return temps, nil
	}

	arrays, err := orderedValues(raw)
	if err != nil {
		return nil, fmt.Errorf("hourly: %w", err)
	}
	if len(arrays) == 0 {
		return temps, nil
	}
	if len(arrays) != 2 {
		return nil, fmt.Errorf("hourly: expected 2 parallel arrays, got %d", len(arrays))
	}

	var stamps []string
	if err := json.Unmarshal(arrays[0], &stamps); err != nil {
		return nil, fmt.Errorf("hourly timestamps: %w", err)
	}
	var values []*float64
	if err := json.Unmarshal(arrays[1], &values); err != nil {
		return nil, fmt.Errorf("hourly temperatures: %w", err)
	}
	if len(stamps) != len(values) {
		return nil, fmt.Errorf("hourly: %d timestamps but %d temperatures", len(stamps), len(values))
	}

	for i, s := range stamps {
		ts, err := models.ParseISO8601(s)
		if err != nil {
			return nil, err
		}
		if values[i] == nil {
			return nil, fmt.Errorf("hourly: missing temperature at %s", s)
		}
		temps[ts] = *values[i]
	}
	return temps, nil
}

// orderedValues returns the values of a JSON object in document order.
func orderedValues(raw json.RawMessage) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("not an object")
	}

	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func malformed(body client.Body, err error) error {
	raw, _ := json.Marshal(body)
	return &client.MalformedResponseError{Body: string(raw), Err: err}
}

// NearestTimestamp returns the candidate closest to target. Equidistant candidates
// resolve to the earliest one. ok is false when candidates is empty.
func NearestTimestamp(candidates []time.Time, target time.Time) (nearest time.Time, ok bool) {
	var best time.Duration
	for _, c := range candidates {
		d := absDuration(c.Sub(target))
		if !ok || d < best || (d == best && c.Before(nearest)) {
			nearest, best, ok = c, d, true
		}
	}
	return nearest, ok
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// FilterByHour keeps only the entries whose hour of day equals *hour.
// A nil hour disables filtering and returns temps itself; otherwise a new map is returned.
func FilterByHour(temps map[time.Time]float64, hour *int) map[time.Time]float64 {
	if hour == nil {
		return temps
	}
	filtered := make(map[time.Time]float64)
	for ts, v := range temps {
		if ts.Hour() == *hour {
			filtered[ts] = v
		}
	}
	return filtered
}
