package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/kjstillabower/weather-archive-service/internal/client"
)

type mockArchiveClient struct {
	body   string
	err    error
	params url.Values
	calls  int
}

func (m *mockArchiveClient) FetchArchive(ctx context.Context, params url.Values) (client.Body, error) {
	m.calls++
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	var body client.Body
	if err := json.Unmarshal([]byte(m.body), &body); err != nil {
		return nil, &client.MalformedResponseError{Body: m.body, Err: err}
	}
	return body, nil
}

const dayFixture = `{
	"latitude": 52.5,
	"longitude": 13.4,
	"hourly": {
		"time": ["2023-01-01T00:00", "2023-01-01T06:00", "2023-01-01T12:00", "2023-01-01T18:00",
		         "2023-01-02T00:00", "2023-01-02T06:00", "2023-01-02T12:00", "2023-01-02T18:00"],
		"temperature_2m": [-1.5, 0.2, 4.8, 2.1, -0.7, 1.0, 5.6, 3.3]
	}
}`

func TestTemperatureService_FetchTemperature_ExactMatch(t *testing.T) {
	mock := &mockArchiveClient{body: dayFixture}
	svc := NewTemperatureService(mock)

	at := utc(2023, 1, 1, 12)
	got, err := svc.FetchTemperature(context.Background(), 52.52, 13.41, at)
	if err != nil {
		t.Fatalf("FetchTemperature() error = %v", err)
	}
	if !got.MeasureDateTime.Equal(at) {
		t.Errorf("MeasureDateTime = %v, want %v", got.MeasureDateTime, at)
	}
	if got.Temperature != 4.8 {
		t.Errorf("Temperature = %v, want 4.8", got.Temperature)
	}
	if got.Latitude != 52.5 || got.Longitude != 13.4 {
		t.Errorf("coordinates = (%v, %v), want upstream grid cell (52.5, 13.4)", got.Latitude, got.Longitude)
	}
	if mock.params.Get("start_date") != "2023-01-01" || mock.params.Get("end_date") != "2023-01-01" {
		t.Errorf("params dates = %q..%q, want single day 2023-01-01", mock.params.Get("start_date"), mock.params.Get("end_date"))
	}
	if mock.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", mock.calls)
	}
}

func TestTemperatureService_FetchTemperature_Nearest(t *testing.T) {
	svc := NewTemperatureService(&mockArchiveClient{body: dayFixture})

	got, err := svc.FetchTemperature(context.Background(), 52.52, 13.41, utc(2023, 1, 1, 16))
	if err != nil {
		t.Fatalf("FetchTemperature() error = %v", err)
	}
	if want := utc(2023, 1, 1, 18); !got.MeasureDateTime.Equal(want) {
		t.Errorf("MeasureDateTime = %v, want %v", got.MeasureDateTime, want)
	}
	if got.Temperature != 2.1 {
		t.Errorf("Temperature = %v, want 2.1", got.Temperature)
	}
}

func TestTemperatureService_FetchTemperature_UsesUTCDate(t *testing.T) {
	mock := &mockArchiveClient{body: dayFixture}
	svc := NewTemperatureService(mock)

	at := time.Date(2023, 1, 2, 0, 30, 0, 0, time.FixedZone("CET", 3600))
	if _, err := svc.FetchTemperature(context.Background(), 0, 0, at); err != nil {
		t.Fatalf("FetchTemperature() error = %v", err)
	}
	if got := mock.params.Get("start_date"); got != "2023-01-01" {
		t.Errorf("start_date = %q, want 2023-01-01", got)
	}
}

func TestTemperatureService_FetchTemperature_NotFound(t *testing.T) {
	svc := NewTemperatureService(&mockArchiveClient{body: `{"latitude": 1, "longitude": 2, "hourly": {"time": [], "temperature_2m": []}}`})

	_, err := svc.FetchTemperature(context.Background(), 1, 2, utc(2023, 1, 1, 0))
	if !errors.Is(err, ErrNoMatchingTimestamp) {
		t.Errorf("FetchTemperature() error = %v, want ErrNoMatchingTimestamp", err)
	}
}

func TestTemperatureService_FetchTemperature_UpstreamError(t *testing.T) {
	svc := NewTemperatureService(&mockArchiveClient{err: &client.UpstreamError{StatusCode: 400, Body: "bad"}})

	_, err := svc.FetchTemperature(context.Background(), 1, 2, utc(2023, 1, 1, 0))
	var upstreamErr *client.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("FetchTemperature() error = %v, want *UpstreamError", err)
	}
	if upstreamErr.StatusCode != 400 {
		t.Errorf("StatusCode = %d, want 400", upstreamErr.StatusCode)
	}
}

func TestTemperatureService_FetchTemperature_Malformed(t *testing.T) {
	svc := NewTemperatureService(&mockArchiveClient{body: `{"hourly": {"time": ["nope"], "temperature_2m": [1]}}`})

	_, err := svc.FetchTemperature(context.Background(), 1, 2, utc(2023, 1, 1, 0))
	var malformedErr *client.MalformedResponseError
	if !errors.As(err, &malformedErr) {
		t.Errorf("FetchTemperature() error = %v, want *MalformedResponseError", err)
	}
}

func TestTemperatureService_FetchTemperatureRange(t *testing.T) {
	noon := 12
	midnight := 0

	tests := []struct {
		name      string
		hour      *int
		wantCount int
	}{
		{"no filter", nil, 8},
		{"noon", &noon, 2},
		{"midnight", &midnight, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockArchiveClient{body: dayFixture}
			svc := NewTemperatureService(mock)

			series, err := svc.FetchTemperatureRange(context.Background(), 52.52, 13.41, utc(2023, 1, 1, 0), utc(2023, 1, 2, 0), tt.hour)
			if err != nil {
				t.Fatalf("FetchTemperatureRange() error = %v", err)
			}
			if len(series.Temperatures) != tt.wantCount {
				t.Errorf("len(Temperatures) = %d, want %d", len(series.Temperatures), tt.wantCount)
			}
			if tt.hour != nil {
				for ts := range series.Temperatures {
					if ts.Hour() != *tt.hour {
						t.Errorf("entry %s has hour %d, want %d", ts, ts.Hour(), *tt.hour)
					}
				}
			}
			if mock.params.Get("start_date") != "2023-01-01" || mock.params.Get("end_date") != "2023-01-02" {
				t.Errorf("params dates = %q..%q, want 2023-01-01..2023-01-02", mock.params.Get("start_date"), mock.params.Get("end_date"))
			}
		})
	}
}

func TestTemperatureService_FetchTemperatureRange_Error(t *testing.T) {
	svc := NewTemperatureService(&mockArchiveClient{err: context.DeadlineExceeded})

	_, err := svc.FetchTemperatureRange(context.Background(), 1, 2, utc(2023, 1, 1, 0), utc(2023, 1, 2, 0), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("FetchTemperatureRange() error = %v, want wrapped context.DeadlineExceeded", err)
	}
}
