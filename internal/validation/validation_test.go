package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParsePointQuery_Valid(t *testing.T) {
	values := url.Values{
		"latitude":      {"52.52"},
		"longitude":     {"-13.41"},
		"date_and_time": {"2023-01-01T12:30:00"},
	}
	q, err := ParsePointQuery(values)
	if err != nil {
		t.Fatalf("ParsePointQuery() error = %v", err)
	}
	if q.Latitude != 52.52 || q.Longitude != -13.41 {
		t.Errorf("coordinates = (%v, %v), want (52.52, -13.41)", q.Latitude, q.Longitude)
	}
	if want := time.Date(2023, 1, 1, 12, 30, 0, 0, time.UTC); !q.DateAndTime.Equal(want) {
		t.Errorf("DateAndTime = %v, want %v", q.DateAndTime, want)
	}
}

func TestParsePointQuery_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		values   url.Values
		wantText string
	}{
		{"missing all", url.Values{}, "latitude is required"},
		{"latitude too high", url.Values{"latitude": {"90.1"}, "longitude": {"0"}, "date_and_time": {"2023-01-01T00:00"}}, "latitude must be less than or equal to 90"},
		{"longitude too low", url.Values{"latitude": {"0"}, "longitude": {"-180.5"}, "date_and_time": {"2023-01-01T00:00"}}, "longitude must be greater than or equal to -180"},
		{"latitude not a number", url.Values{"latitude": {"north"}, "longitude": {"0"}, "date_and_time": {"2023-01-01T00:00"}}, "latitude must be a number"},
		{"NaN latitude", url.Values{"latitude": {"NaN"}, "longitude": {"0"}, "date_and_time": {"2023-01-01T00:00"}}, "latitude"},
		{"bad datetime", url.Values{"latitude": {"0"}, "longitude": {"0"}, "date_and_time": {"yesterday"}}, "date_and_time must be an ISO-8601 datetime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePointQuery(tt.values)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("error = %v, want ErrInvalidQuery", err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantText)
			}
		})
	}
}

func TestParsePointQuery_ReportsAllIssues(t *testing.T) {
	_, err := ParsePointQuery(url.Values{"latitude": {"100"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"longitude is required", "date_and_time is required", "latitude must be less than or equal to 90"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to contain %q", err.Error(), want)
		}
	}
}

func TestParseRangeQuery_Valid(t *testing.T) {
	values := url.Values{
		"latitude":  {"-90"},
		"longitude": {"180"},
		"from_date": {"2023-01-01"},
		"to_date":   {"2023-01-07"},
	}
	q, err := ParseRangeQuery(values)
	if err != nil {
		t.Fatalf("ParseRangeQuery() error = %v", err)
	}
	if q.FilterByHour != nil {
		t.Errorf("FilterByHour = %v, want nil when absent", *q.FilterByHour)
	}
	if want := time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC); !q.ToDate.Equal(want) {
		t.Errorf("ToDate = %v, want %v", q.ToDate, want)
	}
}

func TestParseRangeQuery_FilterByHour(t *testing.T) {
	base := func(hour string) url.Values {
		return url.Values{
			"latitude":       {"10"},
			"longitude":      {"10"},
			"from_date":      {"2023-01-01"},
			"to_date":        {"2023-01-02"},
			"filter_by_hour": {hour},
		}
	}

	for _, hour := range []int{0, 12, 24} {
		q, err := ParseRangeQuery(base(fmt.Sprint(hour)))
		if err != nil {
			t.Fatalf("ParseRangeQuery(filter_by_hour=%d) error = %v", hour, err)
		}
		if q.FilterByHour == nil || *q.FilterByHour != hour {
			t.Errorf("FilterByHour = %v, want %d", q.FilterByHour, hour)
		}
	}

	for _, bad := range []string{"-1", "25", "noon", "1.5"} {
		if _, err := ParseRangeQuery(base(bad)); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ParseRangeQuery(filter_by_hour=%s) error = %v, want ErrInvalidQuery", bad, err)
		}
	}
}

func TestParseRangeQuery_BadDates(t *testing.T) {
	values := url.Values{
		"latitude":  {"0"},
		"longitude": {"0"},
		"from_date": {"2023/01/01"},
		"to_date":   {"2023-02-30"},
	}
	_, err := ParseRangeQuery(values)
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
	for _, want := range []string{"from_date must be a date", "to_date must be a date"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want it to contain %q", err.Error(), want)
		}
	}
}
