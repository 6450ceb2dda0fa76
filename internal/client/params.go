package client

import (
	"net/url"
	"strconv"
	"time"
)

// DateFormat is the upstream start_date/end_date layout.
const DateFormat = "2006-01-02"

// BuildParams returns the archive query for hourly 2 m temperature between start
// and end. A nil end requests the single day start.
func BuildParams(latitude, longitude float64, start time.Time, end *time.Time) url.Values {
	last := start
	if end != nil {
		last = *end
	}
	params := url.Values{}
	params.Set("hourly", "temperature_2m")
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("start_date", start.Format(DateFormat))
	params.Set("end_date", last.Format(DateFormat))
	return params
}
