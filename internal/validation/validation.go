package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kjstillabower/weather-archive-service/internal/models"
)

// ErrInvalidQuery is returned for any missing, unparsable or out-of-range query parameter.
var ErrInvalidQuery = errors.New("invalid query")

// DateLayout is the inbound from_date/to_date layout.
const DateLayout = "2006-01-02"

// PointQuery holds validated parameters for GET /weather-archive/temperature.
type PointQuery struct {
	Latitude    float64   `query:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64   `query:"longitude" validate:"gte=-180,lte=180"`
	DateAndTime time.Time `query:"date_and_time"`
}

// RangeQuery holds validated parameters for GET /weather-archive/temperature-range.
// FilterByHour is nil when the parameter was not supplied.
type RangeQuery struct {
	Latitude     float64   `query:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64   `query:"longitude" validate:"gte=-180,lte=180"`
	FromDate     time.Time `query:"from_date"`
	ToDate       time.Time `query:"to_date"`
	FilterByHour *int      `query:"filter_by_hour" validate:"omitnil,gte=0,lte=24"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("query"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// ParsePointQuery decodes and validates the single temperature query.
func ParsePointQuery(values url.Values) (PointQuery, error) {
	p := parser{values: values}
	q := PointQuery{
		Latitude:    p.float("latitude"),
		Longitude:   p.float("longitude"),
		DateAndTime: p.datetime("date_and_time"),
	}
	if err := p.finish(q); err != nil {
		return PointQuery{}, err
	}
	return q, nil
}

// ParseRangeQuery decodes and validates the temperature range query.
func ParseRangeQuery(values url.Values) (RangeQuery, error) {
	p := parser{values: values}
	q := RangeQuery{
		Latitude:     p.float("latitude"),
		Longitude:    p.float("longitude"),
		FromDate:     p.date("from_date"),
		ToDate:       p.date("to_date"),
		FilterByHour: p.optionalInt("filter_by_hour"),
	}
	if err := p.finish(q); err != nil {
		return RangeQuery{}, err
	}
	return q, nil
}

// parser collects per-field problems so a single response can report all of them.
type parser struct {
	values url.Values
	issues []string
}

func (p *parser) required(name string) (string, bool) {
	s := strings.TrimSpace(p.values.Get(name))
	if s == "" {
		p.issues = append(p.issues, name+" is required")
		return "", false
	}
	return s, true
}

func (p *parser) float(name string) float64 {
	s, ok := p.required(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.issues = append(p.issues, name+" must be a number")
		return 0
	}
	return f
}

func (p *parser) datetime(name string) time.Time {
	s, ok := p.required(name)
	if !ok {
		return time.Time{}
	}
	t, err := models.ParseISO8601(s)
	if err != nil {
		p.issues = append(p.issues, name+" must be an ISO-8601 datetime")
		return time.Time{}
	}
	return t
}

func (p *parser) date(name string) time.Time {
	s, ok := p.required(name)
	if !ok {
		return time.Time{}
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		p.issues = append(p.issues, name+" must be a date (YYYY-MM-DD)")
		return time.Time{}
	}
	return t
}

func (p *parser) optionalInt(name string) *int {
	s := strings.TrimSpace(p.values.Get(name))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.issues = append(p.issues, name+" must be an integer")
		return nil
	}
	return &n
}

func (p *parser) finish(q any) error {
	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		for _, fe := range fieldErrs {
			p.issues = append(p.issues, describe(fe))
		}
	}
	if len(p.issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(p.issues, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
