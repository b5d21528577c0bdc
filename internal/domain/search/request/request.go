package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength   = 512
	DefaultThreshold = 0.3
	DefaultCount     = 10
	MaxCount         = 50
)

var validate = validator.New()

// Params is the raw, unvalidated input of a search call. Nil pointers mean "not supplied".
type Params struct {
	Query     string   `validate:"required,max=512"`
	Latitude  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `validate:"omitempty,gte=-180,lte=180"`
	Threshold *float64 `validate:"omitempty,gte=0,lte=1"`
	Count     *int     `validate:"omitempty,gte=1"`
}

// Request is a validated search query. It is immutable once built.
type Request struct {
	query     string
	origin    *geo.Point
	threshold float64
	count     int
}

// New trims, validates and normalizes search parameters.
// Defaults: threshold=0.3, count=10. Count is capped at MaxCount.
// Every failure wraps domain.ErrValidation.
func New(p Params) (Request, error) {
	p.Query = strings.TrimSpace(p.Query)

	if err := validate.Struct(p); err != nil {
		return Request{}, fmt.Errorf("%w: %s", domain.ErrValidation, describe(err))
	}
	if (p.Latitude == nil) != (p.Longitude == nil) {
		return Request{}, fmt.Errorf("%w: latitude and longitude must be supplied together", domain.ErrValidation)
	}

	r := Request{
		query:     p.Query,
		threshold: DefaultThreshold,
		count:     DefaultCount,
	}
	if p.Latitude != nil {
		r.origin = &geo.Point{Lat: *p.Latitude, Lng: *p.Longitude}
	}
	if p.Threshold != nil {
		r.threshold = *p.Threshold
	}
	if p.Count != nil {
		r.count = min(*p.Count, MaxCount)
	}
	return r, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// Origin returns the caller location, or nil if none was supplied.
func (r *Request) Origin() *geo.Point {
	if r.origin == nil {
		return nil
	}
	o := *r.origin
	return &o
}

// HasOrigin reports whether the caller supplied a location.
func (r *Request) HasOrigin() bool { return r.origin != nil }

// Threshold returns the minimum catalog similarity.
func (r *Request) Threshold() float64 { return r.threshold }

// Count returns the number of results wanted.
func (r *Request) Count() int { return r.count }

// describe turns validator errors into a short human message naming the fields.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return fmt.Sprintf("%s too long (max %s chars)", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}
