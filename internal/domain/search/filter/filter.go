package filter

import (
	"fmt"

	"github.com/kailas-cloud/nearby/internal/domain/geo"
)

// MaxConditions caps the number of clauses in one expression.
const MaxConditions = 16

// Catalog index fields a filter may reference.
const (
	FieldLat      = "lat"
	FieldLng      = "lng"
	FieldCategory = "category"
	// FieldLocated is "true" for listings with coordinates, "false" otherwise.
	FieldLocated = "located"
)

// Expression is a conjunction of conditions, optionally with excluded tag values.
// Alternatives, when present, each admit a document on their own.
type Expression struct {
	must    []Condition
	mustNot []Condition
	or      []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must)+len(mustNot) > MaxConditions {
		return Expression{}, fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Within builds the bounding-box pre-filter used before similarity search.
// Boxes that span the whole longitude range produce only a latitude clause.
// Listings without coordinates pass, since their distance is unknown.
func Within(b geo.Box) Expression {
	must := []Condition{{key: FieldLat, rangeExpr: &Range{min: b.MinLat, max: b.MaxLat}}}
	if b.MinLng > -180 || b.MaxLng < 180 {
		must = append(must, Condition{key: FieldLng, rangeExpr: &Range{min: b.MinLng, max: b.MaxLng}})
	}
	return Expression{must: must, or: []Condition{{key: FieldLocated, match: "false"}}}
}

// Must returns the required conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the excluded conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// Or returns the alternatives that match regardless of the other conditions.
func (e Expression) Or() []Condition { return e.or }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 && len(e.mustNot) == 0 && len(e.or) == 0 }

// Condition is a single clause: either a tag match or an inclusive numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewBetween creates an inclusive numeric range condition.
func NewBetween(key string, lo, hi float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if lo > hi {
		return Condition{}, fmt.Errorf("range for %q is inverted: %g > %g", key, lo, hi)
	}
	return Condition{key: key, rangeExpr: &Range{min: lo, max: hi}}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range, nil for match conditions.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is an inclusive numeric interval.
type Range struct {
	min float64
	max float64
}

// Min returns the lower bound.
func (r Range) Min() float64 { return r.min }

// Max returns the upper bound.
func (r Range) Max() float64 { return r.max }
