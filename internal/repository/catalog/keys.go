package catalog

import (
	"github.com/kailas-cloud/nearby/internal/domain"
	"github.com/kailas-cloud/nearby/internal/domain/search/filter"
)

// Offerings (one per searchable listing) and business details are separate hashes.
// An offering names its business through business_id and optionally carries the
// external place id of that business.
var (
	indexName        = domain.KeyPrefix + "catalog:idx"
	offeringPrefix   = domain.KeyPrefix + "catalog:offering:"
	businessPrefix   = domain.KeyPrefix + "catalog:business:"
	vectorField      = "vector"
	vectorScoreField = "__vector_score"
)

// Offering hash fields.
const (
	fieldBusinessID  = "business_id"
	fieldPlaceID     = "place_id"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldTags        = "tags"
	fieldLat         = "lat"
	fieldLng         = "lng"
	fieldAddress     = "address"
	fieldLocated     = filter.FieldLocated
)

// Business hash fields.
const (
	fieldName        = "name"
	fieldImages      = "images"
	fieldHours       = "hours"
	fieldTimezone    = "timezone"
	fieldOpenNow     = "open_now"
	fieldPhone       = "phone"
	fieldWebsite     = "website"
	fieldEmail       = "email"
	fieldVerified    = "verified"
	fieldRating      = "rating"
	fieldReviewCount = "review_count"
)

// tagSeparator joins offering tags inside a single TAG field.
const tagSeparator = ","

func offeringKey(id string) string { return offeringPrefix + id }
func businessKey(id string) string { return businessPrefix + id }
