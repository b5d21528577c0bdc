package catalog

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/nearby/internal/domain/business"
	"github.com/kailas-cloud/nearby/internal/domain/candidate"
)

// Offering is one searchable catalog listing as written to the store.
type Offering struct {
	ID          string
	BusinessID  string
	PlaceID     string
	Title       string
	Description string
	Category    string
	Tags        []string
	Address     string
	Lat, Lng    *float64
	Vector      []float32
}

func offeringToHash(o *Offering) map[string]string {
	m := map[string]string{
		fieldBusinessID:  o.BusinessID,
		fieldTitle:       o.Title,
		fieldDescription: o.Description,
		fieldCategory:    o.Category,
		fieldTags:        strings.Join(o.Tags, tagSeparator),
		fieldAddress:     o.Address,
		vectorField:      string(vectorBytes(o.Vector)),
	}
	if o.PlaceID != "" {
		m[fieldPlaceID] = o.PlaceID
	}
	located := o.Lat != nil && o.Lng != nil
	m[fieldLocated] = strconv.FormatBool(located)
	if located {
		m[fieldLat] = strconv.FormatFloat(*o.Lat, 'f', -1, 64)
		m[fieldLng] = strconv.FormatFloat(*o.Lng, 'f', -1, 64)
	}
	return m
}

func businessToHash(b *business.Business) (map[string]string, error) {
	images, err := json.Marshal(b.Images)
	if err != nil {
		return nil, err
	}
	hours, err := json.Marshal(b.Hours)
	if err != nil {
		return nil, err
	}
	m := map[string]string{
		fieldName:        b.Name,
		fieldDescription: b.Description,
		fieldImages:      string(images),
		fieldHours:       string(hours),
		fieldTimezone:    b.Timezone,
		fieldPhone:       b.Phone,
		fieldWebsite:     b.Website,
		fieldEmail:       b.Email,
		fieldVerified:    strconv.FormatBool(b.Verified),
		fieldRating:      strconv.FormatFloat(b.Rating, 'f', -1, 64),
		fieldReviewCount: strconv.Itoa(b.ReviewCount),
	}
	if b.OpenNow != nil {
		m[fieldOpenNow] = strconv.FormatBool(*b.OpenNow)
	}
	return m, nil
}

// entryToCandidate maps a KNN hit into a catalog candidate.
// The business key is the external place id when present, else the business id,
// so a discovered place that is already in the catalog collapses onto it.
func entryToCandidate(id string, score float64, f map[string]string) candidate.Candidate {
	key := f[fieldPlaceID]
	if key == "" {
		key = f[fieldBusinessID]
	}
	if key == "" {
		key = id
	}

	c := candidate.New(id, candidate.SourceCatalog, key)
	c.BusinessID = f[fieldBusinessID]
	c.PlaceID = f[fieldPlaceID]
	c.Title = f[fieldTitle]
	c.Description = f[fieldDescription]
	c.Category = f[fieldCategory]
	if tags := f[fieldTags]; tags != "" {
		c.Tags = strings.Split(tags, tagSeparator)
	}
	c.Similarity = score
	c.Location.Address = f[fieldAddress]

	lat, latErr := strconv.ParseFloat(f[fieldLat], 64)
	lng, lngErr := strconv.ParseFloat(f[fieldLng], 64)
	if latErr == nil && lngErr == nil {
		c.Location.Lat, c.Location.Lng, c.Location.HasCoords = lat, lng, true
	}
	return c
}

// hashToDetails parses a business hash. Malformed optional fields are left zero.
func hashToDetails(id string, m map[string]string) business.Details {
	if len(m) == 0 {
		return business.Details{Business: business.Business{ID: id}}
	}
	d := business.Details{Found: true, Business: business.Business{
		ID:          id,
		Name:        m[fieldName],
		Description: m[fieldDescription],
		Timezone:    m[fieldTimezone],
		Phone:       m[fieldPhone],
		Website:     m[fieldWebsite],
		Email:       m[fieldEmail],
	}}
	_ = json.Unmarshal([]byte(m[fieldImages]), &d.Images)
	_ = json.Unmarshal([]byte(m[fieldHours]), &d.Hours)
	d.Verified, _ = strconv.ParseBool(m[fieldVerified])
	d.Rating, _ = strconv.ParseFloat(m[fieldRating], 64)
	d.ReviewCount, _ = strconv.Atoi(m[fieldReviewCount])
	if v, err := strconv.ParseBool(m[fieldOpenNow]); err == nil {
		d.OpenNow = &v
	}
	return d
}

func vectorBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
