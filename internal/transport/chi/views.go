package chi

import (
	"time"

	"github.com/kailas-cloud/nearby/internal/domain/candidate"
	gen "github.com/kailas-cloud/nearby/internal/transport/generated"
	searchuc "github.com/kailas-cloud/nearby/internal/usecase/search"
)

func newSearchResponse(res *searchuc.Result, now time.Time) gen.SearchResponse {
	results := make([]gen.SearchResult, len(res.Candidates))
	for i := range res.Candidates {
		results[i] = newResultView(&res.Candidates[i])
	}
	return gen.SearchResponse{
		Success:    true,
		Results:    results,
		Query:      res.Meta.Query,
		MatchCount: len(results),
		SearchSources: gen.SearchSources{
			Platform:   res.Meta.PlatformCount,
			Discovered: res.Meta.DiscoveredCount,
		},
		MatchThreshold: res.Meta.Threshold,
		Timestamp:      now.UTC(),
		Message:        optString(res.Meta.Message),
	}
}

// newResultView maps a ranked candidate. Several fields are duplicated under
// the names older clients read (name, similarity_score, open_now, distance, image_url).
func newResultView(c *candidate.Candidate) gen.SearchResult {
	name := c.BusinessName
	if name == "" {
		name = c.Title
	}
	images := c.Images
	if images == nil {
		images = []string{}
	}

	v := gen.SearchResult{
		Id:              c.ID,
		Source:          gen.SearchResultSource(c.Source),
		BusinessId:      optString(c.BusinessID),
		Title:           c.Title,
		Name:            name,
		Description:     c.Description,
		Category:        optString(c.Category),
		Address:         optString(c.Location.Address),
		Images:          images,
		Phone:           optString(c.Contact.Phone),
		Website:         optString(c.Contact.Website),
		Email:           optString(c.Contact.Email),
		Verified:        c.Verified,
		Similarity:      c.Similarity,
		SimilarityScore: c.Similarity,
		CompositeScore:  c.CompositeScore,
		IsOpen:          c.IsOpen,
		OpenNow:         c.IsOpen,
		IsDiscovered:    c.Source == candidate.SourceDiscovered,
		PlaceId:         optString(c.PlaceID),
		OriginPhrase:    optString(c.OriginPhrase),
	}
	if len(c.Tags) > 0 {
		tags := c.Tags
		v.Tags = &tags
	}
	if len(c.Hours) > 0 {
		hours := c.Hours
		v.Hours = &hours
	}
	if len(images) > 0 {
		v.ImageUrl = &images[0]
	}
	if c.ReviewCount > 0 {
		n := c.ReviewCount
		v.ReviewCount = &n
	}
	if c.Location.HasCoords {
		lat, lng := c.Location.Lat, c.Location.Lng
		v.Latitude, v.Longitude = &lat, &lng
	}
	if c.Rating > 0 {
		r := c.Rating
		v.Rating = &r
	}
	// Miles and minutes, null when unknown.
	if c.HasDistance() {
		d := c.DistanceMiles
		v.DistanceMiles, v.Distance = &d, &d
	}
	if c.HasDuration() {
		m := c.DurationMinutes
		v.DurationMinutes = &m
	}
	return v
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
